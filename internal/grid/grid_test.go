package grid

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"gridview/internal/edit"
	"gridview/internal/selection"
	"gridview/internal/source"
)

func people(n int, opts ...source.TableOption) *source.Table {
	values := make([]map[string]any, n)
	for i := range values {
		values[i] = map[string]any{"id": i, "name": fmt.Sprintf("person %02d", i), "age": 20 + i}
	}
	return source.NewTable([]string{"id", "name", "age"}, append([]source.TableOption{source.WithRows(values...)}, opts...)...)
}

func newGrid(t *testing.T, items source.ItemSource, opts ...Option) *Grid {
	t.Helper()
	g := New(opts...)
	g.SetItemsSource(items)
	g.SetSize(60, 10)
	return g
}

func TestSetItemsSourceGeneratesColumns(t *testing.T) {
	g := newGrid(t, people(5))
	require.Equal(t, 3, g.Columns().Len())
	require.Equal(t, "age", g.Columns().At(2).Binding)
	require.Equal(t, 5, g.SlotCount())
	require.Equal(t, CellCoordinates{ColumnIndex: 0, Slot: 0}, g.CurrentCell())
	require.True(t, g.IsSelected(0))
	require.Equal(t, "person 03", g.CellText(3, g.Columns().At(1)))
}

func TestGroupedSlots(t *testing.T) {
	values := make([]map[string]any, 100)
	for i := range values {
		values[i] = map[string]any{"id": i, "team": fmt.Sprintf("t%d", i/10)}
	}
	tbl := source.NewTable([]string{"id", "team"}, source.WithRows(values...))
	require.NoError(t, tbl.GroupBy("team"))
	g := newGrid(t, tbl)

	require.Equal(t, 110, g.SlotCount())
	require.Equal(t, 110, g.VisibleSlotCount())
	require.True(t, g.IsGroupHeader(0))
	require.True(t, g.IsGroupHeader(11))
	require.Equal(t, 12, g.SlotFromRowIndex(10))
	require.Equal(t, 10, g.RowIndexFromSlot(12))
	require.Equal(t, -1, g.RowIndexFromSlot(11))

	info, ok := g.GroupAt(0)
	require.True(t, ok)
	require.Equal(t, "t0", info.Key)
	require.Equal(t, 10, info.LastSubItemSlot)

	require.Equal(t, CellCoordinates{ColumnIndex: 0, Slot: 1}, g.CurrentCell())
	require.True(t, g.CollapseGroup(0))
	require.Equal(t, 110, g.SlotCount())
	require.Equal(t, 100, g.VisibleSlotCount())
	require.Equal(t, 11, g.NextVisibleSlot(0))
	require.Equal(t, 0, g.PreviousVisibleSlot(11))
	require.Equal(t, 0, g.CurrentCell().Slot)
	require.False(t, g.UpdateSelectionAndCurrency(0, 5, selection.SelectCurrent, false))

	require.True(t, g.ExpandGroup(0))
	require.Equal(t, 110, g.VisibleSlotCount())
}

func TestVisibleSlotNearSkipsCollapsedRows(t *testing.T) {
	values := make([]map[string]any, 100)
	for i := range values {
		values[i] = map[string]any{"id": i, "team": fmt.Sprintf("t%d", i/10)}
	}
	tbl := source.NewTable([]string{"id", "team"}, source.WithRows(values...))
	require.NoError(t, tbl.GroupBy("team"))
	g := newGrid(t, tbl)

	require.Equal(t, 5, g.visibleSlotNear(5))
	require.True(t, g.CollapseGroup(11))
	require.Equal(t, 22, g.visibleSlotNear(12), "next group header after the collapsed rows")

	require.True(t, g.CollapseGroup(99))
	require.Equal(t, 99, g.visibleSlotNear(105), "falls back to the header when nothing follows")
}

func TestNestedCollapseSurvivesExpand(t *testing.T) {
	tbl := source.NewTable([]string{"a", "b"}, source.WithRows(
		map[string]any{"a": "x", "b": "1"},
		map[string]any{"a": "x", "b": "1"},
		map[string]any{"a": "x", "b": "2"},
		map[string]any{"a": "y", "b": "1"},
	))
	require.NoError(t, tbl.GroupBy("a", "b"))
	g := newGrid(t, tbl)
	// x(0) 1(1) r r 2(4) r y(6) 1(7) r
	require.Equal(t, 9, g.SlotCount())

	require.True(t, g.CollapseGroup(1))
	require.Equal(t, 7, g.VisibleSlotCount())
	require.True(t, g.CollapseGroup(0))
	require.Equal(t, 4, g.VisibleSlotCount())
	require.True(t, g.ExpandGroup(0))
	require.Equal(t, 7, g.VisibleSlotCount())
	require.False(t, g.IsSlotVisible(2))
}

func TestUpdateSelectionAndCurrencyVetoedByInvalidEdit(t *testing.T) {
	g := newGrid(t, people(10, source.WithRules(source.Numeric("age"))))
	require.True(t, g.UpdateSelectionAndCurrency(2, 1, selection.SelectCurrent, false))
	require.True(t, g.BeginEdit())
	require.True(t, g.SetEditingValue("not a number"))

	var changes int
	g.OnSelectionChanged(func(SelectionChange) { changes++ })
	g.OnCurrentCellChanged(func(_, _ CellCoordinates) { changes++ })

	require.False(t, g.UpdateSelectionAndCurrency(2, 5, selection.SelectCurrent, true))
	require.ErrorIs(t, g.LastError(), edit.ErrInvalid)
	require.Equal(t, CellCoordinates{ColumnIndex: 2, Slot: 1}, g.CurrentCell())
	require.Equal(t, []int{1}, g.sel.SelectedSlots())
	require.Equal(t, edit.CellEditing, g.EditSession().State())
	require.False(t, g.IsCellValid(1, 2))
	require.Zero(t, changes)

	v, _ := g.CurrentItem().Get("age")
	require.Equal(t, 21, v)
}

func TestMoveCommitsEdit(t *testing.T) {
	g := newGrid(t, people(10))
	require.True(t, g.UpdateSelectionAndCurrency(1, 2, selection.SelectCurrent, false))
	require.True(t, g.BeginEdit())
	g.SetEditingValue("renamed")

	var rows []RowEditEnded
	g.OnRowEditEnded(func(e RowEditEnded) { rows = append(rows, e) })
	require.True(t, g.Navigate(KeyDown, 0))
	require.Equal(t, 3, g.CurrentCell().Slot)
	require.False(t, g.IsEditing())
	require.Len(t, rows, 1)

	v, _ := rows[0].Item.Get("name")
	require.Equal(t, "renamed", v)
}

func TestBeginCancelRestoresRow(t *testing.T) {
	g := newGrid(t, people(3))
	require.ErrorIs(t, g.CommitEdit(Row), edit.ErrNoRowEdit)

	require.True(t, g.Navigate(KeyRight, 0))
	require.True(t, g.Navigate(KeyF2, 0))
	g.SetEditingValue("changed")
	require.NoError(t, g.CommitEdit(Cell))
	require.True(t, g.IsEditing())

	it := g.CurrentItem()
	v, _ := it.Get("name")
	require.Equal(t, "changed", v)

	require.True(t, g.Navigate(KeyEscape, 0))
	v, _ = it.Get("name")
	require.Equal(t, "person 00", v)
	require.False(t, g.IsEditing())
}

func TestBeginEditRequiresSelection(t *testing.T) {
	g := newGrid(t, people(3))
	require.True(t, g.UpdateSelectionAndCurrency(0, 2, selection.None, false))
	require.False(t, g.BeginEdit())

	ro := newGrid(t, people(3), ReadOnly())
	require.False(t, ro.BeginEdit())
}

func TestNotificationsFireOncePerMove(t *testing.T) {
	g := newGrid(t, people(10))
	var sel []SelectionChange
	var cur [][2]CellCoordinates
	g.OnSelectionChanged(func(c SelectionChange) { sel = append(sel, c) })
	g.OnCurrentCellChanged(func(o, n CellCoordinates) { cur = append(cur, [2]CellCoordinates{o, n}) })

	require.True(t, g.Navigate(KeyDown, 0))
	require.Len(t, sel, 1)
	require.Len(t, cur, 1)
	require.Len(t, sel[0].Added, 1)
	require.Len(t, sel[0].Removed, 1)
	require.Equal(t, [2]CellCoordinates{{0, 0}, {0, 1}}, cur[0])

	require.True(t, g.Navigate(KeyDown, Shift))
	require.True(t, g.Navigate(KeyDown, Shift))
	require.Equal(t, []int{1, 2, 3}, g.sel.SelectedSlots())
	require.Equal(t, 1, g.AnchorSlot())
	require.Len(t, sel, 3)

	require.True(t, g.Navigate(KeyDown, Ctrl))
	require.Len(t, sel, 3)
	require.True(t, g.Navigate(KeySpace, 0))
	require.Equal(t, []int{1, 2, 3, 4}, g.sel.SelectedSlots())
	require.True(t, g.Navigate(KeySpace, 0))
	require.Equal(t, []int{1, 2, 3}, g.sel.SelectedSlots())
}

func TestNavigateTabWraps(t *testing.T) {
	g := newGrid(t, people(3))
	require.True(t, g.Navigate(KeyEnd, 0))
	require.Equal(t, 2, g.CurrentCell().ColumnIndex)
	require.True(t, g.Navigate(KeyTab, 0))
	require.Equal(t, CellCoordinates{ColumnIndex: 0, Slot: 1}, g.CurrentCell())
	require.True(t, g.Navigate(KeyTab, Shift))
	require.Equal(t, CellCoordinates{ColumnIndex: 2, Slot: 0}, g.CurrentCell())
	require.True(t, g.Navigate(KeyEnd, Ctrl))
	require.Equal(t, 2, g.CurrentCell().Slot)
	require.True(t, g.Navigate(KeyHome, Ctrl))
	require.Equal(t, 0, g.CurrentCell().Slot)
	require.False(t, g.Navigate(KeyUp, 0))
}

func TestRemovedRowLeavesSelection(t *testing.T) {
	tbl := people(5)
	g := newGrid(t, tbl)
	require.True(t, g.Navigate(KeyDown, Shift))
	doomed := tbl.At(1)

	var sel []SelectionChange
	g.OnSelectionChanged(func(c SelectionChange) { sel = append(sel, c) })
	require.NoError(t, tbl.Remove(doomed))

	require.Equal(t, 4, g.SlotCount())
	require.Len(t, sel, 1)
	require.Equal(t, []source.Item{doomed}, sel[0].Removed)
	require.Equal(t, []int{0}, g.sel.SelectedSlots())
	require.Equal(t, 1, g.CurrentCell().Slot)
}

func TestDeleteSelected(t *testing.T) {
	tbl := people(5)
	g := newGrid(t, tbl)
	require.True(t, g.Navigate(KeyDown, Shift))
	require.True(t, g.DeleteSelected())
	require.Equal(t, 3, tbl.Len())
	require.Empty(t, g.SelectedItems())
}

func TestAddNewRow(t *testing.T) {
	tbl := people(3)
	g := newGrid(t, tbl)
	require.True(t, g.AddNewRow())
	require.Equal(t, 4, g.SlotCount())
	require.Equal(t, 3, g.CurrentCell().Slot)
	require.Equal(t, edit.CellEditing, g.EditSession().State())

	require.True(t, g.CancelEdit(Row))
	require.Equal(t, 3, tbl.Len())
	require.Equal(t, 3, g.SlotCount())
	require.False(t, g.IsEditing())
}

func TestRegroupKeepsSelection(t *testing.T) {
	tbl := people(6)
	g := newGrid(t, tbl)
	it := tbl.At(4)
	require.True(t, g.UpdateSelectionAndCurrency(0, 4, selection.SelectCurrent, false))

	require.NoError(t, tbl.GroupBy("name"))
	require.Equal(t, 12, g.SlotCount())
	slot := g.SlotFromRowIndex(tbl.IndexOf(it))
	require.True(t, g.IsSelected(slot))
	require.Equal(t, slot, g.CurrentCell().Slot)
	require.Equal(t, it, g.CurrentItem())
}

func TestIncrementalLoading(t *testing.T) {
	loader := func(_ context.Context, offset, limit int) ([]map[string]any, bool, error) {
		var rows []map[string]any
		for i := offset; i < 1000 && len(rows) < limit; i++ {
			rows = append(rows, map[string]any{"id": i})
		}
		return rows, offset+len(rows) < 1000, nil
	}
	tbl := source.NewTable([]string{"id"}, source.WithLoader(loader))
	g := newGrid(t, tbl, WithIncrementalLoading(1, 3))

	n, err := g.LoadMoreItems(context.Background())
	require.NoError(t, err)
	require.Equal(t, 30, n)
	require.Equal(t, 30, g.SlotCount())
	require.False(t, g.IsLoading())

	_, ok := g.NeedsMoreItems()
	require.False(t, ok)

	g.Viewport().SetVerticalOffset(15)
	n, ok = g.NeedsMoreItems()
	require.True(t, ok)
	require.Equal(t, 30, n)
	_, ok = g.NeedsMoreItems()
	require.False(t, ok, "only one load in flight")
	g.LoadCompleted(nil)
	require.False(t, g.IsLoading())
}

func TestFind(t *testing.T) {
	g := newGrid(t, people(20))
	require.True(t, g.Navigate(KeyRight, 0))
	hits := g.Find("person 17")
	require.NotEmpty(t, hits)
	require.Equal(t, 17, hits[0])
	require.True(t, g.GoTo(hits[0]))
	require.Equal(t, CellCoordinates{ColumnIndex: 1, Slot: 17}, g.CurrentCell())
	require.True(t, g.Viewport().IsSlotTotallyDisplayed(17))
	require.Empty(t, g.Find("  "))
}

func TestOutOfRangeIsRejected(t *testing.T) {
	g := newGrid(t, people(3))
	require.False(t, g.UpdateSelectionAndCurrency(0, 3, selection.SelectCurrent, false))
	require.False(t, g.UpdateSelectionAndCurrency(7, 0, selection.SelectCurrent, false))
	require.True(t, g.UpdateSelectionAndCurrency(-1, -1, selection.SelectCurrent, false))
	require.Equal(t, NoCell, g.CurrentCell())
	require.Empty(t, g.SelectedItems())
}
