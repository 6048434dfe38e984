package grid

import (
	"gridview/internal/column"
	"gridview/internal/edit"
	"gridview/internal/selection"
	"gridview/internal/source"
)

// Key is a navigation key.
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyTab
	KeySpace
	KeyEnter
	KeyEscape
	KeyF2
)

// Modifiers are held while a key is pressed.
type Modifiers uint8

const (
	Shift Modifiers = 1 << iota
	Ctrl
)

// ScrollCellIntoView scrolls until the cell is fully shown, expanding
// collapsed groups that hide it.
func (g *Grid) ScrollCellIntoView(columnIndex, slot int) bool {
	if slot < 0 || slot >= g.SlotCount() {
		return false
	}
	g.expandTo(slot)
	ok := g.vp.ScrollSlotIntoView(slot)
	if col := g.cols.At(columnIndex); col != nil && !col.IsFrozen() {
		ok = g.vp.ScrollColumnIntoView(col) && ok
	}
	return ok
}

// ScrollIntoView scrolls to item and, when col is not nil, to its column.
func (g *Grid) ScrollIntoView(item source.Item, col *column.Column) bool {
	if g.items == nil {
		return false
	}
	row := g.items.IndexOf(item)
	if row < 0 {
		return false
	}
	idx := -1
	if col != nil {
		idx = col.Index()
	}
	return g.ScrollCellIntoView(idx, g.SlotFromRowIndex(row))
}

// Navigate applies a key press. It reports whether anything happened.
func (g *Grid) Navigate(key Key, mods Modifiers) bool {
	switch key {
	case KeyF2:
		return g.BeginEdit()
	case KeyEscape:
		switch g.edit.State() {
		case edit.CellEditing:
			return g.CancelEdit(Cell)
		case edit.RowEditing:
			return g.CancelEdit(Row)
		}
		return false
	case KeyEnter:
		if g.edit.State() == edit.CellEditing {
			return g.CommitEdit(Cell) == nil
		}
		if g.IsGroupHeader(g.current.Slot) {
			return g.ToggleGroup(g.current.Slot)
		}
		return g.moveRow(g.NextVisibleSlot(g.current.Slot), mods)
	case KeySpace:
		if g.current.Slot < 0 {
			return false
		}
		action := selection.AddCurrentToSelection
		if g.sel.Contains(g.current.Slot) {
			action = selection.RemoveCurrentFromSelection
		}
		return g.UpdateSelectionAndCurrency(g.current.ColumnIndex, g.current.Slot, action, false)
	}

	if g.current.Slot < 0 {
		first := g.NextVisibleSlot(-1)
		if first < 0 {
			return false
		}
		return g.UpdateSelectionAndCurrency(g.firstColumnIndex(), first, selection.SelectCurrent, true)
	}

	switch key {
	case KeyUp:
		return g.moveRow(g.PreviousVisibleSlot(g.current.Slot), mods)
	case KeyDown:
		return g.moveRow(g.NextVisibleSlot(g.current.Slot), mods)
	case KeyPageUp:
		return g.moveRow(g.vp.PageSlot(g.current.Slot, false), mods)
	case KeyPageDown:
		return g.moveRow(g.vp.PageSlot(g.current.Slot, true), mods)
	case KeyLeft:
		return g.moveColumn(g.adjacentColumn(-1))
	case KeyRight:
		return g.moveColumn(g.adjacentColumn(1))
	case KeyHome:
		if mods&Ctrl != 0 {
			return g.moveRow(g.NextVisibleSlot(-1), mods&^Ctrl)
		}
		return g.moveColumn(g.edgeColumn(false))
	case KeyEnd:
		if mods&Ctrl != 0 {
			return g.moveRow(g.PreviousVisibleSlot(g.SlotCount()), mods&^Ctrl)
		}
		return g.moveColumn(g.edgeColumn(true))
	case KeyTab:
		return g.tab(mods&Shift != 0)
	}
	return false
}

// rowAction picks the selection change for a row move.
func (g *Grid) rowAction(mods Modifiers) selection.Action {
	switch {
	case mods&Shift != 0 && g.sel.Mode() == selection.Extended:
		return selection.SelectFromAnchorToCurrent
	case mods&Ctrl != 0:
		return selection.None
	}
	return selection.SelectCurrent
}

func (g *Grid) moveRow(slot int, mods Modifiers) bool {
	if slot < 0 || slot == g.current.Slot {
		return false
	}
	return g.UpdateSelectionAndCurrency(g.current.ColumnIndex, slot, g.rowAction(mods), true)
}

func (g *Grid) moveColumn(col *column.Column) bool {
	if col == nil || col.Index() == g.current.ColumnIndex {
		return false
	}
	return g.UpdateSelectionAndCurrency(col.Index(), g.current.Slot, selection.None, true)
}

func (g *Grid) adjacentColumn(step int) *column.Column {
	cur := g.CurrentColumn()
	if cur == nil {
		return g.edgeColumn(step < 0)
	}
	for d := cur.DisplayIndex() + step; ; d += step {
		col := g.cols.ByDisplayIndex(d)
		if col == nil {
			return nil
		}
		if col.IsVisible() {
			return col
		}
	}
}

func (g *Grid) edgeColumn(last bool) *column.Column {
	vis := g.cols.Visible()
	if len(vis) == 0 {
		return nil
	}
	if last {
		return vis[len(vis)-1]
	}
	return vis[0]
}

// tab moves one cell in reading order, wrapping to the adjacent row.
func (g *Grid) tab(back bool) bool {
	step := 1
	if back {
		step = -1
	}
	if col := g.adjacentColumn(step); col != nil {
		return g.moveColumn(col)
	}
	var slot int
	if back {
		slot = g.PreviousVisibleSlot(g.current.Slot)
	} else {
		slot = g.NextVisibleSlot(g.current.Slot)
	}
	col := g.edgeColumn(back)
	if slot < 0 || col == nil {
		return false
	}
	return g.UpdateSelectionAndCurrency(col.Index(), slot, selection.SelectCurrent, true)
}
