package grid

import (
	"gridview/internal/column"
	"gridview/internal/edit"
	"gridview/internal/selection"
	"gridview/internal/source"
)

// CurrentCell returns the current cell, or NoCell.
func (g *Grid) CurrentCell() CellCoordinates { return g.current }

// CurrentColumn returns the column of the current cell, or nil.
func (g *Grid) CurrentColumn() *column.Column { return g.cols.At(g.current.ColumnIndex) }

// CurrentItem returns the item of the current row, or nil on a header or
// without currency.
func (g *Grid) CurrentItem() source.Item {
	it, _ := g.ItemAt(g.current.Slot)
	return it
}

// SelectedItems returns the selected items in slot order.
func (g *Grid) SelectedItems() []source.Item { return g.sel.Items() }

// SelectedItem returns the first selected item, or nil.
func (g *Grid) SelectedItem() source.Item {
	for s := range g.sel.Slots() {
		if it, ok := g.ItemAt(s); ok {
			return it
		}
	}
	return nil
}

// IsSelected reports whether slot is selected.
func (g *Grid) IsSelected(slot int) bool { return g.sel.Contains(slot) }

// SelectionMode returns single or extended.
func (g *Grid) SelectionMode() selection.Mode { return g.sel.Mode() }

// AnchorSlot returns the pivot for range selection, or -1.
func (g *Grid) AnchorSlot() int { return g.sel.Anchor() }

// SelectAll selects every data row in extended mode.
func (g *Grid) SelectAll() bool {
	if g.sel.Mode() != selection.Extended || g.SlotCount() == 0 {
		return false
	}
	g.sel.SelectRange(0, g.SlotCount()-1)
	return true
}

// ClearSelection deselects everything.
func (g *Grid) ClearSelection() { g.sel.Clear() }

// UpdateSelectionAndCurrency moves the current cell to columnIndex and slot
// and changes the selection as action says. Slot -1 with column -1 clears
// currency. An open edit elsewhere is committed first; if that fails
// nothing changes and false is returned, with the cause in LastError.
// Selection and currency notifications fire once, after both are updated.
func (g *Grid) UpdateSelectionAndCurrency(columnIndex, slot int, action selection.Action, scrollIntoView bool) bool {
	none := columnIndex == -1 && slot == -1
	if !none && !g.validCell(columnIndex, slot) {
		return false
	}

	endSel := g.sel.Batch().Begin()
	defer endSel()
	endCur := g.currency.Begin()
	defer endCur()

	if g.edit.State() != edit.Browsing {
		otherRow := slot != g.edit.Slot()
		if g.edit.State() == edit.CellEditing && (otherRow || columnIndex != g.edit.Column()) {
			if err := g.endCellEdit(edit.Commit); err != nil {
				g.veto(columnIndex, slot, err)
				return false
			}
		}
		if otherRow {
			if err := g.endRowEdit(edit.Commit); err != nil {
				g.veto(columnIndex, slot, err)
				return false
			}
			// Committing can reshuffle the rows.
			if !none && !g.validCell(columnIndex, slot) {
				return false
			}
		}
	}

	if none {
		if action == selection.SelectCurrent {
			g.sel.Clear()
		}
	} else {
		g.sel.Apply(action, slot)
	}
	g.setCurrentCell(CellCoordinates{ColumnIndex: columnIndex, Slot: slot})

	if cs, ok := g.items.(source.CurrencySource); ok {
		switch {
		case none:
			cs.MoveCurrentTo(-1)
		case !g.IsGroupHeader(slot):
			cs.MoveCurrentTo(g.RowIndexFromSlot(slot))
		}
	}
	if scrollIntoView && !none {
		g.ScrollCellIntoView(columnIndex, slot)
	}
	return true
}

func (g *Grid) validCell(columnIndex, slot int) bool {
	if !g.IsSlotVisible(slot) {
		return false
	}
	col := g.cols.At(columnIndex)
	return col != nil && col.IsVisible()
}

func (g *Grid) veto(columnIndex, slot int, err error) {
	g.lastErr = err
	g.log.Debug("currency change vetoed", "column", columnIndex, "slot", slot, "err", err)
}

func (g *Grid) setCurrentCell(c CellCoordinates) {
	if c == g.current {
		return
	}
	if !g.moved {
		g.previous = g.current
		g.moved = true
	}
	g.current = c
	g.currency.Mark()
}

func (g *Grid) flushCurrency() {
	if !g.moved {
		return
	}
	g.moved = false
	old := g.previous
	if old == g.current {
		return
	}
	for _, fn := range g.onCurrent {
		fn(old, g.current)
	}
}

func (g *Grid) firstColumnIndex() int {
	for _, col := range g.cols.Ordered() {
		if col.IsVisible() {
			return col.Index()
		}
	}
	return -1
}
