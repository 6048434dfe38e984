package grid

import (
	"errors"

	"gridview/internal/edit"
	"gridview/internal/selection"
	"gridview/internal/source"
)

// Unit is the scope of a commit or cancel.
type Unit int

const (
	Cell Unit = iota
	Row
)

// CanEdit reports whether the current cell could enter edit mode.
func (g *Grid) CanEdit() bool {
	if g.readOnly || g.items == nil {
		return false
	}
	if ro, ok := g.items.(readOnlySource); ok && ro.IsReadOnly() {
		return false
	}
	col := g.CurrentColumn()
	if col == nil || col.ReadOnly || col.Binding == "" {
		return false
	}
	if _, ok := g.ItemAt(g.current.Slot); !ok {
		return false
	}
	return g.sel.Contains(g.current.Slot)
}

// BeginEdit opens the current cell for editing, opening its row first.
func (g *Grid) BeginEdit() bool {
	if !g.CanEdit() {
		return false
	}
	it, _ := g.ItemAt(g.current.Slot)
	if err := g.edit.BeginRow(it, g.current.Slot); err != nil {
		g.fail("begin row edit", err)
		return false
	}
	col := g.CurrentColumn()
	if err := g.edit.BeginCell(col.Index(), col.Binding); err != nil {
		g.fail("begin cell edit", err)
		return false
	}
	return true
}

// SetEditingValue replaces the pending value of the open cell.
func (g *Grid) SetEditingValue(v any) bool {
	return g.edit.SetValue(v) == nil
}

// CommitEdit commits the open cell, or the open row with its cell. It
// returns edit.ErrNoRowEdit when nothing is being edited, edit.ErrInvalid
// when validation blocks the commit and the source's error when it
// refuses the row.
func (g *Grid) CommitEdit(unit Unit) error {
	if g.edit.State() == edit.Browsing {
		return edit.ErrNoRowEdit
	}
	if g.edit.State() == edit.CellEditing {
		if err := g.endCellEdit(edit.Commit); err != nil {
			g.fail("commit cell", err)
			return err
		}
	}
	if unit == Cell {
		return nil
	}
	if err := g.endRowEdit(edit.Commit); err != nil {
		g.fail("commit row", err)
		return err
	}
	return nil
}

// CancelEdit discards the open cell, or the open row with its cell. It
// reports false when nothing was open or the source cannot roll the row
// back; the row then stays open.
func (g *Grid) CancelEdit(unit Unit) bool {
	if g.edit.State() == edit.Browsing {
		return false
	}
	if g.edit.State() == edit.CellEditing {
		if err := g.endCellEdit(edit.Cancel); err != nil {
			g.fail("cancel cell", err)
			return false
		}
	}
	if unit == Cell {
		return true
	}
	if err := g.endRowEdit(edit.Cancel); err != nil {
		g.fail("cancel row", err)
		return false
	}
	return true
}

// AddNewRow appends a new item, makes it current and opens it for editing.
func (g *Grid) AddNewRow() bool {
	es, ok := g.items.(source.EditableSource)
	if !ok || g.readOnly {
		return false
	}
	if !g.commitEditing() {
		return false
	}
	it, err := es.AddNew()
	if err != nil {
		g.fail("add row", err)
		return false
	}
	row := g.items.IndexOf(it)
	if row < 0 {
		return false
	}
	col := g.current.ColumnIndex
	if g.cols.At(col) == nil {
		col = g.firstColumnIndex()
	}
	if !g.UpdateSelectionAndCurrency(col, g.SlotFromRowIndex(row), selection.SelectCurrent, true) {
		return false
	}
	return g.BeginEdit()
}

// DeleteSelected removes the selected items from the source.
func (g *Grid) DeleteSelected() bool {
	es, ok := g.items.(source.EditableSource)
	if !ok || g.readOnly {
		return false
	}
	removed := false
	for _, it := range g.sel.Items() {
		if err := es.Remove(it); err != nil {
			g.fail("remove row", err)
			return removed
		}
		removed = true
	}
	return removed
}

// IsEditing reports whether a row is open.
func (g *Grid) IsEditing() bool { return g.edit.State() != edit.Browsing }

// IsCellValid reports whether the cell at column index col on slot has no
// validation errors.
func (g *Grid) IsCellValid(slot, col int) bool {
	c := g.cols.At(col)
	if c == nil || slot != g.edit.Slot() {
		return true
	}
	return g.edit.IsCellValid(c.Binding)
}

// IsRowValid reports whether the row at slot has no validation errors.
func (g *Grid) IsRowValid(slot int) bool {
	return slot != g.edit.Slot() || g.edit.IsRowValid()
}

func (g *Grid) endCellEdit(action edit.Action) error {
	slot, col := g.edit.Slot(), g.cols.At(g.edit.Column())
	if err := g.edit.EndCell(action); err != nil {
		return err
	}
	for _, fn := range g.onCellEnded {
		fn(CellEditEnded{Slot: slot, Column: col, Action: action})
	}
	return nil
}

func (g *Grid) endRowEdit(action edit.Action) error {
	it := g.edit.Item()
	if err := g.edit.EndRow(action); err != nil {
		return err
	}
	for _, fn := range g.onRowEnded {
		fn(RowEditEnded{Item: it, Action: action})
	}
	return nil
}

// commitEditing commits whatever is open.
func (g *Grid) commitEditing() bool {
	if g.edit.State() == edit.Browsing {
		return true
	}
	err := g.CommitEdit(Row)
	return err == nil || errors.Is(err, edit.ErrNoRowEdit)
}

func (g *Grid) fail(op string, err error) {
	g.lastErr = err
	g.log.Debug(op+" failed", "err", err)
}
