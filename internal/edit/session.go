// Package edit holds the row and cell edit session of a grid.
//
// A row edit must be open before a cell edit can begin. Ending a cell edit
// leaves the row open until the row itself is committed or cancelled.
package edit

import (
	"fmt"
	"reflect"

	"gridview/internal/source"
)

// State is where the session is.
type State int

const (
	Browsing State = iota
	RowEditing
	CellEditing
)

func (s State) String() string {
	switch s {
	case Browsing:
		return "browsing"
	case RowEditing:
		return "row editing"
	case CellEditing:
		return "cell editing"
	}
	return "unknown"
}

// Action ends an edit.
type Action int

const (
	Commit Action = iota
	Cancel
)

// Session is the edit state of one grid.
type Session struct {
	items     source.ItemSource
	editable  source.EditableSource
	validator source.Validator

	state State
	item  source.Item
	slot  int

	column   int
	field    string
	original any
	value    any

	errs Errors
}

// NewSession returns a browsing session over items. Editing and validation
// hooks are used when items provides them.
func NewSession(items source.ItemSource) *Session {
	s := &Session{slot: -1, column: -1}
	s.SetSource(items)
	return s
}

// SetSource swaps the items. Any open edit is dropped without touching the
// old source.
func (s *Session) SetSource(items source.ItemSource) {
	s.items = items
	s.editable, _ = items.(source.EditableSource)
	s.validator, _ = items.(source.Validator)
	s.reset()
}

func (s *Session) reset() {
	s.state = Browsing
	s.item, s.slot = nil, -1
	s.closeCell()
	s.errs.Clear()
}

func (s *Session) closeCell() {
	s.column, s.field = -1, ""
	s.original, s.value = nil, nil
}

func (s *Session) State() State { return s.state }

// Item returns the row being edited, or nil.
func (s *Session) Item() source.Item { return s.item }

// Slot returns the slot of the row being edited, or -1.
func (s *Session) Slot() int { return s.slot }

// Column returns the column index of the open cell, or -1.
func (s *Session) Column() int { return s.column }

// Field returns the binding of the open cell.
func (s *Session) Field() string { return s.field }

// Value returns the pending value of the open cell.
func (s *Session) Value() any { return s.value }

// SetValue replaces the pending value of the open cell. The item is not
// touched until the cell is committed.
func (s *Session) SetValue(v any) error {
	if s.state != CellEditing {
		return ErrNoCellEdit
	}
	s.value = v
	return nil
}

// Original returns the value the open cell had when it was opened.
func (s *Session) Original() any { return s.original }

// MoveSlot follows the edited row after slots shifted.
func (s *Session) MoveSlot(slot int) { s.slot = slot }

// BeginRow opens a row edit on item. Reopening the same row is a no-op.
func (s *Session) BeginRow(item source.Item, slot int) error {
	if s.state != Browsing {
		if s.item == item {
			return nil
		}
		return ErrOtherRow
	}
	if s.editable != nil {
		if err := s.editable.BeginEdit(item); err != nil {
			return fmt.Errorf("begin row edit: %w", err)
		}
	}
	s.state = RowEditing
	s.item, s.slot = item, slot
	s.errs.Clear()
	return nil
}

// BeginCell opens a cell edit on field of the open row.
func (s *Session) BeginCell(column int, field string) error {
	switch s.state {
	case Browsing:
		return ErrNoRowEdit
	case CellEditing:
		if s.column == column {
			return nil
		}
		return ErrCellOpen
	}
	v, ok := s.item.Get(field)
	if !ok {
		return fmt.Errorf("begin cell edit on %q: %w", field, source.ErrUnknownField)
	}
	s.state = CellEditing
	s.column, s.field = column, field
	s.original, s.value = v, v
	return nil
}

// EndCell commits or cancels the open cell. A commit pushes the pending
// value into the item and validates it; when an error names the field the
// item keeps its old value and the cell stays open.
func (s *Session) EndCell(action Action) error {
	if s.state != CellEditing {
		return ErrNoCellEdit
	}
	if action == Cancel {
		s.closeCell()
		s.state = RowEditing
		return nil
	}
	current, _ := s.item.Get(s.field)
	if !reflect.DeepEqual(current, s.value) {
		if err := s.item.Set(s.field, s.value); err != nil {
			return fmt.Errorf("commit cell %q: %w", s.field, err)
		}
	}
	s.validate()
	if s.errs.Touches(s.field) {
		if err := s.item.Set(s.field, current); err != nil {
			return fmt.Errorf("restore cell %q: %w", s.field, err)
		}
		return ErrInvalid
	}
	s.closeCell()
	s.state = RowEditing
	return nil
}

// EndRow commits or cancels the open row. The cell must be closed first.
func (s *Session) EndRow(action Action) error {
	switch s.state {
	case Browsing:
		return ErrNoRowEdit
	case CellEditing:
		return ErrCellOpen
	}
	if action == Cancel {
		return s.cancelRow()
	}
	s.validate()
	if s.errs.Len() > 0 {
		return ErrInvalid
	}
	if s.editable != nil {
		if err := s.editable.EndEdit(s.item); err != nil {
			return fmt.Errorf("commit row: %w", err)
		}
	}
	s.reset()
	return nil
}

func (s *Session) cancelRow() error {
	if s.editable == nil {
		return ErrNoRollback
	}
	adding := s.editable.IsAddingNew() && s.editable.CurrentAddItem() == s.item
	if !adding && !s.editable.CanCancelEdit() {
		return ErrNoRollback
	}
	if err := s.editable.CancelEdit(s.item); err != nil {
		return fmt.Errorf("cancel row: %w", err)
	}
	s.reset()
	return nil
}

// Discard drops the session without telling the source, for when the
// edited item has gone away.
func (s *Session) Discard() { s.reset() }

func (s *Session) validate() {
	s.errs.Clear()
	if s.validator == nil || s.item == nil {
		return
	}
	s.errs.Add(s.validator.Validate(s.item)...)
}

// Errors returns the errors of the last validation.
func (s *Session) Errors() []source.ValidationError { return s.errs.List() }

// FieldErrors returns the errors naming field.
func (s *Session) FieldErrors(field string) []source.ValidationError { return s.errs.For(field) }

// IsRowValid reports whether the last validation found no errors.
func (s *Session) IsRowValid() bool { return s.errs.Len() == 0 }

// IsCellValid reports whether no error names field.
func (s *Session) IsCellValid(field string) bool { return !s.errs.Touches(field) }
