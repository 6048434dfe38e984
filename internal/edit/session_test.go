package edit

import (
	"errors"
	"testing"

	"gridview/internal/source"
)

func newTable(opts ...source.TableOption) *source.Table {
	opts = append([]source.TableOption{source.WithRows(
		map[string]any{"name": "ada", "age": 36},
		map[string]any{"name": "bob", "age": 41},
	)}, opts...)
	return source.NewTable([]string{"name", "age"}, opts...)
}

func get(t *testing.T, it source.Item, field string) any {
	t.Helper()
	v, ok := it.Get(field)
	if !ok {
		t.Fatalf("field %q missing", field)
	}
	return v
}

func TestBeginCancelRoundTrip(t *testing.T) {
	tbl := newTable()
	s := NewSession(tbl)
	it := tbl.At(0)

	if err := s.BeginRow(it, 0); err != nil {
		t.Fatalf("BeginRow: %v", err)
	}
	if err := s.BeginCell(0, "name"); err != nil {
		t.Fatalf("BeginCell: %v", err)
	}
	if err := s.SetValue("grace"); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if err := s.EndCell(Commit); err != nil {
		t.Fatalf("EndCell: %v", err)
	}
	if got := get(t, it, "name"); got != "grace" {
		t.Errorf("expected committed cell grace, got %v", got)
	}

	if err := s.BeginCell(1, "age"); err != nil {
		t.Fatalf("BeginCell: %v", err)
	}
	s.SetValue(99)
	if err := s.EndCell(Cancel); err != nil {
		t.Fatalf("EndCell cancel: %v", err)
	}
	if got := get(t, it, "age"); got != 36 {
		t.Errorf("expected cancelled cell to keep 36, got %v", got)
	}

	if err := s.EndRow(Cancel); err != nil {
		t.Fatalf("EndRow cancel: %v", err)
	}
	if got := get(t, it, "name"); got != "ada" {
		t.Errorf("expected row cancel to restore ada, got %v", got)
	}
	if s.State() != Browsing {
		t.Errorf("expected browsing, got %v", s.State())
	}
}

func TestStateRules(t *testing.T) {
	tbl := newTable()
	s := NewSession(tbl)

	if err := s.BeginCell(0, "name"); !errors.Is(err, ErrNoRowEdit) {
		t.Errorf("expected ErrNoRowEdit, got %v", err)
	}
	if err := s.EndRow(Commit); !errors.Is(err, ErrNoRowEdit) {
		t.Errorf("expected ErrNoRowEdit, got %v", err)
	}
	if err := s.EndCell(Commit); !errors.Is(err, ErrNoCellEdit) {
		t.Errorf("expected ErrNoCellEdit, got %v", err)
	}

	s.BeginRow(tbl.At(0), 0)
	if err := s.BeginRow(tbl.At(1), 1); !errors.Is(err, ErrOtherRow) {
		t.Errorf("expected ErrOtherRow, got %v", err)
	}
	if err := s.BeginRow(tbl.At(0), 0); err != nil {
		t.Errorf("expected reopening the same row to succeed, got %v", err)
	}
	s.BeginCell(0, "name")
	if err := s.BeginCell(1, "age"); !errors.Is(err, ErrCellOpen) {
		t.Errorf("expected ErrCellOpen, got %v", err)
	}
	if err := s.EndRow(Commit); !errors.Is(err, ErrCellOpen) {
		t.Errorf("expected ErrCellOpen, got %v", err)
	}
	if err := s.BeginCell(2, "missing"); !errors.Is(err, ErrCellOpen) {
		t.Errorf("expected ErrCellOpen, got %v", err)
	}
}

func TestValidationBlocksCellCommit(t *testing.T) {
	tbl := newTable(source.WithRules(source.Required("name"), source.Numeric("age")))
	s := NewSession(tbl)
	it := tbl.At(1)
	s.BeginRow(it, 1)
	s.BeginCell(1, "age")
	s.SetValue("old")

	if err := s.EndCell(Commit); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if s.State() != CellEditing {
		t.Errorf("expected the cell to stay open, got %v", s.State())
	}
	if got := get(t, it, "age"); got != 41 {
		t.Errorf("expected item to keep 41, got %v", got)
	}
	if s.IsCellValid("age") || !s.IsCellValid("name") || s.IsRowValid() {
		t.Errorf("expected only age to be invalid")
	}

	s.SetValue("42")
	if err := s.EndCell(Commit); err != nil {
		t.Fatalf("EndCell: %v", err)
	}
	if err := s.EndRow(Commit); err != nil {
		t.Fatalf("EndRow: %v", err)
	}
	if got := get(t, it, "age"); got != "42" {
		t.Errorf("expected 42, got %v", got)
	}
}

func TestEntityErrorBlocksRowCommit(t *testing.T) {
	tbl := newTable(source.WithRules(source.Check("ada is retired", func(it source.Item) bool {
		v, _ := it.Get("name")
		return v != "ada"
	})))
	s := NewSession(tbl)
	s.BeginRow(tbl.At(0), 0)

	if err := s.EndRow(Commit); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if s.State() != RowEditing {
		t.Errorf("expected row to stay open, got %v", s.State())
	}
	if !s.IsCellValid("name") || s.IsRowValid() {
		t.Errorf("expected an entity-level error only")
	}
	if len(s.Errors()) != 1 {
		t.Errorf("expected 1 error, got %d", len(s.Errors()))
	}
}

func TestCommitHookFailureKeepsRowOpen(t *testing.T) {
	boom := errors.New("write failed")
	tbl := newTable(source.WithCommitHook(func(*source.Row, map[string]any) error { return boom }))
	s := NewSession(tbl)
	s.BeginRow(tbl.At(0), 0)
	if err := s.EndRow(Commit); !errors.Is(err, boom) {
		t.Fatalf("expected hook error, got %v", err)
	}
	if s.State() != RowEditing {
		t.Errorf("expected row to stay open, got %v", s.State())
	}
}

type plainItems struct{ rows []*source.Row }

func (p plainItems) Len() int                   { return len(p.rows) }
func (p plainItems) At(i int) source.Item       { return p.rows[i] }
func (p plainItems) IndexOf(it source.Item) int { return -1 }

func TestCancelNeedsRollback(t *testing.T) {
	row := source.NewRow([]string{"name"}, map[string]any{"name": "x"})
	s := NewSession(plainItems{rows: []*source.Row{row}})
	s.BeginRow(row, 0)
	if err := s.EndRow(Cancel); !errors.Is(err, ErrNoRollback) {
		t.Fatalf("expected ErrNoRollback, got %v", err)
	}
	if s.State() != RowEditing {
		t.Errorf("expected row to stay open, got %v", s.State())
	}
	s.Discard()
	if s.State() != Browsing {
		t.Errorf("expected browsing after discard, got %v", s.State())
	}
}

func TestErrorsDedup(t *testing.T) {
	var e Errors
	e.Add(
		source.ValidationError{Message: "bad", Members: []string{"a", "b"}},
		source.ValidationError{Message: "bad", Members: []string{"b", "a"}},
		source.ValidationError{Message: "bad", Members: []string{"a"}},
		source.ValidationError{Message: "bad"},
		source.ValidationError{Message: "bad"},
	)
	if e.Len() != 3 {
		t.Errorf("expected 3 errors, got %d", e.Len())
	}
	if len(e.For("b")) != 1 {
		t.Errorf("expected 1 error for b, got %d", len(e.For("b")))
	}
}
