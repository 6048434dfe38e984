package editor

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"gridview/internal/db"
	"gridview/internal/source"
)

type pg struct{}

func (pg) Placeholder(n int) string { return "$" + string(rune('0'+n)) }

func newPeople(ct *ChangeTracker, rows ...map[string]any) (*source.Table, Binding) {
	b := Binding{Tracker: ct, Table: "people", Keys: []string{"id"}}
	t := source.NewTable([]string{"id", "name", "age"},
		source.WithRows(rows...),
		source.WithCommitHook(b.Commit),
		source.WithRemoveHook(b.Remove))
	return t, b
}

func edit(t *testing.T, tbl *source.Table, i int, field string, v any) {
	t.Helper()
	r := tbl.Row(i)
	if err := tbl.BeginEdit(r); err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	if err := r.Set(field, v); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := tbl.EndEdit(r); err != nil {
		t.Fatalf("end edit: %v", err)
	}
}

func TestCommittedEditsAreStaged(t *testing.T) {
	ct := NewChangeTracker()
	tbl, _ := newPeople(ct, map[string]any{"id": int64(1), "name": "ann", "age": int64(30)})

	edit(t, tbl, 0, "name", "anna")
	if ct.PendingCount() != 1 {
		t.Fatalf("expected 1 pending change, got %d", ct.PendingCount())
	}
	if !ct.IsModified("people", tbl.Row(0).ID(), "name") {
		t.Errorf("expected name to be modified")
	}
	if ct.IsModified("people", tbl.Row(0).ID(), "age") {
		t.Errorf("expected age to be untouched")
	}

	edit(t, tbl, 0, "name", "annie")
	if len(ct.Edits) != 1 || ct.Edits[0].Old != "ann" || ct.Edits[0].New != "annie" {
		t.Errorf("expected merged edit ann -> annie, got %+v", ct.Edits)
	}

	edit(t, tbl, 0, "name", "ann")
	if ct.HasChanges() {
		t.Errorf("expected reverting the cell to drop the edit, got %+v", ct.Edits)
	}
}

func TestInsertAbsorbsEditsAndDelete(t *testing.T) {
	ct := NewChangeTracker()
	tbl, _ := newPeople(ct)

	it, err := tbl.AddNew()
	if err != nil {
		t.Fatalf("add new: %v", err)
	}
	row := it.(*source.Row)
	_ = row.Set("name", "bob")
	if err := tbl.EndEdit(row); err != nil {
		t.Fatalf("commit new: %v", err)
	}
	if !ct.IsInserted("people", row.ID()) {
		t.Fatalf("expected row to be a staged insert")
	}
	if !reflect.DeepEqual(ct.Inserts[0].Values, map[string]any{"name": "bob"}) {
		t.Errorf("expected only non-nil values, got %v", ct.Inserts[0].Values)
	}

	edit(t, tbl, 0, "age", int64(40))
	if len(ct.Edits) != 0 || ct.Inserts[0].Values["age"] != int64(40) {
		t.Errorf("expected edit folded into insert, got edits %v values %v", ct.Edits, ct.Inserts[0].Values)
	}

	if err := tbl.Remove(row); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if ct.HasChanges() {
		t.Errorf("expected deleting a staged insert to leave nothing, got %d", ct.PendingCount())
	}
}

func TestDeleteDropsEdits(t *testing.T) {
	ct := NewChangeTracker()
	tbl, _ := newPeople(ct, map[string]any{"id": int64(7), "name": "cy", "age": nil})

	edit(t, tbl, 0, "name", "cyd")
	if err := tbl.Remove(tbl.Row(0)); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(ct.Edits) != 0 || len(ct.Deletes) != 1 {
		t.Fatalf("expected only the delete, got %d edits %d deletes", len(ct.Edits), len(ct.Deletes))
	}
	if !reflect.DeepEqual(ct.Deletes[0].Key, map[string]any{"id": int64(7)}) {
		t.Errorf("expected key id=7, got %v", ct.Deletes[0].Key)
	}
}

func TestGenerateSQL(t *testing.T) {
	ct := NewChangeTracker()
	ct.StageInsert(RowInsert{Table: "people", Row: uuid.New(), Values: map[string]any{"name": "dee", "age": nil}})
	ct.StageEdit(CellEdit{Table: "people", Row: uuid.New(), Key: map[string]any{"id": 3}, Column: "name", Old: "x", New: "y"})
	ct.StageEdit(CellEdit{Table: "people", Row: uuid.New(), Key: map[string]any{"id": nil}, Column: "age", Old: 1, New: nil})
	ct.StageDelete(RowDelete{Table: "people", Row: uuid.New(), Key: map[string]any{"id": 9}})

	got := ct.GenerateSQL(pg{})
	want := []db.Statement{
		{SQL: `INSERT INTO "people" ("age", "name") VALUES (NULL, $1)`, Args: []any{"dee"}},
		{SQL: `UPDATE "people" SET "name" = $1 WHERE "id" = $2`, Args: []any{"y", 3}},
		{SQL: `UPDATE "people" SET "age" = NULL WHERE "id" IS NULL`},
		{SQL: `DELETE FROM "people" WHERE "id" = $1`, Args: []any{9}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %#v, got %#v", want, got)
	}
}

func TestBindingWithoutKeys(t *testing.T) {
	b := Binding{Tracker: NewChangeTracker(), Table: "log"}
	row := source.NewRow([]string{"msg"}, nil)
	if err := b.Remove(row); !errors.Is(err, ErrNoKey) {
		t.Errorf("expected ErrNoKey, got %v", err)
	}
}
