package editor

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/google/uuid"

	"gridview/internal/db"
)

// CellEdit represents a staged cell modification.
type CellEdit struct {
	Table  string
	Row    uuid.UUID
	Key    map[string]any
	Column string
	Old    any
	New    any
}

// RowDelete represents a staged row deletion.
type RowDelete struct {
	Table string
	Row   uuid.UUID
	Key   map[string]any
}

// RowInsert represents a staged row insertion.
type RowInsert struct {
	Table  string
	Row    uuid.UUID
	Values map[string]any
}

// ChangeTracker tracks all staged modifications before commit. Rows are
// identified by their in-grid id; Key holds the primary key values the
// database knows the row by.
type ChangeTracker struct {
	Edits   []CellEdit
	Deletes []RowDelete
	Inserts []RowInsert
}

// NewChangeTracker creates a new empty change tracker.
func NewChangeTracker() *ChangeTracker {
	return &ChangeTracker{}
}

// StageEdit adds a cell edit. Edits to a staged insert update the insert;
// a repeated edit of one cell keeps the first old value and disappears
// when the cell is back at it.
func (ct *ChangeTracker) StageEdit(edit CellEdit) {
	if i := ct.insertIndex(edit.Table, edit.Row); i >= 0 {
		ct.Inserts[i].Values[edit.Column] = edit.New
		return
	}
	for i, e := range ct.Edits {
		if e.Table == edit.Table && e.Row == edit.Row && e.Column == edit.Column {
			if reflect.DeepEqual(e.Old, edit.New) {
				ct.Edits = slices.Delete(ct.Edits, i, i+1)
			} else {
				ct.Edits[i].New = edit.New
			}
			return
		}
	}
	if reflect.DeepEqual(edit.Old, edit.New) {
		return
	}
	ct.Edits = append(ct.Edits, edit)
}

// StageDelete adds a row deletion. Deleting a staged insert drops the
// insert instead; pending edits of the row are dropped either way.
func (ct *ChangeTracker) StageDelete(del RowDelete) {
	ct.Edits = slices.DeleteFunc(ct.Edits, func(e CellEdit) bool {
		return e.Table == del.Table && e.Row == del.Row
	})
	if i := ct.insertIndex(del.Table, del.Row); i >= 0 {
		ct.Inserts = slices.Delete(ct.Inserts, i, i+1)
		return
	}
	ct.Deletes = append(ct.Deletes, del)
}

// StageInsert adds a row insertion.
func (ct *ChangeTracker) StageInsert(ins RowInsert) {
	ins.Values = maps.Clone(ins.Values)
	ct.Inserts = append(ct.Inserts, ins)
}

func (ct *ChangeTracker) insertIndex(table string, row uuid.UUID) int {
	return slices.IndexFunc(ct.Inserts, func(ins RowInsert) bool {
		return ins.Table == table && ins.Row == row
	})
}

// IsInserted reports whether row is a staged insert.
func (ct *ChangeTracker) IsInserted(table string, row uuid.UUID) bool {
	return ct.insertIndex(table, row) >= 0
}

// IsModified reports whether column of row has a staged edit.
func (ct *ChangeTracker) IsModified(table string, row uuid.UUID, column string) bool {
	return slices.ContainsFunc(ct.Edits, func(e CellEdit) bool {
		return e.Table == table && e.Row == row && e.Column == column
	})
}

// HasChanges returns whether there are any pending changes.
func (ct *ChangeTracker) HasChanges() bool {
	return len(ct.Edits) > 0 || len(ct.Deletes) > 0 || len(ct.Inserts) > 0
}

// PendingCount returns total count of pending operations.
func (ct *ChangeTracker) PendingCount() int {
	return len(ct.Edits) + len(ct.Deletes) + len(ct.Inserts)
}

// GenerateSQL generates parameterized statements in d's placeholder style.
// Order: INSERTs first, then UPDATEs, then DELETEs. Columns are emitted in
// name order so the output is stable.
func (ct *ChangeTracker) GenerateSQL(d db.Dialect) []db.Statement {
	var stmts []db.Statement

	for _, ins := range ct.Inserts {
		if len(ins.Values) == 0 {
			continue
		}
		var cols, placeholders []string
		var args []any
		for _, col := range slices.Sorted(maps.Keys(ins.Values)) {
			cols = append(cols, db.QuoteIdent(col))
			if v := ins.Values[col]; v == nil {
				placeholders = append(placeholders, "NULL")
			} else {
				args = append(args, v)
				placeholders = append(placeholders, d.Placeholder(len(args)))
			}
		}
		stmts = append(stmts, db.Statement{
			SQL: fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
				db.QuoteIdent(ins.Table),
				strings.Join(cols, ", "),
				strings.Join(placeholders, ", ")),
			Args: args,
		})
	}

	for _, edit := range ct.Edits {
		var args []any
		var setClause string
		if edit.New == nil {
			setClause = fmt.Sprintf("%s = NULL", db.QuoteIdent(edit.Column))
		} else {
			args = append(args, edit.New)
			setClause = fmt.Sprintf("%s = %s", db.QuoteIdent(edit.Column), d.Placeholder(1))
		}
		where, args := whereKey(d, edit.Key, args)
		stmts = append(stmts, db.Statement{
			SQL:  fmt.Sprintf(`UPDATE %s SET %s WHERE %s`, db.QuoteIdent(edit.Table), setClause, where),
			Args: args,
		})
	}

	for _, del := range ct.Deletes {
		where, args := whereKey(d, del.Key, nil)
		stmts = append(stmts, db.Statement{
			SQL:  fmt.Sprintf(`DELETE FROM %s WHERE %s`, db.QuoteIdent(del.Table), where),
			Args: args,
		})
	}

	return stmts
}

func whereKey(d db.Dialect, key map[string]any, args []any) (string, []any) {
	parts := make([]string, 0, len(key))
	for _, col := range slices.Sorted(maps.Keys(key)) {
		if v := key[col]; v == nil {
			parts = append(parts, fmt.Sprintf("%s IS NULL", db.QuoteIdent(col)))
		} else {
			args = append(args, v)
			parts = append(parts, fmt.Sprintf("%s = %s", db.QuoteIdent(col), d.Placeholder(len(args))))
		}
	}
	return strings.Join(parts, " AND "), args
}

// Clear removes all staged changes.
func (ct *ChangeTracker) Clear() {
	ct.Edits = nil
	ct.Deletes = nil
	ct.Inserts = nil
}
