package editor

import (
	"errors"
	"fmt"
	"reflect"

	"gridview/internal/source"
)

// ErrNoKey is returned when a row of a table without a primary key is
// written.
var ErrNoKey = errors.New("table has no primary key")

// Binding stages the committed rows of one table into a tracker. Its
// methods plug into source.Table as commit and remove hooks.
type Binding struct {
	Tracker *ChangeTracker
	Table   string
	Keys    []string
}

// Commit stages a committed row: new rows as inserts, changed fields of
// existing rows as cell edits keyed by the values before the edit.
func (b Binding) Commit(row *source.Row, before map[string]any) error {
	if len(b.Keys) == 0 {
		return fmt.Errorf("stage %s: %w", b.Table, ErrNoKey)
	}
	if before == nil {
		values := make(map[string]any)
		for _, f := range row.Fields() {
			if v, _ := row.Get(f); v != nil {
				values[f] = v
			}
		}
		b.Tracker.StageInsert(RowInsert{Table: b.Table, Row: row.ID(), Values: values})
		return nil
	}
	key := b.key(before)
	for _, f := range row.Fields() {
		now, _ := row.Get(f)
		if reflect.DeepEqual(before[f], now) {
			continue
		}
		b.Tracker.StageEdit(CellEdit{
			Table:  b.Table,
			Row:    row.ID(),
			Key:    key,
			Column: f,
			Old:    before[f],
			New:    now,
		})
	}
	return nil
}

// Remove stages the deletion of row.
func (b Binding) Remove(row *source.Row) error {
	if len(b.Keys) == 0 {
		return fmt.Errorf("stage %s: %w", b.Table, ErrNoKey)
	}
	b.Tracker.StageDelete(RowDelete{Table: b.Table, Row: row.ID(), Key: b.key(row.Snapshot())})
	return nil
}

func (b Binding) key(values map[string]any) map[string]any {
	key := make(map[string]any, len(b.Keys))
	for _, k := range b.Keys {
		key[k] = values[k]
	}
	return key
}
