package source

import (
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"
)

// Row is a map-backed Item with a stable identity.
type Row struct {
	id     uuid.UUID
	fields []string
	values map[string]any
}

// NewRow returns a row over fields. Missing values are nil.
func NewRow(fields []string, values map[string]any) *Row {
	r := &Row{id: uuid.New(), fields: fields, values: make(map[string]any, len(fields))}
	for _, f := range fields {
		r.values[f] = values[f]
	}
	return r
}

// ID is the row's stable identity, independent of its position.
func (r *Row) ID() uuid.UUID { return r.id }

// Fields returns the field names in order.
func (r *Row) Fields() []string { return r.fields }

func (r *Row) Get(field string) (any, bool) {
	v, ok := r.values[field]
	return v, ok
}

func (r *Row) Set(field string, value any) error {
	if !slices.Contains(r.fields, field) {
		return fmt.Errorf("set %q: %w", field, ErrUnknownField)
	}
	r.values[field] = value
	return nil
}

// Snapshot copies the current values.
func (r *Row) Snapshot() map[string]any {
	return maps.Clone(r.values)
}

// Restore puts back values taken with Snapshot.
func (r *Row) Restore(snapshot map[string]any) {
	r.values = maps.Clone(snapshot)
}

// Format renders a value the way cells show it.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return NullText
	case string:
		return x
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// NullText is how a missing value is shown.
const NullText = "<NULL>"
