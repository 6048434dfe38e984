package source

import (
	"cmp"
	"context"
	"fmt"
	"slices"
)

// Loader fetches up to limit rows starting at offset; more reports whether
// further rows remain.
type Loader func(ctx context.Context, offset, limit int) (rows []map[string]any, more bool, err error)

// CommitHook is called when an edited row is committed. before is nil for
// a newly added row. An error keeps the edit open.
type CommitHook func(row *Row, before map[string]any) error

// RemoveHook is called before a row is removed. An error keeps the row.
type RemoveHook func(row *Row) error

// Table is an in-memory item source. It is not safe for concurrent use.
type Table struct {
	fields []string
	rows   []*Row

	current  int
	readOnly bool

	loader Loader
	more   bool
	// fetched counts rows read from the loader. Local adds and removes
	// leave it alone since the backing store has not seen them yet.
	fetched int

	editing  *Row
	snapshot map[string]any
	adding   *Row
	onCommit CommitHook
	onRemove RemoveHook

	groupFields []string
	groups      []Group
	rules       []Rule

	subs    map[int]func(Change)
	nextSub int
}

// TableOption configures a Table.
type TableOption func(*Table)

// WithLoader makes the table page its rows in through l.
func WithLoader(l Loader) TableOption {
	return func(t *Table) {
		t.loader = l
		t.more = l != nil
	}
}

// WithRows seeds the table.
func WithRows(values ...map[string]any) TableOption {
	return func(t *Table) {
		for _, v := range values {
			t.rows = append(t.rows, NewRow(t.fields, v))
		}
		t.fetched += len(values)
	}
}

// WithCommitHook sets the hook run when a row edit is committed.
func WithCommitHook(h CommitHook) TableOption {
	return func(t *Table) { t.onCommit = h }
}

// WithRemoveHook sets the hook run before a row is removed.
func WithRemoveHook(h RemoveHook) TableOption {
	return func(t *Table) { t.onRemove = h }
}

// WithRules adds validation rules.
func WithRules(rules ...Rule) TableOption {
	return func(t *Table) { t.rules = append(t.rules, rules...) }
}

// ReadOnly rejects edits, additions and removals.
func ReadOnly() TableOption {
	return func(t *Table) { t.readOnly = true }
}

// NewTable returns a table with the given field names.
func NewTable(fields []string, opts ...TableOption) *Table {
	t := &Table{fields: fields, current: -1, subs: make(map[int]func(Change))}
	for _, opt := range opts {
		opt(t)
	}
	if len(t.rows) > 0 {
		t.current = 0
	}
	return t
}

// Fields returns the field names.
func (t *Table) Fields() []string { return t.fields }

// IsReadOnly reports whether edits are rejected.
func (t *Table) IsReadOnly() bool { return t.readOnly }

func (t *Table) Len() int { return len(t.rows) }

func (t *Table) At(i int) Item {
	if i < 0 || i >= len(t.rows) {
		return nil
	}
	return t.rows[i]
}

// Row returns the row at i, or nil.
func (t *Table) Row(i int) *Row {
	if i < 0 || i >= len(t.rows) {
		return nil
	}
	return t.rows[i]
}

func (t *Table) IndexOf(it Item) int {
	r, ok := it.(*Row)
	if !ok {
		return -1
	}
	return slices.Index(t.rows, r)
}

func (t *Table) CurrentPosition() int { return t.current }

func (t *Table) MoveCurrentTo(pos int) bool {
	if pos < -1 || pos >= len(t.rows) {
		return false
	}
	t.current = pos
	return true
}

func (t *Table) HasMoreItems() bool { return t.loader != nil && t.more }

// NextFetch captures where the next page of n items starts and returns
// the read for it. The read does not touch the table, so it can run off
// the owning goroutine; hand its result to Append.
func (t *Table) NextFetch(n int) func(ctx context.Context) ([]map[string]any, bool, error) {
	more, loader, offset := t.more, t.loader, t.fetched
	return func(ctx context.Context) ([]map[string]any, bool, error) {
		if loader == nil || !more || n <= 0 {
			return nil, more, nil
		}
		rows, more, err := loader(ctx, offset, n)
		if err != nil {
			return nil, true, fmt.Errorf("load rows at %d: %w", offset, err)
		}
		return rows, more, nil
	}
}

// FetchMore reads the next page of n items without adding it.
func (t *Table) FetchMore(ctx context.Context, n int) ([]map[string]any, bool, error) {
	return t.NextFetch(n)(ctx)
}

// Append adds fetched rows before any row being added.
func (t *Table) Append(values []map[string]any, more bool) {
	t.more = more
	if len(values) == 0 {
		return
	}
	t.fetched += len(values)
	at := len(t.rows)
	if t.adding != nil {
		at--
	}
	added := make([]*Row, len(values))
	for i, v := range values {
		added[i] = NewRow(t.fields, v)
	}
	t.rows = slices.Insert(t.rows, at, added...)
	if t.current >= at {
		t.current += len(added)
	}
	if t.current < 0 {
		t.current = 0
	}
	if len(t.groupFields) > 0 {
		t.regroup()
		t.notify(Change{Kind: Reset})
		return
	}
	items := make([]Item, len(added))
	for i, r := range added {
		items[i] = r
	}
	t.notify(Change{Kind: Insert, Index: at, Count: len(added), Items: items})
}

func (t *Table) LoadMoreItems(ctx context.Context, n int) (int, error) {
	rows, more, err := t.FetchMore(ctx, n)
	if err != nil {
		return 0, err
	}
	t.Append(rows, more)
	return len(rows), nil
}

func (t *Table) row(it Item) (*Row, int, error) {
	r, ok := it.(*Row)
	if !ok {
		return nil, -1, ErrNotFound
	}
	i := slices.Index(t.rows, r)
	if i < 0 {
		return nil, -1, ErrNotFound
	}
	return r, i, nil
}

func (t *Table) BeginEdit(it Item) error {
	if t.readOnly {
		return ErrReadOnly
	}
	r, _, err := t.row(it)
	if err != nil {
		return err
	}
	if t.editing == r {
		return nil
	}
	if t.editing != nil {
		return ErrAlreadyEditing
	}
	t.editing = r
	t.snapshot = r.Snapshot()
	return nil
}

func (t *Table) EndEdit(it Item) error {
	r, i, err := t.row(it)
	if err != nil {
		return err
	}
	if r == t.adding {
		if t.editing == r {
			t.editing, t.snapshot = nil, nil
		}
		return t.CommitNew()
	}
	if t.editing != r {
		return ErrNotEditing
	}
	if t.onCommit != nil {
		if err := t.onCommit(r, t.snapshot); err != nil {
			return err
		}
	}
	before := t.snapshot
	t.editing, t.snapshot = nil, nil
	if t.groupChanged(r, before) {
		t.regroup()
		t.notify(Change{Kind: Reset})
		return nil
	}
	t.notify(Change{Kind: Replace, Index: i, Count: 1})
	return nil
}

func (t *Table) CancelEdit(it Item) error {
	r, i, err := t.row(it)
	if err != nil {
		return err
	}
	if r == t.adding {
		t.editing, t.snapshot = nil, nil
		return t.CancelNew()
	}
	if t.editing != r {
		return ErrNotEditing
	}
	r.Restore(t.snapshot)
	t.editing, t.snapshot = nil, nil
	t.notify(Change{Kind: Replace, Index: i, Count: 1})
	return nil
}

func (t *Table) CanCancelEdit() bool { return true }

// IsEditing reports whether it has an open edit.
func (t *Table) IsEditing(it Item) bool {
	r, ok := it.(*Row)
	return ok && t.editing == r
}

func (t *Table) AddNew() (Item, error) {
	if t.readOnly {
		return nil, ErrReadOnly
	}
	if t.adding != nil {
		return nil, ErrAddingNew
	}
	r := NewRow(t.fields, nil)
	t.rows = append(t.rows, r)
	t.adding = r
	t.notify(Change{Kind: Insert, Index: len(t.rows) - 1, Count: 1, Items: []Item{r}})
	return r, nil
}

func (t *Table) CommitNew() error {
	if t.adding == nil {
		return ErrNotAddingNew
	}
	if t.onCommit != nil {
		if err := t.onCommit(t.adding, nil); err != nil {
			return err
		}
	}
	r := t.adding
	t.adding = nil
	if t.editing == r {
		t.editing, t.snapshot = nil, nil
	}
	if len(t.groupFields) > 0 {
		t.regroup()
		t.notify(Change{Kind: Reset})
		return nil
	}
	t.notify(Change{Kind: Replace, Index: slices.Index(t.rows, r), Count: 1})
	return nil
}

func (t *Table) CancelNew() error {
	if t.adding == nil {
		return ErrNotAddingNew
	}
	r := t.adding
	t.adding = nil
	if t.editing == r {
		t.editing, t.snapshot = nil, nil
	}
	t.removeAt(slices.Index(t.rows, r))
	return nil
}

func (t *Table) IsAddingNew() bool { return t.adding != nil }

func (t *Table) CurrentAddItem() Item {
	if t.adding == nil {
		return nil
	}
	return t.adding
}

func (t *Table) Remove(it Item) error {
	if t.readOnly {
		return ErrReadOnly
	}
	r, i, err := t.row(it)
	if err != nil {
		return err
	}
	if r == t.adding {
		return t.CancelNew()
	}
	if t.onRemove != nil {
		if err := t.onRemove(r); err != nil {
			return err
		}
	}
	if t.editing == r {
		t.editing, t.snapshot = nil, nil
	}
	t.removeAt(i)
	return nil
}

func (t *Table) removeAt(i int) {
	r := t.rows[i]
	t.rows = slices.Delete(t.rows, i, i+1)
	switch {
	case t.current > i:
		t.current--
	case t.current >= len(t.rows):
		t.current = len(t.rows) - 1
	}
	if len(t.groupFields) > 0 {
		t.regroup()
		t.notify(Change{Kind: Reset})
		return
	}
	t.notify(Change{Kind: Remove, Index: i, Count: 1, Items: []Item{r}})
}

// Reset replaces every row.
func (t *Table) Reset(values []map[string]any, more bool) {
	t.rows = t.rows[:0]
	for _, v := range values {
		t.rows = append(t.rows, NewRow(t.fields, v))
	}
	t.more = more
	t.fetched = len(values)
	t.editing, t.snapshot, t.adding = nil, nil, nil
	t.current = min(0, len(t.rows)-1)
	if len(t.groupFields) > 0 {
		t.regroup()
	}
	t.notify(Change{Kind: Reset})
}

func (t *Table) Subscribe(fn func(Change)) func() {
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	return func() { delete(t.subs, id) }
}

func (t *Table) notify(c Change) {
	for _, fn := range t.subs {
		fn(c)
	}
}

// GroupBy sorts the rows by fields and groups them, one level per field.
// No fields removes the grouping.
func (t *Table) GroupBy(fields ...string) error {
	for _, f := range fields {
		if !slices.Contains(t.fields, f) {
			return fmt.Errorf("group by %q: %w", f, ErrUnknownField)
		}
	}
	t.groupFields = slices.Clone(fields)
	t.regroup()
	t.notify(Change{Kind: Reset})
	return nil
}

// GroupFields returns the fields the table is grouped by.
func (t *Table) GroupFields() []string { return t.groupFields }

func (t *Table) Groups() []Group { return t.groups }

func (t *Table) groupChanged(r *Row, before map[string]any) bool {
	for _, f := range t.groupFields {
		if Format(before[f]) != Format(r.values[f]) {
			return true
		}
	}
	return false
}

// regroup sorts the settled rows; a row being added stays last and ungrouped.
func (t *Table) regroup() {
	if len(t.groupFields) == 0 {
		t.groups = nil
		return
	}
	settled := t.rows
	if t.adding != nil {
		settled = t.rows[:len(t.rows)-1]
	}
	var cur *Row
	if t.current >= 0 && t.current < len(t.rows) {
		cur = t.rows[t.current]
	}
	slices.SortStableFunc(settled, func(a, b *Row) int {
		for _, f := range t.groupFields {
			if c := cmp.Compare(Format(a.values[f]), Format(b.values[f])); c != 0 {
				return c
			}
		}
		return 0
	})
	if cur != nil {
		t.current = slices.Index(t.rows, cur)
	}
	t.groups = buildGroups(settled, t.groupFields, 0)
}

func buildGroups(rows []*Row, fields []string, level int) []Group {
	if len(fields) == 0 {
		return nil
	}
	var out []Group
	for i := 0; i < len(rows); {
		key := Format(rows[i].values[fields[0]])
		j := i
		for j < len(rows) && Format(rows[j].values[fields[0]]) == key {
			j++
		}
		out = append(out, Group{Key: key, Level: level, Count: j - i})
		out = append(out, buildGroups(rows[i:j], fields[1:], level+1)...)
		i = j
	}
	return out
}

func (t *Table) Validate(it Item) []ValidationError {
	var errs []ValidationError
	for _, rule := range t.rules {
		errs = append(errs, rule(it)...)
	}
	return errs
}
