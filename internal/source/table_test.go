package source

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

var fields = []string{"id", "name", "team"}

func seeded(n int, opts ...TableOption) *Table {
	values := make([]map[string]any, n)
	for i := range values {
		values[i] = map[string]any{"id": i, "name": fmt.Sprintf("n%02d", i), "team": fmt.Sprintf("t%d", i%3)}
	}
	return NewTable(fields, append([]TableOption{WithRows(values...)}, opts...)...)
}

func pager(total int) Loader {
	return func(_ context.Context, offset, limit int) ([]map[string]any, bool, error) {
		var out []map[string]any
		for i := offset; i < total && len(out) < limit; i++ {
			out = append(out, map[string]any{"id": i, "name": fmt.Sprintf("n%02d", i)})
		}
		return out, offset+len(out) < total, nil
	}
}

func TestTableBasics(t *testing.T) {
	tbl := seeded(5)
	require.Equal(t, 5, tbl.Len())
	require.Equal(t, 0, tbl.CurrentPosition())
	require.Nil(t, tbl.At(5))
	require.Nil(t, tbl.At(-1))

	r := tbl.At(3)
	require.Equal(t, 3, tbl.IndexOf(r))
	v, ok := r.Get("name")
	require.True(t, ok)
	require.Equal(t, "n03", v)

	require.True(t, tbl.MoveCurrentTo(4))
	require.True(t, tbl.MoveCurrentTo(-1))
	require.False(t, tbl.MoveCurrentTo(5))
	require.Equal(t, -1, tbl.CurrentPosition())
}

func TestTableSetUnknownField(t *testing.T) {
	tbl := seeded(1)
	err := tbl.At(0).Set("missing", 1)
	require.ErrorIs(t, err, ErrUnknownField)
}

func TestTablePaging(t *testing.T) {
	tbl := NewTable(fields, WithLoader(pager(25)))
	var inserted []Change
	tbl.Subscribe(func(c Change) { inserted = append(inserted, c) })

	require.True(t, tbl.HasMoreItems())
	n, err := tbl.LoadMoreItems(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, 10, n)
	require.Equal(t, 0, tbl.CurrentPosition())

	n, err = tbl.LoadMoreItems(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, 10, n)
	n, err = tbl.LoadMoreItems(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.False(t, tbl.HasMoreItems())
	require.Equal(t, 25, tbl.Len())

	n, err = tbl.LoadMoreItems(context.Background(), 10)
	require.NoError(t, err)
	require.Zero(t, n)

	require.Len(t, inserted, 3)
	require.Equal(t, Insert, inserted[1].Kind)
	require.Equal(t, 10, inserted[1].Index)
	require.Equal(t, 10, inserted[1].Count)
}

func TestTablePagingError(t *testing.T) {
	boom := errors.New("boom")
	tbl := NewTable(fields, WithLoader(func(context.Context, int, int) ([]map[string]any, bool, error) {
		return nil, false, boom
	}))
	_, err := tbl.LoadMoreItems(context.Background(), 10)
	require.ErrorIs(t, err, boom)
	require.True(t, tbl.HasMoreItems())
}

func TestTableEditCancelRestores(t *testing.T) {
	tbl := seeded(3)
	r := tbl.At(1)
	require.NoError(t, tbl.BeginEdit(r))
	require.NoError(t, r.Set("name", "changed"))
	require.NoError(t, tbl.CancelEdit(r))

	v, _ := r.Get("name")
	require.Equal(t, "n01", v)
	require.ErrorIs(t, tbl.EndEdit(r), ErrNotEditing)
}

func TestTableEditCommitHook(t *testing.T) {
	var seen map[string]any
	fail := true
	tbl := seeded(3, WithCommitHook(func(row *Row, before map[string]any) error {
		if fail {
			return errors.New("rejected")
		}
		seen = before
		return nil
	}))
	r := tbl.At(0)
	require.NoError(t, tbl.BeginEdit(r))
	require.ErrorIs(t, tbl.BeginEdit(tbl.At(1)), ErrAlreadyEditing)
	require.NoError(t, r.Set("name", "x"))

	require.Error(t, tbl.EndEdit(r))
	require.True(t, tbl.IsEditing(r))

	fail = false
	require.NoError(t, tbl.EndEdit(r))
	require.False(t, tbl.IsEditing(r))
	require.Equal(t, "n00", seen["name"])
}

func TestTableReadOnly(t *testing.T) {
	tbl := seeded(2, ReadOnly())
	require.ErrorIs(t, tbl.BeginEdit(tbl.At(0)), ErrReadOnly)
	_, err := tbl.AddNew()
	require.ErrorIs(t, err, ErrReadOnly)
	require.ErrorIs(t, tbl.Remove(tbl.At(0)), ErrReadOnly)
}

func TestTableAddNew(t *testing.T) {
	tbl := seeded(2)
	it, err := tbl.AddNew()
	require.NoError(t, err)
	require.True(t, tbl.IsAddingNew())
	require.Equal(t, it, tbl.CurrentAddItem())
	require.Equal(t, 3, tbl.Len())

	_, err = tbl.AddNew()
	require.ErrorIs(t, err, ErrAddingNew)

	require.NoError(t, tbl.CancelNew())
	require.Equal(t, 2, tbl.Len())
	require.Nil(t, tbl.CurrentAddItem())
	require.ErrorIs(t, tbl.CommitNew(), ErrNotAddingNew)

	it, err = tbl.AddNew()
	require.NoError(t, err)
	require.NoError(t, it.Set("name", "new"))
	require.NoError(t, tbl.EndEdit(it))
	require.False(t, tbl.IsAddingNew())
	require.Equal(t, 3, tbl.Len())
}

func TestTableAppendKeepsAddRowLast(t *testing.T) {
	tbl := NewTable(fields, WithLoader(pager(4)))
	_, err := tbl.LoadMoreItems(context.Background(), 2)
	require.NoError(t, err)
	it, err := tbl.AddNew()
	require.NoError(t, err)

	_, err = tbl.LoadMoreItems(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, 5, tbl.Len())
	require.Equal(t, 4, tbl.IndexOf(it))
	v, _ := tbl.At(3).Get("id")
	require.Equal(t, 3, v)
}

func ids(tbl *Table) []any {
	var out []any
	for i := range tbl.Len() {
		v, _ := tbl.At(i).Get("id")
		out = append(out, v)
	}
	return out
}

func TestTablePagingIgnoresLocalRemovals(t *testing.T) {
	tbl := NewTable(fields, WithLoader(pager(10)))
	ctx := context.Background()
	_, err := tbl.LoadMoreItems(ctx, 4)
	require.NoError(t, err)
	require.NoError(t, tbl.Remove(tbl.At(1)))

	_, err = tbl.LoadMoreItems(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, []any{0, 2, 3, 4, 5, 6, 7}, ids(tbl))
}

func TestTablePagingIgnoresLocalInserts(t *testing.T) {
	tbl := NewTable(fields, WithLoader(pager(10)))
	ctx := context.Background()
	_, err := tbl.LoadMoreItems(ctx, 4)
	require.NoError(t, err)
	_, err = tbl.AddNew()
	require.NoError(t, err)
	require.NoError(t, tbl.CommitNew())

	_, err = tbl.LoadMoreItems(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, []any{0, 1, 2, 3, nil, 4, 5, 6, 7}, ids(tbl))
}

func TestTableResetRestartsPaging(t *testing.T) {
	tbl := NewTable(fields, WithLoader(pager(10)))
	ctx := context.Background()
	_, err := tbl.LoadMoreItems(ctx, 4)
	require.NoError(t, err)

	tbl.Reset([]map[string]any{{"id": 0}, {"id": 1}}, true)
	_, err = tbl.LoadMoreItems(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, []any{0, 1, 2, 3}, ids(tbl))
}

func TestTableRemove(t *testing.T) {
	tbl := seeded(4)
	var got Change
	unsub := tbl.Subscribe(func(c Change) { got = c })
	require.True(t, tbl.MoveCurrentTo(3))

	r := tbl.At(1)
	require.NoError(t, tbl.Remove(r))
	require.Equal(t, Remove, got.Kind)
	require.Equal(t, 1, got.Index)
	require.Equal(t, []Item{r}, got.Items)
	require.Equal(t, 2, tbl.CurrentPosition())
	require.Equal(t, -1, tbl.IndexOf(r))
	require.ErrorIs(t, tbl.Remove(r), ErrNotFound)

	unsub()
	got = Change{Kind: -1}
	require.NoError(t, tbl.Remove(tbl.At(2)))
	require.Equal(t, ChangeKind(-1), got.Kind)
	require.Equal(t, 1, tbl.CurrentPosition())
}

func TestTableRemoveHookVeto(t *testing.T) {
	tbl := seeded(2, WithRemoveHook(func(*Row) error { return errors.New("no") }))
	require.Error(t, tbl.Remove(tbl.At(0)))
	require.Equal(t, 2, tbl.Len())
}

func TestTableGroupBy(t *testing.T) {
	tbl := seeded(9)
	require.ErrorIs(t, tbl.GroupBy("nope"), ErrUnknownField)

	require.NoError(t, tbl.GroupBy("team"))
	require.Equal(t, []Group{
		{Key: "t0", Level: 0, Count: 3},
		{Key: "t1", Level: 0, Count: 3},
		{Key: "t2", Level: 0, Count: 3},
	}, tbl.Groups())
	v, _ := tbl.At(1).Get("id")
	require.Equal(t, 3, v)

	require.NoError(t, tbl.GroupBy())
	require.Empty(t, tbl.Groups())
}

func TestTableNestedGroups(t *testing.T) {
	tbl := NewTable([]string{"a", "b"}, WithRows(
		map[string]any{"a": "x", "b": "1"},
		map[string]any{"a": "y", "b": "1"},
		map[string]any{"a": "x", "b": "2"},
		map[string]any{"a": "x", "b": "1"},
	))
	require.NoError(t, tbl.GroupBy("a", "b"))
	require.Equal(t, []Group{
		{Key: "x", Level: 0, Count: 3},
		{Key: "1", Level: 1, Count: 2},
		{Key: "2", Level: 1, Count: 1},
		{Key: "y", Level: 0, Count: 1},
		{Key: "1", Level: 1, Count: 1},
	}, tbl.Groups())
}

func TestTableRegroupOnCommit(t *testing.T) {
	tbl := seeded(3)
	require.NoError(t, tbl.GroupBy("team"))
	var kinds []ChangeKind
	tbl.Subscribe(func(c Change) { kinds = append(kinds, c.Kind) })

	r := tbl.At(0)
	require.NoError(t, tbl.BeginEdit(r))
	require.NoError(t, r.Set("team", "t2"))
	require.NoError(t, tbl.EndEdit(r))
	require.Equal(t, []ChangeKind{Reset}, kinds)
	require.Equal(t, []Group{{Key: "t1", Count: 1}, {Key: "t2", Count: 2}}, tbl.Groups())
}

func TestRules(t *testing.T) {
	tbl := NewTable([]string{"name", "age"}, WithRules(
		Required("name"),
		Numeric("age"),
		MaxLength("name", 3),
		Check("name and age differ", func(it Item) bool {
			n, _ := it.Get("name")
			a, _ := it.Get("age")
			return Format(n) != Format(a)
		}),
	), WithRows(map[string]any{"name": "", "age": "x"}))

	errs := tbl.Validate(tbl.At(0))
	require.Len(t, errs, 2)
	require.Equal(t, []string{"name"}, errs[0].Members)
	require.Equal(t, []string{"age"}, errs[1].Members)

	it := tbl.At(0)
	require.NoError(t, it.Set("name", "long"))
	require.NoError(t, it.Set("age", 4))
	errs = tbl.Validate(it)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Error(), "longer than 3")

	require.NoError(t, it.Set("name", "7"))
	require.NoError(t, it.Set("age", "7"))
	errs = tbl.Validate(it)
	require.Len(t, errs, 1)
	require.Empty(t, errs[0].Members)
}
