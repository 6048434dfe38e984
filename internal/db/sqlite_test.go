package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func openDemo(t *testing.T, n int) *SQLite {
	t.Helper()
	ctx := context.Background()
	s, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(s.Close)
	require.NoError(t, SeedDemo(ctx, s, n))
	return s
}

func TestSQLiteSchema(t *testing.T) {
	ctx := context.Background()
	s := openDemo(t, 3)

	tables, err := s.ListTables(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"people", "teams"}, tables)

	pks, err := s.PrimaryKeys(ctx, "people")
	require.NoError(t, err)
	require.Equal(t, []string{"id"}, pks)

	pks, err = s.PrimaryKeys(ctx, "teams")
	require.NoError(t, err)
	require.Empty(t, pks)

	cols, err := s.Columns(ctx, "people")
	require.NoError(t, err)
	require.Len(t, cols, 5)
	require.Equal(t, "name", cols[1].Name)
	require.False(t, cols[1].Nullable)
	require.Equal(t, 40, cols[1].MaxLength)
	require.True(t, cols[3].IsNumeric())
	require.False(t, cols[4].IsNumeric())

	_, err = s.Columns(ctx, "missing")
	require.Error(t, err)
}

func TestSQLiteFetchPage(t *testing.T) {
	ctx := context.Background()
	s := openDemo(t, 25)

	page, err := s.FetchPage(ctx, "people", []string{"id"}, 0, 10)
	require.NoError(t, err)
	require.Equal(t, []string{"id", "name", "team", "age", "email"}, page.Columns)
	require.Len(t, page.Rows, 10)
	require.True(t, page.More)
	require.Equal(t, int64(1), page.Rows[0]["id"])
	require.Equal(t, "person 0001", page.Rows[0]["name"])

	page, err = s.FetchPage(ctx, "people", []string{"id"}, 20, 10)
	require.NoError(t, err)
	require.Len(t, page.Rows, 5)
	require.False(t, page.More)
	require.Equal(t, int64(21), page.Rows[0]["id"])

	page, err = s.FetchPage(ctx, "people", []string{"id"}, 15, 10)
	require.NoError(t, err)
	require.Len(t, page.Rows, 10)
	require.False(t, page.More)
}

func TestSQLiteApplyIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := openDemo(t, 2)

	err := s.Apply(ctx, []Statement{
		{SQL: `UPDATE people SET name = ? WHERE id = ?`, Args: []any{"renamed", 1}},
		{SQL: `INSERT INTO nowhere VALUES (1)`},
	})
	require.Error(t, err)

	page, err := s.FetchPage(ctx, "people", []string{"id"}, 0, 1)
	require.NoError(t, err)
	require.Equal(t, "person 0001", page.Rows[0]["name"])

	require.NoError(t, s.Apply(ctx, []Statement{
		{SQL: `UPDATE people SET name = ? WHERE id = ?`, Args: []any{"renamed", 1}},
		{SQL: `DELETE FROM people WHERE id = ?`, Args: []any{2}},
	}))
	page, err = s.FetchPage(ctx, "people", []string{"id"}, 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	require.Equal(t, "renamed", page.Rows[0]["name"])
}

func TestSelectPage(t *testing.T) {
	s := &SQLite{}
	require.Equal(t, `SELECT * FROM "people" ORDER BY "team", "id" LIMIT ? OFFSET ?`,
		selectPage(s, "people", []string{"team", "id"}))
	p := &Postgres{}
	require.Equal(t, `SELECT * FROM "we""ird" LIMIT $1 OFFSET $2`, selectPage(p, `we"ird`, nil))
}

func TestNormalize(t *testing.T) {
	require.Equal(t, "abc", normalize([]byte("abc")))
	require.Nil(t, normalize(nil))
	require.Equal(t, int64(4), normalize(int64(4)))
	require.Equal(t, "00000000-0000-0000-0000-000000000001", normalize([16]byte{15: 1}))
	require.Equal(t, 12, lengthFromType("VARCHAR( 12 )"))
	require.Equal(t, 0, lengthFromType("text"))
}
