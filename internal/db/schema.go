package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

const schemaTimeout = 10 * time.Second

const listTablesSQL = `
	SELECT table_name
	FROM information_schema.tables
	WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
	ORDER BY table_name`

const primaryKeysSQL = `
	SELECT kcu.column_name
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
	  ON tc.constraint_name = kcu.constraint_name
	 AND tc.table_schema = kcu.table_schema
	WHERE tc.constraint_type = 'PRIMARY KEY'
	  AND tc.table_schema = 'public'
	  AND tc.table_name = $1
	ORDER BY kcu.ordinal_position`

const columnsSQL = `
	SELECT column_name, data_type, is_nullable = 'YES',
	       column_default IS NOT NULL,
	       COALESCE(character_maximum_length, 0)::int
	FROM information_schema.columns
	WHERE table_schema = 'public' AND table_name = $1
	ORDER BY ordinal_position`

// catalog runs a schema query under the connection lock and collects one
// value per row.
func catalog[T any](ctx context.Context, d *Postgres, scan pgx.RowToFunc[T], sql string, args ...any) ([]T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return nil, ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(ctx, schemaTimeout)
	defer cancel()

	rows, err := d.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scan)
}

// ListTables returns the public base tables sorted by name.
func (d *Postgres) ListTables(ctx context.Context) ([]string, error) {
	tables, err := catalog(ctx, d, pgx.RowTo[string], listTablesSQL)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

// PrimaryKeys returns the key columns of table in key order.
func (d *Postgres) PrimaryKeys(ctx context.Context, table string) ([]string, error) {
	pks, err := catalog(ctx, d, pgx.RowTo[string], primaryKeysSQL, table)
	if err != nil {
		return nil, fmt.Errorf("primary keys of %s: %w", table, err)
	}
	return pks, nil
}

func (d *Postgres) Columns(ctx context.Context, table string) ([]ColumnInfo, error) {
	cols, err := catalog(ctx, d, func(row pgx.CollectableRow) (ColumnInfo, error) {
		var c ColumnInfo
		var maxLen int32
		err := row.Scan(&c.Name, &c.DataType, &c.Nullable, &c.HasDefault, &maxLen)
		c.MaxLength = int(maxLen)
		return c, err
	}, columnsSQL, table)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	return cols, nil
}
