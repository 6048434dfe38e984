package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite is a Backend over a database/sql handle on modernc's driver.
type SQLite struct {
	db   *sql.DB
	path string
}

var _ Backend = (*SQLite)(nil)

// OpenSQLite opens the database file at path; ":memory:" gives a private
// in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps ":memory:" a single database.
	conn.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &SQLite{db: conn, path: path}, nil
}

func (s *SQLite) Name() string { return "sqlite://" + s.path }

func (s *SQLite) Placeholder(int) string { return "?" }

func (s *SQLite) Close() {
	if s.db != nil {
		s.db.Close()
		s.db = nil
	}
}

// Exec runs a statement outside of any staged change set.
func (s *SQLite) Exec(ctx context.Context, query string, args ...any) error {
	if s.db == nil {
		return ErrNotConnected
	}
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *SQLite) ListTables(ctx context.Context) ([]string, error) {
	if s.db == nil {
		return nil, ErrNotConnected
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table'
		  AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

type tableColumn struct {
	ColumnInfo
	pk int
}

func (s *SQLite) tableInfo(ctx context.Context, table string) ([]tableColumn, error) {
	if s.db == nil {
		return nil, ErrNotConnected
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", QuoteIdent(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []tableColumn
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, typ        string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, tableColumn{
			ColumnInfo: ColumnInfo{
				Name:       name,
				DataType:   strings.ToLower(typ),
				Nullable:   notNull == 0,
				HasDefault: dflt.Valid,
				MaxLength:  lengthFromType(typ),
			},
			pk: pk,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s: no such table", table)
	}
	return cols, nil
}

// PrimaryKeys returns the key columns in key order.
func (s *SQLite) PrimaryKeys(ctx context.Context, table string) ([]string, error) {
	cols, err := s.tableInfo(ctx, table)
	if err != nil {
		return nil, err
	}
	var pks []string
	for n := 1; ; n++ {
		found := false
		for _, c := range cols {
			if c.pk == n {
				pks = append(pks, c.Name)
				found = true
			}
		}
		if !found {
			return pks, nil
		}
	}
}

func (s *SQLite) Columns(ctx context.Context, table string) ([]ColumnInfo, error) {
	cols, err := s.tableInfo(ctx, table)
	if err != nil {
		return nil, err
	}
	out := make([]ColumnInfo, len(cols))
	for i, c := range cols {
		out[i] = c.ColumnInfo
	}
	return out, nil
}

func (s *SQLite) FetchPage(ctx context.Context, table string, orderBy []string, offset, limit int) (*Page, error) {
	if s.db == nil {
		return nil, ErrNotConnected
	}
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, selectPage(s, table, orderBy), limit+1, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	page := &Page{Columns: names}
	values := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(names))
		for i, v := range values {
			row[names[i]] = normalize(v)
		}
		page.Rows = append(page.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	trimPage(page, limit)
	page.Elapsed = time.Since(start)
	return page, nil
}

func (s *SQLite) Apply(ctx context.Context, stmts []Statement) error {
	if s.db == nil {
		return ErrNotConnected
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	for _, st := range stmts {
		if _, err := tx.ExecContext(ctx, st.SQL, st.Args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
