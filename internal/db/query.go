package db

import (
	"context"
	"fmt"
	"time"
)

// FetchPage reads one page of table. One extra row is requested to tell
// whether more follow.
func (d *Postgres) FetchPage(ctx context.Context, table string, orderBy []string, offset, limit int) (*Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return nil, ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	rows, err := d.conn.Query(ctx, selectPage(d, table, orderBy), limit+1, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	page := &Page{Columns: make([]string, len(fields))}
	for i, f := range fields {
		page.Columns[i] = f.Name
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, len(values))
		for i, v := range values {
			row[page.Columns[i]] = normalize(v)
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

// Apply runs stmts in one transaction, rolling back on the first failure.
func (d *Postgres) Apply(ctx context.Context, stmts []Statement) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	tx, err := d.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	for _, s := range stmts {
		if _, err := tx.Exec(ctx, s.SQL, s.Args...); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("exec: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
