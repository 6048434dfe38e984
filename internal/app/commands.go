package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gridview/internal/column"
	"gridview/internal/config"
	"gridview/internal/db"
	"gridview/internal/grid"
	"gridview/internal/source"
	"gridview/internal/ui"
	"gridview/internal/viewport"
)

const queryTimeout = 30 * time.Second

// tableDataMsg carries the first page of a selected table.
type tableDataMsg struct {
	name    string
	pks     []string
	columns []db.ColumnInfo
	page    *db.Page
	err     error
}

// pageLoadedMsg carries rows fetched for table as the grid scrolled.
type pageLoadedMsg struct {
	table *source.Table
	rows  []map[string]any
	more  bool
	err   error
}

// commitResultMsg carries commit result.
type commitResultMsg struct {
	err   error
	count int
}

// reconnectResultMsg carries the result of a reconnect attempt.
type reconnectResultMsg struct {
	tables []string
	err    error
}

type reconnecter interface {
	Reconnect(ctx context.Context) error
}

// gridOptions turns the grid settings into options for every grid the app
// creates.
func gridOptions(cfg config.GridConfig) ([]grid.Option, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mode, err := cfg.Mode()
	if err != nil {
		return nil, err
	}
	vis, err := cfg.ScrollBarVisibility()
	if err != nil {
		return nil, err
	}

	colOpts := []column.Option{
		column.WithMinWidth(cfg.MinColumnWidth),
		column.WithFrozenCount(cfg.FrozenColumns),
	}
	if cfg.MaxColumnWidth > 0 {
		colOpts = append(colOpts, column.WithMaxWidth(cfg.MaxColumnWidth))
	}
	return []grid.Option{
		grid.WithSelectionMode(mode),
		grid.WithColumnOptions(colOpts...),
		grid.WithViewportOptions(
			viewport.WithScrollBarVisibility(vis, vis),
			viewport.WithScrollBarThickness(1, 1),
			viewport.WithRowHeightSample(cfg.RowHeightSample),
		),
		grid.WithIncrementalLoading(cfg.IncrementalLoadingThreshold, cfg.DataFetchSize),
	}, nil
}

func (m *Model) loadTable(name string) tea.Cmd {
	backend, limit := m.backend, m.pageSize
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()

		pks, err := backend.PrimaryKeys(ctx, name)
		if err != nil {
			return tableDataMsg{name: name, err: err}
		}
		cols, err := backend.Columns(ctx, name)
		if err != nil {
			return tableDataMsg{name: name, err: err}
		}
		page, err := backend.FetchPage(ctx, name, pks, 0, limit)
		if err != nil {
			return tableDataMsg{name: name, err: err}
		}
		return tableDataMsg{name: name, pks: pks, columns: cols, page: page}
	}
}

// reload reads the current table again from the start.
func (m *Model) reload() tea.Cmd {
	if m.tableName == "" {
		return nil
	}
	return m.loadTable(m.tableName)
}

// loadMore fetches the next n rows of the current table. The fetch is
// planned here and run by the command; its rows are appended when
// pageLoadedMsg comes back.
func (m *Model) loadMore(n int) tea.Cmd {
	if m.table == nil {
		return nil
	}
	t, fetch := m.table, m.table.NextFetch(n)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		rows, more, err := fetch(ctx)
		return pageLoadedMsg{table: t, rows: rows, more: more, err: err}
	}
}

// commitChanges writes every staged change in one transaction. An open
// row edit is committed into the tracker first.
func (m *Model) commitChanges() tea.Cmd {
	if g := m.grid.Grid(); g != nil && g.IsEditing() {
		if err := g.CommitEdit(grid.Row); err != nil {
			m.statusbar.SetMessage("Row not saved: "+err.Error(), ui.MsgError)
			return nil
		}
	}
	if !m.changes.HasChanges() {
		m.statusbar.SetMessage("No pending changes", ui.MsgInfo)
		return nil
	}

	stmts := m.changes.GenerateSQL(m.backend)
	backend := m.backend
	m.log.Debug("committing changes", "statements", len(stmts))
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		if err := backend.Apply(ctx, stmts); err != nil {
			return commitResultMsg{err: err}
		}
		return commitResultMsg{count: len(stmts)}
	}
}

func (m *Model) reconnect() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		if r, ok := backend.(reconnecter); ok {
			if err := r.Reconnect(ctx); err != nil {
				return reconnectResultMsg{err: fmt.Errorf("reconnect: %w", err)}
			}
		}
		tables, err := backend.ListTables(ctx)
		if err != nil {
			return reconnectResultMsg{err: fmt.Errorf("list tables: %w", err)}
		}
		return reconnectResultMsg{tables: tables}
	}
}
