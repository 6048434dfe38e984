package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"gridview/internal/app"
	"gridview/internal/config"
	"gridview/internal/db"
)

type options struct {
	configPath string
	debugLog   string
	sqlite     string
	demoRows   int
}

// newRootCmd creates the gridview command.
func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "gridview",
		Short: "Browse and edit database tables in a virtualized terminal grid",
		Long: `Open a PostgreSQL or SQLite database and page through its tables in a grid
that only renders the rows on screen. Edits, inserts and deletes are staged
and written in one transaction with Ctrl+S.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "config file (default ~/.config/gridview/config.json)")
	f.StringVar(&opts.debugLog, "debug", "", "write debug logs to this file (or set GRIDVIEW_DEBUG)")
	f.StringVar(&opts.sqlite, "sqlite", "", "open this SQLite database file instead of picking a connection")
	f.IntVar(&opts.demoRows, "demo", 0, "open an in-memory SQLite database seeded with this many rows")
	cmd.MarkFlagsMutuallyExclusive("sqlite", "demo")
	return cmd
}

func run(ctx context.Context, opts options) error {
	if opts.debugLog == "" {
		opts.debugLog = os.Getenv("GRIDVIEW_DEBUG")
	}
	log, closeLog, err := newLogger(opts.debugLog)
	if err != nil {
		return err
	}
	defer closeLog()

	path := opts.configPath
	if path == "" {
		if path, err = config.DefaultPath(); err != nil {
			return err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	backend, tables, err := openBackend(ctx, cfg, opts)
	if err != nil {
		return err
	}
	if backend == nil {
		return nil
	}
	defer backend.Close()
	log.Info("connected", "backend", backend.Name(), "tables", len(tables))

	m, err := app.NewModel(backend, tables, cfg.Grid, log)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// newLogger logs to path at debug level, or discards when path is empty.
func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := tea.LogToFile(path, "gridview")
	if err != nil {
		return nil, nil, fmt.Errorf("open debug log: %w", err)
	}
	log := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return log, func() { f.Close() }, nil
}

// openBackend opens the database named by the flags, or lets the user pick
// a saved connection or enter a new one. A nil backend means the user quit.
func openBackend(ctx context.Context, cfg *config.Config, opts options) (db.Backend, []string, error) {
	switch {
	case opts.demoRows > 0:
		s, err := db.OpenSQLite(ctx, ":memory:")
		if err != nil {
			return nil, nil, err
		}
		if err := db.SeedDemo(ctx, s, opts.demoRows); err != nil {
			s.Close()
			return nil, nil, err
		}
		return listTables(ctx, s)
	case opts.sqlite != "":
		return openSaved(ctx, config.SavedConnection{SQLite: opts.sqlite})
	}

	if len(cfg.Connections) > 0 {
		result, err := tea.NewProgram(newPickerModel(cfg), tea.WithAltScreen()).Run()
		if err != nil {
			return nil, nil, err
		}
		pm, ok := result.(pickerModel)
		if !ok || !pm.done {
			return nil, nil, nil
		}
		if !pm.newConn {
			return pm.backend, pm.tables, nil
		}
	}

	result, err := tea.NewProgram(newConnectionModel(cfg), tea.WithAltScreen()).Run()
	if err != nil {
		return nil, nil, err
	}
	cm, ok := result.(connectionModel)
	if !ok || !cm.done {
		return nil, nil, nil
	}
	return cm.backend, cm.tables, nil
}

// openSaved opens conn: a SQLite file, a Postgres URI or Postgres fields,
// in that order of precedence.
func openSaved(ctx context.Context, conn config.SavedConnection) (db.Backend, []string, error) {
	switch {
	case conn.SQLite != "":
		s, err := db.OpenSQLite(ctx, conn.SQLite)
		if err != nil {
			return nil, nil, err
		}
		return listTables(ctx, s)
	case conn.URI != "":
		p, err := db.ConnectURI(ctx, conn.URI)
		if err != nil {
			return nil, nil, err
		}
		return listTables(ctx, p)
	}
	p, err := db.Connect(ctx, conn.Host, conn.Port, conn.User, conn.Password, conn.Database)
	if err != nil {
		return nil, nil, err
	}
	return listTables(ctx, p)
}

func listTables(ctx context.Context, b db.Backend) (db.Backend, []string, error) {
	tables, err := b.ListTables(ctx)
	if err != nil {
		b.Close()
		return nil, nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return b, tables, nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
