package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gridview/internal/selection"
	"gridview/internal/viewport"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	require.Empty(t, cfg.Connections)
	require.Equal(t, 4.0, cfg.Grid.MinColumnWidth)
	require.Equal(t, 16, cfg.Grid.RowHeightSample)
	require.Equal(t, 3.0, cfg.Grid.IncrementalLoadingThreshold)
	require.Equal(t, 200, cfg.Grid.PageSize)

	mode, err := cfg.Grid.Mode()
	require.NoError(t, err)
	require.Equal(t, selection.Extended, mode)
	vis, err := cfg.Grid.ScrollBarVisibility()
	require.NoError(t, err)
	require.Equal(t, viewport.AutoVisibility, vis)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"connections": [{"name": "local", "sqlite": "/tmp/x.db"}],
		"grid": {"selection_mode": "single", "frozen_columns": 1}
	}`), 0o600))
	t.Setenv("GRIDVIEW_GRID_PAGE_SIZE", "50")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []SavedConnection{{Name: "local", SQLite: "/tmp/x.db"}}, cfg.Connections)
	require.Equal(t, 1, cfg.Grid.FrozenColumns)
	require.Equal(t, 50, cfg.Grid.PageSize)
	mode, err := cfg.Grid.Mode()
	require.NoError(t, err)
	require.Equal(t, selection.Single, mode)
}

func TestLoadRejectsBadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"grid": {"scrollbar": "sometimes"}}`), 0o600))
	_, err := Load(path)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"grid": {"min_column_width": 10, "max_column_width": 5}}`), 0o600))
	_, err = Load(path)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))
	_, err = Load(path)
	require.Error(t, err)
}

func TestSaveKeepsConnections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg, err := Load(path)
	require.NoError(t, err)

	cfg.Add(SavedConnection{Name: "prod", Host: "db", Port: "5432", User: "me", Database: "app"})
	cfg.Add(SavedConnection{Name: "demo", SQLite: "demo.db"})
	cfg.Add(SavedConnection{Name: "prod", URI: "postgres://me@db/app"})
	require.Len(t, cfg.Connections, 2)
	require.Equal(t, "postgres://me@db/app", cfg.Connections[0].URI)
	require.NoError(t, cfg.Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.Connections, again.Connections)
	require.Equal(t, cfg.Grid, again.Grid)

	again.Delete(5)
	again.Delete(0)
	require.Equal(t, []SavedConnection{{Name: "demo", SQLite: "demo.db"}}, again.Connections)
}

func TestSaveTightensExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)

	cfg.Add(SavedConnection{Name: "prod", Host: "db", Password: "secret"})
	require.NoError(t, cfg.Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
