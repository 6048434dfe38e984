package main

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"gridview/internal/config"
	"gridview/internal/db"
)

func TestConnectionFormModes(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	m := newConnectionModel(cfg)

	_, err = m.connection()
	require.EqualError(t, err, "URI cannot be empty")

	m.switchMode()
	require.Equal(t, modeFields, m.mode)
	conn, err := m.connection()
	require.NoError(t, err)
	require.Equal(t, "localhost", conn.Host)
	require.Equal(t, "5432", conn.Port)

	m.inputs[fieldPort].SetValue("five")
	_, err = m.connection()
	require.EqualError(t, err, "invalid port number")

	m.switchMode()
	require.Equal(t, modeSQLite, m.mode)
	m.fileInput.SetValue(" ./data.db ")
	conn, err = m.connection()
	require.NoError(t, err)
	require.Equal(t, "./data.db", conn.SQLite)

	m.switchMode()
	require.Equal(t, modeURI, m.mode)
}

func TestDescribeHidesPassword(t *testing.T) {
	conn := config.SavedConnection{Host: "db", Port: "5432", User: "ann", Password: "secret", Database: "shop"}
	require.Equal(t, "ann@db:5432/shop", describe(conn))
	require.Equal(t, "sqlite://a.db", describe(config.SavedConnection{SQLite: "a.db", URI: "postgres://x"}))
}

func TestOpenSavedSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data.db")
	s, err := db.OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Exec(ctx, `CREATE TABLE items (id INTEGER PRIMARY KEY, label TEXT)`))
	s.Close()

	backend, tables, err := openSaved(ctx, config.SavedConnection{SQLite: path})
	require.NoError(t, err)
	defer backend.Close()
	require.Equal(t, []string{"items"}, tables)
	require.Equal(t, "sqlite://"+path, backend.Name())
}

func TestRootCommandRejectsSQLiteWithDemo(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--sqlite", "a.db", "--demo", "5"})
	require.Error(t, cmd.Execute())
}

func TestPickerDeletingLastConnectionOpensForm(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	cfg.Add(config.SavedConnection{Name: "a", SQLite: "a.db"})
	cfg.Add(config.SavedConnection{Name: "b", SQLite: "b.db"})

	var m tea.Model = newPickerModel(cfg)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	require.Equal(t, 1, m.(pickerModel).cursor)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	require.Equal(t, 0, m.(pickerModel).cursor)
	require.False(t, m.(pickerModel).done)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	require.NotNil(t, cmd)
	pm := m.(pickerModel)
	require.True(t, pm.done)
	require.True(t, pm.newConn)
	require.Empty(t, cfg.Connections)
}
