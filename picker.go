package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gridview/internal/config"
	"gridview/internal/db"
	"gridview/internal/ui"
)

// pickerModel chooses from saved connections.
type pickerModel struct {
	cfg        *config.Config
	cursor     int
	err        string
	connecting bool
	done       bool
	newConn    bool
	backend    db.Backend
	tables     []string
	width      int
	height     int
}

type connectResultMsg struct {
	backend db.Backend
	tables  []string
	err     error
}

var pickerKeys = struct {
	Quit, Up, Down, New, Delete, Connect key.Binding
}{
	Quit:    key.NewBinding(key.WithKeys("ctrl+c")),
	Up:      key.NewBinding(key.WithKeys("up", "k")),
	Down:    key.NewBinding(key.WithKeys("down", "j")),
	New:     key.NewBinding(key.WithKeys("n")),
	Delete:  key.NewBinding(key.WithKeys("d", "x")),
	Connect: key.NewBinding(key.WithKeys("enter")),
}

func newPickerModel(cfg *config.Config) pickerModel {
	return pickerModel{cfg: cfg}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, pickerKeys.Quit) {
			return m, tea.Quit
		}
		if m.connecting {
			return m, nil
		}
		return m.handleKey(msg)

	case connectResultMsg:
		m.connecting = false
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.done = true
		m.backend = msg.backend
		m.tables = msg.tables
		return m, tea.Quit
	}

	return m, nil
}

func (m pickerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.cfg.Connections)
	switch {
	case key.Matches(msg, pickerKeys.Up):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, pickerKeys.Down):
		m.cursor = max(min(m.cursor+1, n-1), 0)
	case key.Matches(msg, pickerKeys.New):
		m.done, m.newConn = true, true
		return m, tea.Quit
	case key.Matches(msg, pickerKeys.Delete) && n > 0:
		m.cfg.Delete(m.cursor)
		if err := m.cfg.Save(); err != nil {
			m.err = err.Error()
		}
		if len(m.cfg.Connections) == 0 {
			m.done, m.newConn = true, true
			return m, tea.Quit
		}
		m.cursor = min(m.cursor, len(m.cfg.Connections)-1)
	case key.Matches(msg, pickerKeys.Connect) && n > 0:
		m.connecting = true
		m.err = ""
		return m, connectCmd(m.cfg.Connections[m.cursor])
	}
	return m, nil
}

// describe shows where a saved connection points, without its password.
func describe(conn config.SavedConnection) string {
	switch {
	case conn.SQLite != "":
		return "sqlite://" + conn.SQLite
	case conn.URI != "":
		return conn.URI
	}
	return fmt.Sprintf("%s@%s:%s/%s", conn.User, conn.Host, conn.Port, conn.Database)
}

func (m pickerModel) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(ui.ColorAccent).
		Bold(true).
		MarginBottom(1)

	var b strings.Builder
	b.WriteString(titleStyle.Render("gridview - Saved Connections"))
	b.WriteString("\n\n")

	for i, conn := range m.cfg.Connections {
		display := conn.Name + ui.DimText.Render("  "+describe(conn))
		if i == m.cursor {
			b.WriteString(ui.AccentText.Bold(true).Render("  ▸ " + display))
		} else {
			b.WriteString("    " + display)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.err != "" {
		b.WriteString(ui.ErrorText.Render(fmt.Sprintf("  Connection failed: %s", m.err)))
		b.WriteString("\n\n")
	}

	if m.connecting {
		b.WriteString(ui.DimText.Render("  Connecting..."))
	} else {
		b.WriteString(ui.DimText.Render("  Enter to connect | n new connection | d delete | Ctrl+C quit"))
	}
	b.WriteString("\n")
	return b.String()
}

func connectCmd(conn config.SavedConnection) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		backend, tables, err := openSaved(ctx, conn)
		return connectResultMsg{backend: backend, tables: tables, err: err}
	}
}
