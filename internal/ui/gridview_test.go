package ui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"gridview/internal/editor"
	"gridview/internal/grid"
	"gridview/internal/source"
	"gridview/internal/viewport"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func gridModel(t *testing.T, n int) GridModel {
	t.Helper()
	rows := make([]map[string]any, n)
	for i := range rows {
		rows[i] = map[string]any{"id": i, "name": fmt.Sprintf("row %d", i)}
	}
	g := grid.New()
	g.SetItemsSource(source.NewTable([]string{"id", "name"}, source.WithRows(rows...)))

	m := NewGridModel(editor.NewChangeTracker())
	m.SetSize(60, 12)
	m.SetGrid(g, "rows")
	m.SetFocused(true)
	return m
}

func TestGridViewRendersWindow(t *testing.T) {
	m := gridModel(t, 100)
	out := m.View()

	require.Contains(t, out, "name")
	require.Contains(t, out, "row 0")
	require.NotContains(t, out, "row 50")
	require.Contains(t, out, "of 100]")
}

func TestGridViewNavigates(t *testing.T) {
	m := gridModel(t, 100)
	require.Equal(t, 0, m.Grid().CurrentCell().Slot)

	m, _ = m.Update(runes("j"))
	m, _ = m.Update(runes("j"))
	require.Equal(t, 2, m.Grid().CurrentCell().Slot)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlEnd})
	require.Equal(t, 99, m.Grid().CurrentCell().Slot)
	require.Contains(t, m.View(), "row 99")
}

func TestGridViewSearchCycles(t *testing.T) {
	m := gridModel(t, 30)
	m, _ = m.Update(runes("l"))
	m, _ = m.Update(runes("/"))
	require.True(t, m.IsSearching())

	m, _ = m.Update(runes("row 2"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, m.IsSearching())
	require.NotEmpty(t, m.matches)
	first := m.Grid().CurrentCell().Slot

	m, _ = m.Update(runes("n"))
	if len(m.matches) > 1 {
		require.NotEqual(t, first, m.Grid().CurrentCell().Slot)
	}
	m, _ = m.Update(runes("N"))
	require.Equal(t, first, m.Grid().CurrentCell().Slot)
}

func TestGridViewEditCommits(t *testing.T) {
	m := gridModel(t, 5)
	m, _ = m.Update(runes("l"))
	m, _ = m.Update(runes("e"))
	require.True(t, m.IsCellEditing())
	require.Equal(t, "row 0", m.editor.Value())

	m, _ = m.Update(runes("!"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, m.IsCellEditing())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	v, _ := m.Grid().ItemsSource().At(0).Get("name")
	require.Equal(t, "row 0", v, "escape cancels the row edit")

	m, _ = m.Update(runes("e"))
	m, _ = m.Update(runes("?"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(runes("j"))
	v, _ = m.Grid().ItemsSource().At(0).Get("name")
	require.Equal(t, "row 0?", v, "leaving the row commits it")
}

func TestGridViewGroupToggle(t *testing.T) {
	m := gridModel(t, 10)
	m, _ = m.Update(runes("g"))
	require.Greater(t, m.Grid().SlotCount(), 10)
	require.True(t, strings.Contains(m.View(), "▾"))

	m, _ = m.Update(runes("g"))
	require.Equal(t, 10, m.Grid().SlotCount())
}

func TestScrollThumb(t *testing.T) {
	bar := viewport.ScrollBar{Visible: true, Maximum: 90, ViewportSize: 10}
	cells := scrollThumb(bar, 10)
	require.True(t, cells[0])
	require.False(t, cells[1])

	bar.Value = 90
	cells = scrollThumb(bar, 10)
	require.True(t, cells[9])
	require.False(t, cells[0])
}

func TestFitAndSanitize(t *testing.T) {
	require.Equal(t, "ab  ", fit("ab", 4))
	require.Equal(t, "abc…", fit("abcdef", 4))
	require.Equal(t, "", fit("abc", 0))
	require.Equal(t, "a↵b c", sanitizeCell("a\nb\tc"))
}

func TestSidebarFilter(t *testing.T) {
	m := NewSidebarModel([]string{"orders", "people", "teams"})
	m.SetFocused(true)
	m.SetSize(30, 20)

	m, _ = m.Update(runes("/"))
	require.True(t, m.IsSearching())
	m, _ = m.Update(runes("ppl"))
	require.Equal(t, []string{"people"}, m.visible)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, m.IsSearching())
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.Equal(t, TableSelectedMsg{Name: "people"}, cmd())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.Len(t, m.visible, 3)
}
