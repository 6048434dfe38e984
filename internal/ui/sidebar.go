package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
)

// TableSelectedMsg is sent when a table is selected in the sidebar.
type TableSelectedMsg struct {
	Name string
}

// SidebarModel is the table browser sidebar.
type SidebarModel struct {
	tables    []string
	visible   []string
	cursor    int
	selected  string
	source    string
	filter    textinput.Model
	searching bool
	focused   bool
	width     int
	height    int
}

// NewSidebarModel creates a new sidebar with the given table list.
func NewSidebarModel(tables []string) SidebarModel {
	filter := textinput.New()
	filter.Prompt = "/"
	filter.PromptStyle = SearchLabel
	filter.TextStyle = SearchInput
	m := SidebarModel{filter: filter}
	m.SetTables(tables)
	return m
}

// SetFocused sets the focus state.
func (m *SidebarModel) SetFocused(f bool) {
	m.focused = f
}

// Focused returns the focus state.
func (m SidebarModel) Focused() bool {
	return m.focused
}

// SetSize sets the sidebar dimensions.
func (m *SidebarModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.filter.Width = max(w-5, 1)
}

// SetSource names the backend the tables come from.
func (m *SidebarModel) SetSource(name string) {
	m.source = name
}

// SetTables updates the table list.
func (m *SidebarModel) SetTables(tables []string) {
	m.tables = tables
	m.applyFilter()
}

// Selected returns the currently selected table name.
func (m SidebarModel) Selected() string {
	return m.selected
}

// IsSearching reports whether the filter prompt has the keyboard.
func (m SidebarModel) IsSearching() bool {
	return m.searching
}

// applyFilter narrows the list to the tables fuzzy-matching the filter,
// best match first.
func (m *SidebarModel) applyFilter() {
	query := strings.TrimSpace(m.filter.Value())
	if query == "" {
		m.visible = m.tables
	} else {
		matches := fuzzy.Find(query, m.tables)
		m.visible = make([]string, len(matches))
		for i, match := range matches {
			m.visible[i] = match.Str
		}
	}
	if m.cursor >= len(m.visible) {
		m.cursor = max(0, len(m.visible)-1)
	}
}

// Init satisfies the tea.Model interface.
func (m SidebarModel) Init() tea.Cmd {
	return nil
}

// Update handles key events.
func (m SidebarModel) Update(msg tea.Msg) (SidebarModel, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.searching {
		switch keyMsg.String() {
		case "esc":
			m.searching = false
			m.filter.SetValue("")
			m.filter.Blur()
			m.applyFilter()
		case "enter":
			m.searching = false
			m.filter.Blur()
		default:
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.applyFilter()
			m.cursor = 0
			return m, cmd
		}
		return m, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case "/":
		m.searching = true
		return m, m.filter.Focus()
	case "esc":
		m.filter.SetValue("")
		m.applyFilter()
	case "enter":
		if len(m.visible) > 0 {
			m.selected = m.visible[m.cursor]
			name := m.selected
			return m, func() tea.Msg {
				return TableSelectedMsg{Name: name}
			}
		}
	}
	return m, nil
}

// View renders the sidebar.
func (m SidebarModel) View() string {
	borderStyle := UnfocusedBorder
	if m.focused {
		borderStyle = FocusedBorder
	}

	innerW := max(m.width-2, 5)
	innerH := max(m.height-2, 1)

	lines := []string{HeaderStyle.Render("Tables")}
	if m.source != "" {
		lines = append(lines, SubHeaderStyle.Render(" "+runewidth.Truncate(m.source, innerW-1, "…")))
	}
	if m.searching || m.filter.Value() != "" {
		lines = append(lines, m.filter.View())
	}

	switch {
	case len(m.tables) == 0:
		lines = append(lines, DimText.Render("  No tables found"))
	case len(m.visible) == 0:
		lines = append(lines, DimText.Render("  No match"))
	}

	room := innerH - len(lines)
	start := 0
	if m.cursor >= room && room > 0 {
		start = m.cursor - room + 1
	}
	for i := start; i < len(m.visible) && len(lines) < innerH; i++ {
		t := m.visible[i]
		label := runewidth.Truncate("T "+t, innerW-1, "…")
		var line string
		switch {
		case i == m.cursor && m.focused:
			line = SidebarCursorItem.Width(innerW).Render(label)
		case t == m.selected:
			line = SidebarActiveItem.Width(innerW).Render(label)
		default:
			line = SidebarTableItem.Width(innerW).Render(label)
		}
		lines = append(lines, line)
	}

	content := lipgloss.NewStyle().Width(innerW).Height(innerH).Render(strings.Join(lines, "\n"))
	return borderStyle.Width(innerW).Height(innerH).Render(content)
}
