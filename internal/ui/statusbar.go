package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// MessageType represents the type of status message.
type MessageType int

const (
	MsgInfo MessageType = iota
	MsgSuccess
	MsgError
)

// Pane identifies the focused pane.
type Pane int

const (
	PaneSidebar Pane = iota
	PaneGrid
)

// Mode is what the grid pane is doing with the keyboard.
type Mode int

const (
	ModeBrowse Mode = iota
	ModeEdit
	ModeSearch
	ModeConfirm
)

// StatusBarModel is the context-aware status bar at the bottom.
type StatusBarModel struct {
	message        string
	messageType    MessageType
	messageTime    time.Time
	pendingChanges int
	activePane     Pane
	mode           Mode
	loaded         int
	more           bool
	loading        bool
	selected       int
	queryTime      time.Duration
	width          int
}

// NewStatusBarModel creates a new status bar.
func NewStatusBarModel() StatusBarModel {
	return StatusBarModel{}
}

// SetWidth sets the status bar width.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// SetMessage sets a status message.
func (m *StatusBarModel) SetMessage(msg string, t MessageType) {
	m.message = msg
	m.messageType = t
	m.messageTime = time.Now()
}

// SetPendingChanges updates the pending changes count.
func (m *StatusBarModel) SetPendingChanges(count int) {
	m.pendingChanges = count
}

func (m *StatusBarModel) SetActivePane(p Pane) {
	m.activePane = p
}

func (m *StatusBarModel) SetMode(mode Mode) {
	m.mode = mode
}

// SetRows records how many rows are loaded and whether the source has
// more.
func (m *StatusBarModel) SetRows(loaded int, more, loading bool) {
	m.loaded = loaded
	m.more = more
	m.loading = loading
}

func (m *StatusBarModel) SetSelected(n int) {
	m.selected = n
}

// SetQueryTime records how long the last page took.
func (m *StatusBarModel) SetQueryTime(elapsed time.Duration) {
	m.queryTime = elapsed
}

// ClearExpiredMessage clears success messages after 3 seconds.
func (m *StatusBarModel) ClearExpiredMessage() {
	if m.messageType == MsgSuccess && time.Since(m.messageTime) > 3*time.Second {
		m.message = ""
	}
}

// View renders the status bar.
func (m StatusBarModel) View() string {
	hints := m.contextHints()

	var rightParts []string
	if m.pendingChanges > 0 {
		rightParts = append(rightParts, fmt.Sprintf("Pending: %d | Ctrl+S to commit", m.pendingChanges))
	}
	if m.selected > 1 {
		rightParts = append(rightParts, fmt.Sprintf("%d selected", m.selected))
	}
	if m.activePane == PaneGrid || m.loaded > 0 {
		rows := fmt.Sprintf("%d rows", m.loaded)
		if m.more {
			rows = fmt.Sprintf("%d+ rows", m.loaded)
		}
		if m.queryTime > 0 {
			rows += " in " + m.queryTime.Round(time.Millisecond).String()
		}
		rightParts = append(rightParts, rows)
	}
	if m.loading {
		rightParts = append(rightParts, "loading…")
	}
	right := strings.Join(rightParts, " | ")

	if m.message != "" {
		var msgStyle lipgloss.Style
		switch m.messageType {
		case MsgError:
			msgStyle = StatusErrorStyle
		case MsgSuccess:
			msgStyle = StatusSuccessStyle
		default:
			msgStyle = StatusBarStyle
		}
		hints = msgStyle.Render(m.message)
	}

	w := max(m.width, 20)
	gap := max(w-lipgloss.Width(hints)-lipgloss.Width(right)-2, 1)

	line := hints + strings.Repeat(" ", gap) + right
	return StatusBarStyle.Width(w).Render(line)
}

func (m StatusBarModel) contextHints() string {
	switch m.mode {
	case ModeEdit:
		return "Type to edit | Enter Commit | Tab/Shift+Tab Next/Prev cell | Esc Cancel"
	case ModeSearch:
		return "Type to search | Enter Jump | Esc Cancel"
	case ModeConfirm:
		return "y Confirm | n Cancel"
	}

	switch m.activePane {
	case PaneSidebar:
		return "j/k Navigate | / Filter | Enter Open table | Tab Switch pane"
	case PaneGrid:
		return "Ctrl+W Pane | Arrows Move | Shift Extend | Space Toggle | e Edit | a Add | d Delete | / Search | g Group | f Freeze | </> Width"
	default:
		return "Tab Switch pane | Ctrl+C Quit"
	}
}
