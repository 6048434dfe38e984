package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"gridview/internal/grid"
)

// GridKeyMap holds the bindings of the grid pane.
type GridKeyMap struct {
	Up, Down, Left, Right        key.Binding
	ExtendUp, ExtendDown         key.Binding
	MoveUp, MoveDown             key.Binding
	PageUp, PageDown             key.Binding
	ExtendPageUp, ExtendPageDn   key.Binding
	Home, End, First, Last       key.Binding
	NextCell, PrevCell           key.Binding
	Toggle, Enter, Edit, Cancel  key.Binding
	AddRow, DeleteRows           key.Binding
	Search, NextMatch, PrevMatch key.Binding
	GroupBy, Narrower, Wider     key.Binding
	Freeze                       key.Binding
}

// DefaultGridKeys are the grid bindings.
var DefaultGridKeys = GridKeyMap{
	Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:         key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev column")),
	Right:        key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next column")),
	ExtendUp:     key.NewBinding(key.WithKeys("shift+up", "K"), key.WithHelp("⇧↑", "extend up")),
	ExtendDown:   key.NewBinding(key.WithKeys("shift+down", "J"), key.WithHelp("⇧↓", "extend down")),
	MoveUp:       key.NewBinding(key.WithKeys("ctrl+up"), key.WithHelp("ctrl+↑", "move without selecting")),
	MoveDown:     key.NewBinding(key.WithKeys("ctrl+down"), key.WithHelp("ctrl+↓", "move without selecting")),
	PageUp:       key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown:     key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
	ExtendPageUp: key.NewBinding(key.WithKeys("shift+pgup"), key.WithHelp("⇧pgup", "extend page up")),
	ExtendPageDn: key.NewBinding(key.WithKeys("shift+pgdown"), key.WithHelp("⇧pgdn", "extend page down")),
	Home:         key.NewBinding(key.WithKeys("home", "0"), key.WithHelp("home", "first column")),
	End:          key.NewBinding(key.WithKeys("end", "$"), key.WithHelp("end", "last column")),
	First:        key.NewBinding(key.WithKeys("ctrl+home"), key.WithHelp("ctrl+home", "first row")),
	Last:         key.NewBinding(key.WithKeys("ctrl+end"), key.WithHelp("ctrl+end", "last row")),
	NextCell:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next cell")),
	PrevCell:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("⇧tab", "prev cell")),
	Toggle:       key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle selection")),
	Enter:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "commit / toggle group")),
	Edit:         key.NewBinding(key.WithKeys("f2", "e"), key.WithHelp("e", "edit")),
	Cancel:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	AddRow:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add row")),
	DeleteRows:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete selected")),
	Search:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	NextMatch:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next match")),
	PrevMatch:    key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "prev match")),
	GroupBy:      key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "group by column")),
	Narrower:     key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "narrower")),
	Wider:        key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "wider")),
	Freeze:       key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "freeze columns")),
}

type navBinding struct {
	binding key.Binding
	key     grid.Key
	mods    grid.Modifiers
}

// navigation maps a key press onto a grid navigation key.
func (km GridKeyMap) navigation(msg tea.KeyMsg) (grid.Key, grid.Modifiers, bool) {
	for _, b := range []navBinding{
		{km.Up, grid.KeyUp, 0},
		{km.Down, grid.KeyDown, 0},
		{km.ExtendUp, grid.KeyUp, grid.Shift},
		{km.ExtendDown, grid.KeyDown, grid.Shift},
		{km.MoveUp, grid.KeyUp, grid.Ctrl},
		{km.MoveDown, grid.KeyDown, grid.Ctrl},
		{km.Left, grid.KeyLeft, 0},
		{km.Right, grid.KeyRight, 0},
		{km.PageUp, grid.KeyPageUp, 0},
		{km.PageDown, grid.KeyPageDown, 0},
		{km.ExtendPageUp, grid.KeyPageUp, grid.Shift},
		{km.ExtendPageDn, grid.KeyPageDown, grid.Shift},
		{km.Home, grid.KeyHome, 0},
		{km.End, grid.KeyEnd, 0},
		{km.First, grid.KeyHome, grid.Ctrl},
		{km.Last, grid.KeyEnd, grid.Ctrl},
		{km.NextCell, grid.KeyTab, 0},
		{km.PrevCell, grid.KeyTab, grid.Shift},
		{km.Toggle, grid.KeySpace, 0},
		{km.Enter, grid.KeyEnter, 0},
		{km.Cancel, grid.KeyEscape, 0},
	} {
		if key.Matches(msg, b.binding) {
			return b.key, b.mods, true
		}
	}
	return 0, 0, false
}
