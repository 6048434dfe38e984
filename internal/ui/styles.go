package ui

import "github.com/charmbracelet/lipgloss"

var (
	ColorAccent    = lipgloss.Color("#4ecca3")
	ColorModified  = lipgloss.Color("#f0a500")
	ColorDim       = lipgloss.Color("#555555")
	ColorError     = lipgloss.Color("#e94560")
	ColorSelection = lipgloss.Color("#1f3b4d")
	ColorGroup     = lipgloss.Color("#7aa2f7")
	colorBar       = lipgloss.Color("#333333")
	colorBarText   = lipgloss.Color("#cccccc")
)

// Border styles
var (
	FocusedBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent)

	UnfocusedBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDim)
)

// Text styles
var (
	AccentText   = lipgloss.NewStyle().Foreground(ColorAccent)
	DimText      = lipgloss.NewStyle().Foreground(ColorDim)
	ErrorText    = lipgloss.NewStyle().Foreground(ColorError)
	ModifiedText = lipgloss.NewStyle().Foreground(ColorModified)
	NewRowText   = lipgloss.NewStyle().Foreground(ColorAccent)
	NullText     = lipgloss.NewStyle().Foreground(ColorDim).Italic(true)
)

// Header styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	SubHeaderStyle = lipgloss.NewStyle().
			Foreground(ColorDim)
)

// Table cell styles
var (
	CellNormal   = lipgloss.NewStyle()
	CellCurrent  = lipgloss.NewStyle().Reverse(true)
	RowSelected  = lipgloss.NewStyle().Background(ColorSelection)
	CellInvalid  = lipgloss.NewStyle().Foreground(ColorError).Underline(true)
	GroupHeader  = lipgloss.NewStyle().Foreground(ColorGroup).Bold(true)
	ScrollThumb  = lipgloss.NewStyle().Foreground(ColorAccent)
	ScrollTrack  = lipgloss.NewStyle().Foreground(ColorDim)
	ColumnFrozen = lipgloss.NewStyle().Foreground(ColorAccent)
	CellEditing  = lipgloss.NewStyle().
			Background(lipgloss.Color("#1a3a2a")).
			Foreground(ColorAccent).
			Bold(true)
)

// Bars share one background; status messages only change the foreground.
var (
	StatusBarStyle     = lipgloss.NewStyle().Background(colorBar).Foreground(colorBarText).Padding(0, 1)
	StatusErrorStyle   = StatusBarStyle.Foreground(ColorError)
	StatusSuccessStyle = StatusBarStyle.Foreground(ColorAccent)
	TopBarStyle        = StatusBarStyle
)

// Sidebar styles
var (
	SidebarTableItem = lipgloss.NewStyle().PaddingLeft(1)
	SidebarActiveItem = lipgloss.NewStyle().
				PaddingLeft(1).
				Foreground(ColorAccent).
				Bold(true)
	SidebarCursorItem = lipgloss.NewStyle().
				PaddingLeft(1).
				Reverse(true)
)

// Search styles
var (
	SearchInput = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)
	SearchLabel = lipgloss.NewStyle().
			Foreground(ColorAccent)
)
