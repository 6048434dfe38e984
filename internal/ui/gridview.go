package ui

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"gridview/internal/column"
	"gridview/internal/edit"
	"gridview/internal/editor"
	"gridview/internal/grid"
	"gridview/internal/source"
	"gridview/internal/viewport"
)

// EditBlockedMsg is sent when a grid operation was refused.
type EditBlockedMsg struct {
	Reason string
}

// LoadMoreMsg asks the app to fetch Count more rows for the grid.
type LoadMoreMsg struct {
	Count int
}

// cellPadding is the separator drawn after every cell.
const cellPadding = 1

// GridModel is the grid pane: it turns key presses into grid operations
// and draws the viewport's window.
type GridModel struct {
	grid      *grid.Grid
	keys      GridKeyMap
	changes   *editor.ChangeTracker
	table     string
	editor    textinput.Model
	search    textinput.Model
	searching bool
	matches   []int
	match     int
	focused   bool
	width     int
	height    int
	infoMsg   string
}

// NewGridModel creates an empty grid pane.
func NewGridModel(changes *editor.ChangeTracker) GridModel {
	ed := textinput.New()
	ed.Prompt = ""
	ed.CharLimit = 4096

	search := textinput.New()
	search.Prompt = "/"
	search.PromptStyle = SearchLabel
	search.TextStyle = SearchInput
	search.Placeholder = "fuzzy search in column"

	return GridModel{
		keys:    DefaultGridKeys,
		changes: changes,
		editor:  ed,
		search:  search,
		infoMsg: "Select a table",
	}
}

// SetGrid shows g, whose rows belong to table.
func (m *GridModel) SetGrid(g *grid.Grid, table string) {
	m.grid = g
	m.table = table
	m.matches = nil
	m.searching = false
	m.editor.Blur()
	m.search.Blur()
	if g == nil {
		return
	}
	cols := g.Columns()
	for _, col := range cols.Ordered() {
		cols.MeasureHeader(col, float64(runewidth.StringWidth(col.Header)+cellPadding))
	}
	g.Viewport().SetPresenter(cellMeasurer{g: g})
	m.resize()
}

// Grid returns the grid shown, or nil.
func (m GridModel) Grid() *grid.Grid { return m.grid }

// SetInfo shows msg in place of the grid.
func (m *GridModel) SetInfo(msg string) {
	m.infoMsg = msg
	m.grid = nil
}

func (m *GridModel) SetFocused(f bool) {
	m.focused = f
}

func (m GridModel) Focused() bool {
	return m.focused
}

// SetSize sets the pane dimensions, borders included.
func (m *GridModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.resize()
}

// resize hands the grid the room left by the border, the header line and
// the footer line.
func (m *GridModel) resize() {
	if m.grid == nil || m.width == 0 {
		return
	}
	m.grid.SetSize(max(m.width-2, 1), max(m.height-4, 1))
	m.editor.Width = max(m.width-4, 1)
}

func (m GridModel) IsEditing() bool {
	return m.grid != nil && m.grid.IsEditing()
}

// IsCellEditing reports whether the cell editor has the keyboard.
func (m GridModel) IsCellEditing() bool {
	return m.grid != nil && m.grid.EditSession().State() == edit.CellEditing
}

func (m GridModel) IsSearching() bool {
	return m.searching
}

// Init satisfies the tea.Model interface.
func (m GridModel) Init() tea.Cmd {
	return nil
}

// Update handles key events.
func (m GridModel) Update(msg tea.Msg) (GridModel, tea.Cmd) {
	if !m.focused || m.grid == nil {
		return m, nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	var cmd tea.Cmd
	switch {
	case m.searching:
		m, cmd = m.updateSearchMode(keyMsg)
	case m.grid.EditSession().State() == edit.CellEditing:
		m, cmd = m.updateEditMode(keyMsg)
	default:
		m, cmd = m.updateNavMode(keyMsg)
	}
	return m, tea.Batch(cmd, m.report(), m.CheckLoad())
}

// CheckLoad asks for more rows when the window nears the end of the
// loaded ones.
func (m GridModel) CheckLoad() tea.Cmd {
	if m.grid == nil {
		return nil
	}
	n, ok := m.grid.NeedsMoreItems()
	if !ok {
		return nil
	}
	return func() tea.Msg { return LoadMoreMsg{Count: n} }
}

// report turns the grid's latest failure into an EditBlockedMsg.
func (m GridModel) report() tea.Cmd {
	err := m.grid.TakeError()
	if err == nil {
		return nil
	}
	reason := err.Error()
	if errs := m.grid.EditSession().Errors(); len(errs) > 0 {
		reason = errs[0].Message
	}
	return func() tea.Msg { return EditBlockedMsg{Reason: reason} }
}

func (m GridModel) updateNavMode(msg tea.KeyMsg) (GridModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Edit):
		if m.grid.BeginEdit() {
			return m, m.loadEditor()
		}
	case key.Matches(msg, m.keys.AddRow):
		if m.grid.AddNewRow() {
			return m, m.loadEditor()
		}
	case key.Matches(msg, m.keys.DeleteRows):
		m.grid.DeleteSelected()
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue("")
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.NextMatch):
		m.cycleMatch(1)
	case key.Matches(msg, m.keys.PrevMatch):
		m.cycleMatch(-1)
	case key.Matches(msg, m.keys.GroupBy):
		m.toggleGrouping()
	case key.Matches(msg, m.keys.Narrower):
		m.resizeColumn(-2)
	case key.Matches(msg, m.keys.Wider):
		m.resizeColumn(2)
	case key.Matches(msg, m.keys.Freeze):
		m.toggleFrozen()
	default:
		if k, mods, ok := m.keys.navigation(msg); ok {
			m.grid.Navigate(k, mods)
		}
	}
	return m, nil
}

func (m GridModel) updateEditMode(msg tea.KeyMsg) (GridModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.grid.Navigate(grid.KeyEscape, 0)
		m.editor.Blur()
	case key.Matches(msg, m.keys.Enter):
		if m.commitCell() {
			m.editor.Blur()
		}
	case key.Matches(msg, m.keys.NextCell), key.Matches(msg, m.keys.PrevCell):
		k, mods, _ := m.keys.navigation(msg)
		if m.commitCell() && m.grid.Navigate(k, mods) && m.grid.BeginEdit() {
			return m, m.loadEditor()
		}
		m.editor.Blur()
	default:
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m GridModel) updateSearchMode(msg tea.KeyMsg) (GridModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.matches = nil
		m.search.Blur()
	case "enter":
		m.searching = false
		m.search.Blur()
		m.matches = m.grid.Find(m.search.Value())
		m.match = 0
		if len(m.matches) > 0 {
			m.grid.GoTo(m.matches[0])
		}
	default:
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

// loadEditor fills the cell editor with the value of the opened cell.
func (m *GridModel) loadEditor() tea.Cmd {
	m.editor.SetValue(editableText(m.grid.EditSession().Original()))
	m.editor.CursorEnd()
	return m.editor.Focus()
}

// commitCell pushes the typed text into the open cell and commits it.
// Unchanged text keeps the original value and its type; empty text is NULL.
func (m *GridModel) commitCell() bool {
	text := m.editor.Value()
	orig := m.grid.EditSession().Original()
	var v any = text
	switch {
	case text == editableText(orig):
		v = orig
	case text == "":
		v = nil
	}
	if !m.grid.SetEditingValue(v) {
		return false
	}
	return m.grid.CommitEdit(grid.Cell) == nil
}

func editableText(v any) string {
	if v == nil {
		return ""
	}
	return source.Format(v)
}

func (m *GridModel) cycleMatch(step int) {
	if len(m.matches) == 0 {
		return
	}
	m.match = (m.match + step + len(m.matches)) % len(m.matches)
	m.grid.GoTo(m.matches[m.match])
}

type grouper interface {
	GroupBy(fields ...string) error
	GroupFields() []string
}

// toggleGrouping groups the rows by the current column, or ungroups them
// when they already are.
func (m *GridModel) toggleGrouping() {
	gs, ok := m.grid.ItemsSource().(grouper)
	col := m.grid.CurrentColumn()
	if !ok || col == nil || col.Binding == "" {
		return
	}
	if m.grid.IsEditing() && m.grid.CommitEdit(grid.Row) != nil {
		return
	}
	fields := []string{col.Binding}
	if slices.Equal(gs.GroupFields(), fields) {
		fields = nil
	}
	if err := gs.GroupBy(fields...); err != nil {
		m.infoMsg = err.Error()
	}
}

func (m *GridModel) resizeColumn(delta float64) {
	col := m.grid.CurrentColumn()
	if col == nil {
		return
	}
	if m.grid.Columns().Resize(col, col.DisplayWidth()+delta) {
		m.grid.Viewport().Refresh()
	}
}

// toggleFrozen freezes the columns up to the current one.
func (m *GridModel) toggleFrozen() {
	col := m.grid.CurrentColumn()
	if col == nil {
		return
	}
	cols := m.grid.Columns()
	n := col.DisplayIndex() + 1
	if cols.FrozenCount() == n {
		n = 0
	}
	cols.SetFrozenCount(n)
	m.grid.Viewport().Refresh()
}

// cellMeasurer reports natural cell widths to the column model as rows are
// realized. Every row is one terminal line.
type cellMeasurer struct {
	g *grid.Grid
}

func (p cellMeasurer) Realize(slot int) float64 {
	if p.g.IsGroupHeader(slot) {
		return 1
	}
	cols := p.g.Columns()
	for _, col := range cols.Visible() {
		if col.Width().IsAuto() {
			w := runewidth.StringWidth(sanitizeCell(p.g.CellText(slot, col)))
			cols.MeasureCell(col, float64(w+cellPadding))
		}
	}
	return 1
}

func (cellMeasurer) Recycle(int) {}

// View renders the pane.
func (m GridModel) View() string {
	borderStyle := UnfocusedBorder
	if m.focused {
		borderStyle = FocusedBorder
	}

	innerW := max(m.width-2, 10)
	innerH := max(m.height-2, 3)

	var content string
	if m.grid == nil {
		content = DimText.Render(m.infoMsg)
	} else {
		content = m.renderGrid(innerW, innerH)
	}
	return borderStyle.Width(innerW).Height(innerH).MaxHeight(innerH + 2).Render(content)
}

// span is a column's place on the line.
type span struct {
	col   *column.Column
	width int
	// cut is how many leading cells are scrolled out of view.
	cut int
}

func (m GridModel) layout() []span {
	cols := m.grid.Columns()
	widths := make(map[*column.Column]int)
	rounded := cols.RoundedWidths()
	for i, col := range cols.Visible() {
		widths[col] = rounded[i]
	}
	vp := m.grid.Viewport()
	first := vp.FirstDisplayedScrollingColumn()
	neg := int(math.Round(vp.NegHorizontalOffset()))

	spans := make([]span, 0, len(vp.DisplayedColumns()))
	for _, col := range vp.DisplayedColumns() {
		s := span{col: col, width: widths[col]}
		if col == first {
			s.cut = min(neg, s.width)
		}
		spans = append(spans, s)
	}
	return spans
}

func (m GridModel) renderGrid(w, h int) string {
	vp := m.grid.Viewport()
	cellsW := int(vp.CellsWidth())
	cellsH := int(vp.CellsHeight())
	vBar, hBar := vp.VerticalScrollBar(), vp.HorizontalScrollBar()
	spans := m.layout()

	lines := make([]string, 0, h)
	header := m.renderLine(spans, cellsW, func(col *column.Column, width int) string {
		style := HeaderStyle
		if col.IsFrozen() && col.DisplayIndex() == m.grid.Columns().FrozenCount()-1 {
			return style.Render(fit(col.Header, width-cellPadding)) + ColumnFrozen.Render("┃")
		}
		return style.Render(fit(col.Header, width-cellPadding)) + DimText.Render("│")
	})
	lines = append(lines, header)

	var thumb []bool
	if vBar.Visible {
		thumb = scrollThumb(vBar, cellsH)
	}
	slots := vp.DisplayedSlots()
	for i := range cellsH {
		var line string
		if i < len(slots) {
			line = m.renderSlot(slots[i], spans, cellsW)
		} else {
			line = strings.Repeat(" ", cellsW)
		}
		if vBar.Visible {
			line += scrollCell(thumb, i, "┃", "│")
		}
		lines = append(lines, line)
	}
	if hBar.Visible {
		var b strings.Builder
		cells := scrollThumb(hBar, cellsW)
		for i := range cellsW {
			b.WriteString(scrollCell(cells, i, "━", "─"))
		}
		lines = append(lines, b.String())
	}

	lines = append(lines, m.footer(w))
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines[:h], "\n")
}

// renderLine lays rendered cells out on one line of width cellsW.
func (m GridModel) renderLine(spans []span, cellsW int, cell func(*column.Column, int) string) string {
	var b strings.Builder
	for _, s := range spans {
		if s.width <= 0 {
			continue
		}
		out := cell(s.col, s.width)
		if s.cut > 0 {
			out = ansi.Cut(out, s.cut, s.width)
		}
		b.WriteString(out)
	}
	return pad(ansi.Truncate(b.String(), cellsW, ""), cellsW)
}

func (m GridModel) renderSlot(slot int, spans []span, cellsW int) string {
	cur := m.grid.CurrentCell()
	if info, ok := m.grid.GroupAt(slot); ok {
		arrow := "▾"
		if info.Collapsed {
			arrow = "▸"
		}
		text := fmt.Sprintf("%s%s %s (%d)", strings.Repeat("  ", info.Level), arrow, info.Key, info.Count)
		style := GroupHeader
		if slot == cur.Slot && m.focused {
			style = style.Reverse(true)
		}
		return style.Render(fit(text, cellsW))
	}

	it, _ := m.grid.ItemAt(slot)
	row, _ := it.(*source.Row)
	session := m.grid.EditSession()
	selected := m.grid.IsSelected(slot)

	return m.renderLine(spans, cellsW, func(col *column.Column, width int) string {
		inner := width - cellPadding
		if session.State() == edit.CellEditing && session.Slot() == slot && session.Column() == col.Index() {
			view := ansi.Truncate(m.editor.View(), inner, "")
			return CellEditing.Render(pad(view, inner)) + DimText.Render("│")
		}
		text := m.grid.CellText(slot, col)
		style := CellNormal
		switch {
		case slot == cur.Slot && col.Index() == cur.ColumnIndex && m.focused:
			style = CellCurrent
		case !m.grid.IsCellValid(slot, col.Index()):
			style = CellInvalid
		case row != nil && m.changes != nil && m.changes.IsInserted(m.table, row.ID()):
			style = NewRowText
		case row != nil && m.changes != nil && m.changes.IsModified(m.table, row.ID(), col.Binding):
			style = ModifiedText
		case text == source.NullText:
			style = NullText
		}
		if selected && !style.GetReverse() {
			style = style.Inherit(RowSelected)
		}
		return style.Render(fit(sanitizeCell(text), inner)) + DimText.Render("│")
	})
}

func (m GridModel) footer(w int) string {
	if m.searching {
		return ansi.Truncate(m.search.View(), w, "")
	}
	if errs := m.grid.EditSession().Errors(); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Message
		}
		return ErrorText.Render(ansi.Truncate(strings.Join(msgs, "; "), w, "…"))
	}

	var parts []string
	slots := m.grid.Viewport().DisplayedSlots()
	items := m.grid.ItemsSource()
	if len(slots) > 0 && items != nil {
		first := m.grid.RowIndexFromSlot(m.grid.NextVisibleSlot(slots[0] - 1))
		last := m.grid.RowIndexFromSlot(m.grid.PreviousVisibleSlot(slots[len(slots)-1] + 1))
		total := fmt.Sprintf("%d", items.Len())
		if p, ok := items.(source.PagedSource); ok && p.HasMoreItems() {
			total += "+"
		}
		parts = append(parts, fmt.Sprintf("[%d-%d of %s]", max(first, 0)+1, max(last, 0)+1, total))
	}
	if n := len(m.grid.SelectedItems()); n > 1 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	}
	if len(m.matches) > 0 {
		parts = append(parts, fmt.Sprintf("match %d/%d", m.match+1, len(m.matches)))
	} else if m.search.Value() != "" {
		parts = append(parts, "no matches")
	}
	if m.grid.IsLoading() {
		parts = append(parts, "loading…")
	}
	return DimText.Render(ansi.Truncate(strings.Join(parts, "  "), w, "…"))
}

// scrollThumb marks the cells of a track of length n covered by the thumb.
func scrollThumb(bar viewport.ScrollBar, n int) []bool {
	cells := make([]bool, n)
	extent := bar.Maximum - bar.Minimum + bar.ViewportSize
	if n == 0 || extent <= 0 {
		return cells
	}
	size := max(1, int(math.Round(float64(n)*bar.ViewportSize/extent)))
	pos := 0
	if bar.Maximum > bar.Minimum {
		pos = int(math.Round(float64(n-size) * (bar.Value - bar.Minimum) / (bar.Maximum - bar.Minimum)))
	}
	for i := pos; i < min(pos+size, n); i++ {
		cells[i] = true
	}
	return cells
}

func scrollCell(thumb []bool, i int, on, off string) string {
	if i < len(thumb) && thumb[i] {
		return ScrollThumb.Render(on)
	}
	return ScrollTrack.Render(off)
}

// fit truncates or pads plain text to exactly w cells.
func fit(s string, w int) string {
	if w <= 0 {
		return ""
	}
	return runewidth.FillRight(runewidth.Truncate(s, w, "…"), w)
}

// pad right-pads styled text to w cells.
func pad(s string, w int) string {
	if gap := w - ansi.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func sanitizeCell(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "↵")
	s = strings.ReplaceAll(s, "\n", "↵")
	s = strings.ReplaceAll(s, "\r", "↵")
	s = strings.ReplaceAll(s, "\t", " ")
	return s
}
