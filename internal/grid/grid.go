// Package grid ties the column allocator, the viewport, the slot index and
// the selection and edit state into one headless data grid.
//
// A Grid is owned by one goroutine. Nothing in it renders; the ui package
// draws what DisplayedSlots and DisplayedColumns report.
package grid

import (
	"io"
	"log/slog"

	"gridview/internal/column"
	"gridview/internal/edit"
	"gridview/internal/selection"
	"gridview/internal/slotmap"
	"gridview/internal/source"
	"gridview/internal/viewport"
)

// CellCoordinates names a cell by column index and slot.
type CellCoordinates struct {
	ColumnIndex int
	Slot        int
}

// NoCell is the current cell when there is no currency.
var NoCell = CellCoordinates{ColumnIndex: -1, Slot: -1}

// SelectionChange lists the items that entered and left the selection.
type SelectionChange = selection.Change[source.Item]

// CellEditEnded describes a closed cell edit.
type CellEditEnded struct {
	Slot   int
	Column *column.Column
	Action edit.Action
}

// RowEditEnded describes a closed row edit.
type RowEditEnded struct {
	Item   source.Item
	Action edit.Action
}

// Grid is a virtualized data grid.
type Grid struct {
	items source.ItemSource
	unsub func()

	cols    *column.Collection
	vp      *viewport.Viewport
	colOpts []column.Option
	vpOpts  []viewport.Option
	mode    selection.Mode

	rowCount  int
	headers   *slotmap.Map[*GroupInfo]
	hidden    *slotmap.Map[bool]
	collapsed map[string]bool

	sel      *selection.Model[source.Item]
	currency *selection.Batch
	current  CellCoordinates
	previous CellCoordinates
	moved    bool

	edit     *edit.Session
	readOnly bool

	autoColumns bool
	autoWidth   column.Length

	loadThreshold float64
	fetchPages    float64
	loading       bool

	log     *slog.Logger
	lastErr error

	onSelection []func(SelectionChange)
	onCurrent   []func(old, cur CellCoordinates)
	onCellEnded []func(CellEditEnded)
	onRowEnded  []func(RowEditEnded)
}

// Option configures a Grid.
type Option func(*Grid)

// WithLogger sets the logger for vetoed moves, failed commits and paging.
func WithLogger(l *slog.Logger) Option {
	return func(g *Grid) {
		if l != nil {
			g.log = l
		}
	}
}

// WithSelectionMode sets single or extended selection.
func WithSelectionMode(m selection.Mode) Option {
	return func(g *Grid) { g.mode = m }
}

// WithColumnOptions configures the column collection.
func WithColumnOptions(opts ...column.Option) Option {
	return func(g *Grid) { g.colOpts = append(g.colOpts, opts...) }
}

// WithViewportOptions configures the viewport.
func WithViewportOptions(opts ...viewport.Option) Option {
	return func(g *Grid) { g.vpOpts = append(g.vpOpts, opts...) }
}

// WithAutoColumns makes the grid add one column per field, sized by width,
// when an item source with field names is set on a grid without columns.
func WithAutoColumns(width column.Length) Option {
	return func(g *Grid) {
		g.autoColumns = true
		g.autoWidth = width
	}
}

// WithIncrementalLoading sets how close to the end, in viewport heights,
// scrolling must get before more items are requested, and how many
// viewport heights of items are requested.
func WithIncrementalLoading(thresholdPages, fetchPages float64) Option {
	return func(g *Grid) {
		g.loadThreshold = max(thresholdPages, 0)
		g.fetchPages = max(fetchPages, 1)
	}
}

// ManualColumns turns off column generation.
func ManualColumns() Option {
	return func(g *Grid) { g.autoColumns = false }
}

// ReadOnly disables editing.
func ReadOnly() Option {
	return func(g *Grid) { g.readOnly = true }
}

// New returns an empty grid.
func New(opts ...Option) *Grid {
	g := &Grid{
		headers:       slotmap.New[*GroupInfo](),
		hidden:        slotmap.New[bool](),
		collapsed:     make(map[string]bool),
		current:       NoCell,
		autoColumns:   true,
		autoWidth:     column.AutoWidth(),
		loadThreshold: 3,
		fetchPages:    3,
		log:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		edit:          edit.NewSession(nil),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.cols = column.NewCollection(g.colOpts...)
	g.vp = viewport.New(g.cols, g, g.vpOpts...)
	g.sel = selection.NewModel(g.mode, g.ItemAt)
	g.sel.OnChange(func(c SelectionChange) {
		for _, fn := range g.onSelection {
			fn(c)
		}
	})
	g.currency = selection.NewBatch(g.flushCurrency)
	return g
}

// Columns returns the column collection.
func (g *Grid) Columns() *column.Collection { return g.cols }

// Viewport returns the scroll and window state.
func (g *Grid) Viewport() *viewport.Viewport { return g.vp }

// EditSession exposes the edit state for rendering.
func (g *Grid) EditSession() *edit.Session { return g.edit }

// ItemsSource returns the current items.
func (g *Grid) ItemsSource() source.ItemSource { return g.items }

// LastError returns the error behind the latest failed operation.
func (g *Grid) LastError() error { return g.lastErr }

// TakeError returns LastError and forgets it.
func (g *Grid) TakeError() error {
	err := g.lastErr
	g.lastErr = nil
	return err
}

// SetSize lays the grid body out in width by height cells.
func (g *Grid) SetSize(width, height int) {
	g.vp.SetSize(float64(width), float64(height))
}

// OnSelectionChanged registers fn for selection changes.
func (g *Grid) OnSelectionChanged(fn func(SelectionChange)) {
	g.onSelection = append(g.onSelection, fn)
}

// OnCurrentCellChanged registers fn for currency moves.
func (g *Grid) OnCurrentCellChanged(fn func(old, cur CellCoordinates)) {
	g.onCurrent = append(g.onCurrent, fn)
}

// OnCellEditEnded registers fn for closed cell edits.
func (g *Grid) OnCellEditEnded(fn func(CellEditEnded)) {
	g.onCellEnded = append(g.onCellEnded, fn)
}

// OnRowEditEnded registers fn for closed row edits.
func (g *Grid) OnRowEditEnded(fn func(RowEditEnded)) {
	g.onRowEnded = append(g.onRowEnded, fn)
}

type fielder interface {
	Fields() []string
}

type readOnlySource interface {
	IsReadOnly() bool
}

// SetItemsSource replaces the items. An open edit on the old items is
// cancelled, or dropped when the old source cannot roll it back.
func (g *Grid) SetItemsSource(items source.ItemSource) {
	endSel := g.sel.Batch().Begin()
	defer endSel()
	endCur := g.currency.Begin()
	defer endCur()

	g.abandonEdit()
	if g.unsub != nil {
		g.unsub()
		g.unsub = nil
	}
	g.items = items
	g.edit.SetSource(items)
	if n, ok := items.(source.Notifier); ok {
		g.unsub = n.Subscribe(g.itemsChanged)
	}
	if f, ok := items.(fielder); ok && g.autoColumns && g.cols.Len() == 0 {
		for _, name := range f.Fields() {
			_ = g.cols.Add(column.New(name, name, g.autoWidth))
		}
	}
	clear(g.collapsed)
	g.sel.Reset()
	g.rebuildSlots()
	g.setCurrentCell(NoCell)
	g.vp.Reset()

	if cs, ok := items.(source.CurrencySource); ok {
		if row := cs.CurrentPosition(); row >= 0 && row < g.rowCount {
			g.UpdateSelectionAndCurrency(g.firstColumnIndex(), g.SlotFromRowIndex(row), selection.SelectCurrent, false)
		}
	}
}

func (g *Grid) abandonEdit() {
	if g.edit.State() == edit.Browsing {
		return
	}
	if g.edit.State() == edit.CellEditing {
		_ = g.edit.EndCell(edit.Cancel)
	}
	if err := g.edit.EndRow(edit.Cancel); err != nil {
		g.log.Debug("dropping row edit", "slot", g.edit.Slot(), "err", err)
		g.edit.Discard()
	}
}

func (g *Grid) itemsChanged(c source.Change) {
	endSel := g.sel.Batch().Begin()
	defer endSel()
	endCur := g.currency.Begin()
	defer endCur()

	switch c.Kind {
	case source.Insert:
		g.rowsInserted(c.Index, c.Count)
	case source.Remove:
		g.rowsRemoved(c.Index, c.Count, c.Items)
	case source.Replace:
		if c.Index >= 0 && c.Index < g.rowCount {
			g.vp.InvalidateSlot(g.SlotFromRowIndex(c.Index))
		}
	default:
		g.reload()
	}
}

func (g *Grid) rowsInserted(index, count int) {
	slot := g.SlotFromRowIndex(index)
	g.headers.InsertIndexes(slot, count)
	g.hidden.InsertIndexes(slot, count)
	g.shiftGroups(slot, count)
	g.rowCount += count
	g.sel.InsertSlots(slot, count)
	if g.current.Slot >= slot {
		g.setCurrentCell(CellCoordinates{g.current.ColumnIndex, g.current.Slot + count})
	}
	if es := g.edit.Slot(); es >= slot {
		g.edit.MoveSlot(es + count)
	}
	g.vp.SlotsInserted(slot, count)
}

func (g *Grid) rowsRemoved(index, count int, gone []source.Item) {
	slot := g.SlotFromRowIndex(index)
	if es := g.edit.Slot(); es >= slot && es < slot+count {
		g.log.Debug("edited row removed", "slot", es)
		g.edit.Discard()
	} else if es >= slot+count {
		g.edit.MoveSlot(es - count)
	}
	g.sel.RemoveSlots(slot, count, func(i int) (source.Item, bool) {
		if i < len(gone) {
			return gone[i], true
		}
		return nil, false
	})
	g.headers.RemoveIndexes(slot, count)
	g.hidden.RemoveIndexes(slot, count)
	g.shrinkGroups(slot, count)
	g.rowCount -= count

	switch cur := g.current.Slot; {
	case cur < slot:
	case cur >= slot+count:
		g.setCurrentCell(CellCoordinates{g.current.ColumnIndex, cur - count})
	default:
		if next := g.visibleSlotNear(slot); next >= 0 {
			g.setCurrentCell(CellCoordinates{g.current.ColumnIndex, next})
		} else {
			g.setCurrentCell(NoCell)
		}
	}
	g.vp.SlotsRemoved(slot, count)
}

// visibleSlotNear returns the first visible slot at or after slot, or the
// last one before it, or -1 when every slot is hidden.
func (g *Grid) visibleSlotNear(slot int) int {
	if next := g.NextVisibleSlot(slot - 1); next >= 0 {
		return next
	}
	return g.PreviousVisibleSlot(slot)
}

// reload rebuilds the slots after a reset, keeping the selected items, the
// current item and the edited item where they still exist.
func (g *Grid) reload() {
	selected := g.sel.Items()
	current, _ := g.ItemAt(g.current.Slot)
	col := g.current.ColumnIndex

	g.sel.Reset()
	g.rebuildSlots()

	for _, it := range selected {
		if i := g.items.IndexOf(it); i >= 0 {
			g.sel.Select(g.SlotFromRowIndex(i))
		}
	}
	switch {
	case current != nil && g.items.IndexOf(current) >= 0:
		g.setCurrentCell(CellCoordinates{col, g.SlotFromRowIndex(g.items.IndexOf(current))})
	case g.current.Slot >= g.SlotCount():
		g.setCurrentCell(NoCell)
	}
	if it := g.edit.Item(); it != nil {
		if i := g.items.IndexOf(it); i >= 0 {
			g.edit.MoveSlot(g.SlotFromRowIndex(i))
		} else {
			g.edit.Discard()
		}
	}
	g.vp.Refresh()
}
