// Package viewport decides which slots and columns are materialized and
// keeps the scroll offsets and scrollbars consistent with the cell area.
package viewport

import (
	"math"

	"gridview/internal/column"
)

// Slots is the row address space the viewport windows over.
type Slots interface {
	SlotCount() int
	IsGroupHeader(slot int) bool
	// NextVisibleSlot returns the first visible slot after slot, or -1.
	// NextVisibleSlot(-1) returns the first visible slot.
	NextVisibleSlot(slot int) int
	// PreviousVisibleSlot returns the last visible slot before slot, or -1.
	PreviousVisibleSlot(slot int) int
	// VisibleSlotCountBetween counts visible slots in [lo, hi].
	VisibleSlotCountBetween(lo, hi int) int
	// VisibleHeaderCountBetween counts visible group headers in [lo, hi].
	VisibleHeaderCountBetween(lo, hi int) int
}

// Presenter materializes rows. The viewport never renders anything itself.
type Presenter interface {
	// Realize prepares the visual for slot and returns its measured height.
	Realize(slot int) float64
	// Recycle releases the visual of a slot that left the window.
	Recycle(slot int)
}

type fixedPresenter struct{}

func (fixedPresenter) Realize(int) float64 { return 1 }
func (fixedPresenter) Recycle(int)         {}

// Viewport owns the scroll offsets and the displayed row and column windows.
type Viewport struct {
	cols      *column.Collection
	slots     Slots
	presenter Presenter

	width, height           float64
	cellsWidth, cellsHeight float64

	hPolicy, vPolicy       Visibility
	hThickness, vThickness float64
	hBar, vBar             ScrollBar

	horizontalOffset    float64
	negHorizontalOffset float64
	firstScrollingCol   *column.Column
	lastTotallyCol      *column.Column
	displayedCols       []*column.Column

	verticalOffset      float64
	negVerticalOffset   float64
	firstSlot           int
	lastSlot            int
	numTotallyDisplayed int
	displayedSlots      []int
	heights             map[int]float64

	estimate *estimator
}

// Option configures a Viewport.
type Option func(*Viewport)

// WithPresenter sets the rendering port. Without one every row is one cell high.
func WithPresenter(p Presenter) Option {
	return func(v *Viewport) { v.presenter = p }
}

// WithScrollBarVisibility sets the horizontal and vertical scrollbar policies.
func WithScrollBarVisibility(h, vert Visibility) Option {
	return func(v *Viewport) { v.hPolicy, v.vPolicy = h, vert }
}

// WithScrollBarThickness sets how much room each scrollbar takes.
func WithScrollBarThickness(h, vert float64) Option {
	return func(v *Viewport) { v.hThickness, v.vThickness = h, vert }
}

// WithRowHeightSample sets how many measured rows feed the height estimate.
func WithRowHeightSample(n int) Option {
	return func(v *Viewport) { v.estimate.sample = max(n, 1) }
}

// New returns a viewport over cols and slots.
func New(cols *column.Collection, slots Slots, opts ...Option) *Viewport {
	v := &Viewport{
		cols:       cols,
		slots:      slots,
		presenter:  fixedPresenter{},
		hThickness: 1,
		vThickness: 1,
		firstSlot:  -1,
		lastSlot:   -1,
		heights:    make(map[int]float64),
		estimate:   newEstimator(DefaultRowHeightSample),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// SetPresenter replaces the rendering port and releases the current window.
func (v *Viewport) SetPresenter(p Presenter) {
	v.recycleAll()
	if p == nil {
		p = fixedPresenter{}
	}
	v.presenter = p
}

// SetSize sets the outer size of the grid body and lays it out again.
func (v *Viewport) SetSize(width, height float64) {
	v.width, v.height = math.Max(width, 0), math.Max(height, 0)
	v.ComputeScrollBarsLayout()
}

// Size returns the outer size.
func (v *Viewport) Size() (float64, float64) { return v.width, v.height }

// CellsWidth is the width left for cells once scrollbars are placed.
func (v *Viewport) CellsWidth() float64 { return v.cellsWidth }

// CellsHeight is the height left for rows once scrollbars are placed.
func (v *Viewport) CellsHeight() float64 { return v.cellsHeight }

// Reset forgets the windows and offsets, e.g. after the item source changed.
func (v *Viewport) Reset() {
	v.recycleAll()
	v.horizontalOffset, v.negHorizontalOffset = 0, 0
	v.verticalOffset, v.negVerticalOffset = 0, 0
	v.firstScrollingCol, v.lastTotallyCol = nil, nil
	v.firstSlot, v.lastSlot = -1, -1
	v.estimate.reset()
	v.ComputeScrollBarsLayout()
}

// Refresh re-measures the displayed rows and lays everything out again,
// keeping the first displayed slot when it still exists.
func (v *Viewport) Refresh() {
	v.recycleAll()
	v.ComputeScrollBarsLayout()
}

// InvalidateSlot re-measures slot if it is displayed.
func (v *Viewport) InvalidateSlot(slot int) {
	if _, ok := v.heights[slot]; !ok {
		return
	}
	v.presenter.Recycle(slot)
	delete(v.heights, slot)
	v.updateDisplayedRows(v.firstSlot, v.cellsHeight)
	v.updateVerticalScrollBar()
}

// SlotsInserted shifts the window after count slots were inserted at slot.
func (v *Viewport) SlotsInserted(slot, count int) {
	if count <= 0 {
		return
	}
	if v.firstSlot >= 0 && slot <= v.firstSlot {
		v.firstSlot += count
		v.verticalOffset += v.estimatedHeight(slot, slot+count-1)
	}
	v.Refresh()
}

// SlotsRemoved shifts the window after count slots were removed at slot.
func (v *Viewport) SlotsRemoved(slot, count int) {
	if count <= 0 {
		return
	}
	switch {
	case v.firstSlot < 0:
	case slot+count <= v.firstSlot:
		v.firstSlot -= count
		v.verticalOffset = math.Max(0, v.verticalOffset-float64(count)*v.estimate.row)
	case slot <= v.firstSlot:
		v.firstSlot = slot
		v.negVerticalOffset = 0
	}
	v.Refresh()
}

func (v *Viewport) recycleAll() {
	v.release(nil)
	v.numTotallyDisplayed = 0
}
