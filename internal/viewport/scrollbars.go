package viewport

import (
	"fmt"
	"math"
)

// Visibility is a scrollbar policy.
type Visibility int

const (
	// AutoVisibility shows the scrollbar only when content overflows.
	AutoVisibility Visibility = iota
	// AlwaysVisible keeps the scrollbar shown.
	AlwaysVisible
	// Hidden never shows the scrollbar; content can still scroll.
	Hidden
)

// ParseVisibility reads "auto", "visible" or "hidden".
func ParseVisibility(s string) (Visibility, error) {
	switch s {
	case "", "auto":
		return AutoVisibility, nil
	case "visible":
		return AlwaysVisible, nil
	case "hidden":
		return Hidden, nil
	}
	return AutoVisibility, fmt.Errorf("unknown scrollbar visibility %q", s)
}

// ScrollBar is the computed state of one scrollbar.
type ScrollBar struct {
	Visible      bool
	Minimum      float64
	Maximum      float64
	ViewportSize float64
	Value        float64
}

// HorizontalScrollBar returns the horizontal scrollbar state.
func (v *Viewport) HorizontalScrollBar() ScrollBar { return v.hBar }

// VerticalScrollBar returns the vertical scrollbar state.
func (v *Viewport) VerticalScrollBar() ScrollBar { return v.vBar }

// ComputeScrollBarsLayout decides which scrollbars are shown and lays out
// both windows in the space they leave. Showing one scrollbar can make the
// other necessary, but only once: the horizontal bar is checked first and
// rechecked a single time after the vertical bar claimed its width.
func (v *Viewport) ComputeScrollBarsLayout() {
	cellsWidth, cellsHeight := v.width, v.height
	allowH := v.hPolicy != Hidden
	allowV := v.vPolicy != Hidden
	needH := v.hPolicy == AlwaysVisible && v.hThickness <= cellsHeight
	needV := v.vPolicy == AlwaysVisible && v.vThickness <= cellsWidth
	if needH {
		cellsHeight -= v.hThickness
	}
	if needV {
		cellsWidth -= v.vThickness
	}

	overflowsH := func() bool {
		v.cols.SetAvailableWidth(cellsWidth)
		total := v.cols.VisibleEdgedColumnsWidth()
		frozen := v.cols.FrozenWidth()
		return total > cellsWidth+epsilon && frozen < cellsWidth && v.hThickness <= cellsHeight
	}

	// Auto and star columns settle once the first rows have been measured.
	if v.cols.AutoSizing() {
		v.cols.SetAvailableWidth(cellsWidth)
		v.cellsWidth, v.cellsHeight = cellsWidth, cellsHeight
		v.updateDisplayedRows(v.firstSlot, cellsHeight)
		v.cols.FinishAutoSize()
	}

	if allowH && !needH && overflowsH() {
		needH = true
		cellsHeight -= v.hThickness
	}

	v.cellsWidth, v.cellsHeight = cellsWidth, cellsHeight
	v.cols.SetAvailableWidth(cellsWidth)
	v.updateDisplayedRows(v.firstSlot, cellsHeight)

	if allowV && !needV && cellsHeight > 0 && v.vThickness <= cellsWidth && v.numTotallyDisplayed != v.visibleSlotCount() {
		needV = true
		cellsWidth -= v.vThickness
		v.cellsWidth = cellsWidth
		// The narrower area may now overflow horizontally.
		if allowH && !needH && overflowsH() {
			needH = true
			cellsHeight -= v.hThickness
			v.cellsHeight = cellsHeight
			v.updateDisplayedRows(v.firstSlot, cellsHeight)
		}
	}
	v.cols.SetAvailableWidth(cellsWidth)

	v.horizontalOffset = math.Min(v.horizontalOffset, v.maxHorizontalOffset())
	v.computeFirstVisibleScrollingColumn()
	v.computeDisplayedColumns()

	v.hBar = ScrollBar{
		Visible:      needH,
		Maximum:      v.maxHorizontalOffset(),
		ViewportSize: cellsWidth,
		Value:        v.horizontalOffset,
	}
	v.updateVerticalScrollBar()
	v.vBar.Visible = needV
}

func (v *Viewport) updateVerticalScrollBar() {
	v.vBar.Maximum = v.maxVerticalOffset()
	v.vBar.ViewportSize = v.cellsHeight
	v.vBar.Value = math.Min(v.verticalOffset, v.vBar.Maximum)
}

func (v *Viewport) visibleSlotCount() int {
	n := v.slots.SlotCount()
	if n == 0 {
		return 0
	}
	return v.slots.VisibleSlotCountBetween(0, n-1)
}
