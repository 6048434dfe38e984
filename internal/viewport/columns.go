package viewport

import (
	"math"

	"gridview/internal/column"
)

const epsilon = 1e-6

func (v *Viewport) scrollingColumns() []*column.Column {
	var out []*column.Column
	for _, col := range v.cols.Visible() {
		if !col.IsFrozen() {
			out = append(out, col)
		}
	}
	return out
}

// HorizontalOffset is how far the scrolling columns are scrolled.
func (v *Viewport) HorizontalOffset() float64 { return v.horizontalOffset }

// NegHorizontalOffset is the part of the first displayed scrolling column
// hidden past the frozen columns.
func (v *Viewport) NegHorizontalOffset() float64 { return v.negHorizontalOffset }

// FirstDisplayedScrollingColumn returns the leftmost scrolling column in view, or nil.
func (v *Viewport) FirstDisplayedScrollingColumn() *column.Column { return v.firstScrollingCol }

// LastTotallyDisplayedScrollingColumn returns the rightmost scrolling column
// shown in full, or nil.
func (v *Viewport) LastTotallyDisplayedScrollingColumn() *column.Column { return v.lastTotallyCol }

// DisplayedColumns returns the columns in view: frozen ones first.
func (v *Viewport) DisplayedColumns() []*column.Column { return v.displayedCols }

func (v *Viewport) maxHorizontalOffset() float64 {
	return math.Max(0, v.cols.VisibleEdgedColumnsWidth()-v.cellsWidth)
}

// SetHorizontalOffset scrolls to x, clamped to the scrollable range, and
// returns the offset actually applied.
func (v *Viewport) SetHorizontalOffset(x float64) float64 {
	x = math.Min(math.Max(x, 0), v.maxHorizontalOffset())
	v.horizontalOffset = x
	v.computeFirstVisibleScrollingColumn()
	v.computeDisplayedColumns()
	v.hBar.Value = v.horizontalOffset
	return v.horizontalOffset
}

// ScrollHorizontally scrolls by dx cells.
func (v *Viewport) ScrollHorizontally(dx float64) float64 {
	return v.SetHorizontalOffset(v.horizontalOffset + dx)
}

// computeFirstVisibleScrollingColumn derives the first scrolling column and
// its hidden part from the horizontal offset.
func (v *Viewport) computeFirstVisibleScrollingColumn() {
	v.firstScrollingCol, v.negHorizontalOffset = nil, 0
	cx := 0.0
	cols := v.scrollingColumns()
	for _, col := range cols {
		w := col.DisplayWidth()
		if cx+w > v.horizontalOffset+epsilon {
			v.firstScrollingCol = col
			v.negHorizontalOffset = v.horizontalOffset - cx
			return
		}
		cx += w
	}
	if len(cols) > 0 {
		v.firstScrollingCol = cols[len(cols)-1]
	}
}

// computeDisplayedColumns walks the frozen columns, then the scrolling ones
// from the first displayed; leftover room pulls in earlier columns.
func (v *Viewport) computeDisplayedColumns() {
	v.displayedCols = nil
	v.lastTotallyCol = nil
	width := v.cellsWidth

	cx := 0.0
	for _, col := range v.cols.Visible() {
		if !col.IsFrozen() {
			continue
		}
		if cx >= width {
			break
		}
		v.displayedCols = append(v.displayedCols, col)
		cx += col.DisplayWidth()
	}
	frozenCount := len(v.displayedCols)

	scrolling := v.scrollingColumns()
	if cx >= width || len(scrolling) == 0 {
		return
	}
	first := indexOf(scrolling, v.firstScrollingCol)
	if first < 0 {
		first = 0
		v.horizontalOffset, v.negHorizontalOffset = 0, 0
	}

	cx -= v.negHorizontalOffset
	i := first
	for ; i < len(scrolling) && cx < width-epsilon; i++ {
		v.displayedCols = append(v.displayedCols, scrolling[i])
		cx += scrolling[i].DisplayWidth()
	}

	if cx < width-epsilon {
		// Uncover the hidden part of the first column.
		if v.negHorizontalOffset > 0 {
			reveal := math.Min(v.negHorizontalOffset, width-cx)
			v.negHorizontalOffset -= reveal
			v.horizontalOffset -= reveal
			cx += reveal
		}
		// Then bring earlier columns back, the last one possibly partially.
		var lead []*column.Column
		for first > 0 && cx < width-epsilon {
			first--
			col := scrolling[first]
			w := col.DisplayWidth()
			room := width - cx
			if w <= room+epsilon {
				cx += w
				v.horizontalOffset -= w
			} else {
				v.negHorizontalOffset = w - room
				v.horizontalOffset -= room
				cx = width
			}
			lead = append([]*column.Column{col}, lead...)
		}
		if len(lead) > 0 {
			tail := append([]*column.Column(nil), v.displayedCols[frozenCount:]...)
			v.displayedCols = append(append(v.displayedCols[:frozenCount], lead...), tail...)
		}
		v.horizontalOffset = math.Max(v.horizontalOffset, 0)
	}
	v.firstScrollingCol = scrolling[first]

	// The last scrolling column is cut off when the walk overran the width.
	x := v.cols.FrozenWidth() - v.negHorizontalOffset
	for _, col := range v.displayedCols[frozenCount:] {
		x += col.DisplayWidth()
		if x > width+epsilon {
			break
		}
		v.lastTotallyCol = col
	}
}

// ScrollColumnIntoView scrolls horizontally until col is fully shown, or
// starts at the left edge when it is wider than the scrolling area.
func (v *Viewport) ScrollColumnIntoView(col *column.Column) bool {
	if col == nil || !col.IsVisible() {
		return false
	}
	if col.IsFrozen() {
		return true
	}
	left := 0.0
	found := false
	for _, c := range v.scrollingColumns() {
		if c == col {
			found = true
			break
		}
		left += c.DisplayWidth()
	}
	if !found {
		return false
	}
	right := left + col.DisplayWidth()
	region := v.cellsWidth - v.cols.FrozenWidth()
	switch {
	case left < v.horizontalOffset:
		v.SetHorizontalOffset(left)
	case right > v.horizontalOffset+region+epsilon:
		v.SetHorizontalOffset(math.Min(left, right-region))
	}
	return true
}

// ColumnX returns the x position of a displayed column relative to the cell area.
func (v *Viewport) ColumnX(col *column.Column) (float64, bool) {
	x := 0.0
	for i, c := range v.displayedCols {
		if !c.IsFrozen() && (i == 0 || v.displayedCols[i-1].IsFrozen()) {
			x -= v.negHorizontalOffset
		}
		if c == col {
			return x, true
		}
		x += c.DisplayWidth()
	}
	return 0, false
}

func indexOf(cols []*column.Column, col *column.Column) int {
	for i, c := range cols {
		if c == col {
			return i
		}
	}
	return -1
}
