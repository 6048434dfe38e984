package column

import (
	"math"
	"slices"
	"sort"
)

// minStarWeight keeps rescaled star weights from collapsing to zero after
// long sequences of shrinking resizes.
const minStarWeight = 1e-3

// AdjustColumnWidths distributes amount cells among the columns at or after
// displayIndex and returns the part that could not be absorbed.
func (c *Collection) AdjustColumnWidths(displayIndex int, amount float64) float64 {
	if isZero(amount) {
		return 0
	}
	if amount < 0 {
		return c.decreaseColumnWidths(displayIndex, amount)
	}
	return c.increaseColumnWidths(displayIndex, amount)
}

func (c *Collection) decreaseColumnWidths(displayIndex int, amount float64) float64 {
	// Non-star columns wider than their content give back the excess, left to right.
	amount = c.decreaseNonStarColumnWidths(displayIndex, desiredOrDisplay, amount, false, false)
	// Star columns shrink proportionally down to their minimums.
	amount = c.adjustStarColumnWidths(displayIndex, amount)
	// Settled non-star columns shrink to their minimums, right to left.
	amount = c.decreaseNonStarColumnWidths(displayIndex, (*Column).ActualMinWidth, amount, true, false)
	// Then every non-star column, new ones included.
	return c.decreaseNonStarColumnWidths(displayIndex, (*Column).ActualMinWidth, amount, true, true)
}

func (c *Collection) increaseColumnWidths(displayIndex int, amount float64) float64 {
	amount = c.increaseNonStarColumnWidths(displayIndex, desiredOrDisplay, amount, false, false)
	amount = c.adjustStarColumnWidths(displayIndex, amount)
	amount = c.increaseNonStarColumnWidths(displayIndex, (*Column).ActualMaxWidth, amount, true, false)
	return c.increaseNonStarColumnWidths(displayIndex, (*Column).ActualMaxWidth, amount, true, true)
}

func desiredOrDisplay(col *Column) float64 {
	if math.IsNaN(col.width.DesiredValue) {
		return col.DisplayWidth()
	}
	return col.width.DesiredValue
}

func (c *Collection) nonStarColumns(displayIndex int, reverse, affectNew bool) []*Column {
	var out []*Column
	for _, col := range c.order {
		if col.hidden || col.width.IsStar() || col.displayIndex < displayIndex {
			continue
		}
		if !affectNew && !col.determined {
			continue
		}
		out = append(out, col)
	}
	if reverse {
		slices.Reverse(out)
	}
	return out
}

func (c *Collection) decreaseNonStarColumnWidths(displayIndex int, target func(*Column) float64, amount float64, reverse, affectNew bool) float64 {
	if greaterOrClose(amount, 0) {
		return amount
	}
	for _, col := range c.nonStarColumns(displayIndex, reverse, affectNew) {
		amount = decreaseNonStarColumnWidth(col, math.Max(col.ActualMinWidth(), target(col)), amount)
		if isZero(amount) {
			break
		}
	}
	return amount
}

func decreaseNonStarColumnWidth(col *Column, target, amount float64) float64 {
	disp := col.DisplayWidth()
	if lessOrClose(disp, target) {
		return amount
	}
	adj := math.Max(col.ActualMinWidth()-disp, math.Max(target-disp, amount))
	col.setDisplayValue(disp + adj)
	return amount - adj
}

func (c *Collection) increaseNonStarColumnWidths(displayIndex int, target func(*Column) float64, amount float64, reverse, affectNew bool) float64 {
	if lessOrClose(amount, 0) {
		return amount
	}
	for _, col := range c.nonStarColumns(displayIndex, reverse, affectNew) {
		amount = increaseNonStarColumnWidth(col, math.Min(col.ActualMaxWidth(), target(col)), amount)
		if isZero(amount) {
			break
		}
	}
	return amount
}

func increaseNonStarColumnWidth(col *Column, target, amount float64) float64 {
	disp := col.DisplayWidth()
	if greaterOrClose(disp, target) {
		return amount
	}
	adj := math.Min(col.ActualMaxWidth()-disp, math.Min(target-disp, amount))
	col.setDisplayValue(disp + adj)
	return amount - adj
}

// adjustStarColumnWidths moves the star columns at or after displayIndex by
// adjustment, keeping their ratios while none of them is at a limit.
func (c *Collection) adjustStarColumnWidths(displayIndex int, adjustment float64) float64 {
	if isZero(adjustment) {
		return adjustment
	}
	increase := adjustment > 0

	var (
		stars                 []*Column
		total, weights, limit float64
		scaleStarWeights      bool
	)
	for _, col := range c.order {
		if col.hidden || !col.width.IsStar() {
			continue
		}
		if col.displayIndex < displayIndex {
			scaleStarWeights = true
			continue
		}
		stars = append(stars, col)
		weights += col.width.Value
		total += col.DisplayWidth()
		if increase {
			limit += col.ActualMaxWidth()
		} else {
			limit += col.ActualMinWidth()
		}
	}
	if len(stars) == 0 || weights <= 0 {
		return adjustment
	}

	// How far all stars can move together before the first one hits a limit.
	adjustmentLimit := limit - total
	if increase {
		adjustmentLimit = math.Min(adjustmentLimit, adjustment)
	} else {
		adjustmentLimit = math.Max(adjustmentLimit, adjustment)
	}
	for _, col := range stars {
		col.setDesiredValue((total + adjustmentLimit) * col.width.Value / weights)
	}

	remaining := distributeStarAdjustment(adjustment, stars, func(col *Column) float64 {
		return col.width.DesiredValue
	})
	remaining = distributeStarAdjustment(remaining, stars, func(col *Column) float64 {
		if increase {
			return col.ActualMaxWidth()
		}
		return col.ActualMinWidth()
	})

	// Stars to the left kept their widths, so the ratios shifted.
	if scaleStarWeights && total > 0 {
		ratio := (total + adjustment - remaining) / total
		for _, col := range stars {
			col.width.Value = math.Min(math.MaxFloat64, math.Max(minStarWeight, ratio*col.width.Value))
		}
	}
	return remaining
}

type starShare struct {
	col    *Column
	factor float64
}

// distributeStarAdjustment moves each star toward target in order of weighted
// distance, so columns that saturate first hand their leftover to the rest.
func distributeStarAdjustment(adjustment float64, stars []*Column, target func(*Column) float64) float64 {
	if isZero(adjustment) {
		return adjustment
	}
	increase := adjustment > 0

	var shares []starShare
	weights := 0.0
	for _, col := range stars {
		distance := target(col) - col.DisplayWidth()
		if math.IsNaN(distance) || (increase && distance <= 0) || (!increase && distance >= 0) {
			continue
		}
		factor := math.Abs(distance) / col.width.Value
		pos := sort.Search(len(shares), func(i int) bool { return shares[i].factor > factor })
		shares = slices.Insert(shares, pos, starShare{col: col, factor: factor})
		weights += col.width.Value
	}

	for _, s := range shares {
		if isZero(adjustment) || weights <= 0 {
			break
		}
		w := s.col.width.Value
		step := math.Min(s.factor*w, math.Abs(adjustment)*w/weights)
		if !increase {
			step = -step
		}
		before := s.col.DisplayWidth()
		s.col.setDisplayValue(before + step)
		adjustment -= s.col.DisplayWidth() - before
		weights -= w
	}
	return adjustment
}

// AutoSizing reports whether the initial auto-size pass is still pending.
func (c *Collection) AutoSizing() bool { return c.autoSizing }

// MeasureCell reports the natural width of one cell of col.
func (c *Collection) MeasureCell(col *Column, w float64) {
	if w <= col.cellWidth {
		return
	}
	col.cellWidth = w
	if col.width.Unit == Auto || col.width.Unit == SizeToCells {
		c.grow(col)
	}
}

// MeasureHeader reports the natural width of col's header.
func (c *Collection) MeasureHeader(col *Column, w float64) {
	if w <= col.headerWidth {
		return
	}
	col.headerWidth = w
	if col.width.Unit == Auto || col.width.Unit == SizeToHeader {
		c.grow(col)
	}
}

// grow widens an auto column to its natural width. Once the initial pass is
// over the growth is taken from the columns to its right.
func (c *Collection) grow(col *Column) {
	natural := c.naturalWidth(col)
	if !math.IsNaN(col.width.DesiredValue) && col.width.DesiredValue >= natural {
		return
	}
	col.width.DesiredValue = natural
	before := col.DisplayWidth()
	if before >= natural {
		return
	}
	col.setDisplayValue(natural)
	if c.autoSizing || !col.determined || col.owner != c || col.hidden {
		return
	}
	if c.VisibleStarColumnCount() > 0 {
		// Whatever the columns to the right cannot give back stays unclaimed.
		grown := col.DisplayWidth() - before
		grown += c.AdjustColumnWidths(col.displayIndex+1, -grown)
		col.setDisplayValue(before + grown)
	}
}

// FinishAutoSize ends the initial auto-size pass: the difference between the
// available width and the natural widths is distributed in one adjustment.
func (c *Collection) FinishAutoSize() {
	if !c.autoSizing {
		return
	}
	c.autoSizing = false
	if c.available > 0 && c.VisibleStarColumnCount() > 0 {
		c.AdjustColumnWidths(0, c.available-c.VisibleEdgedColumnsWidth())
	}
	for _, col := range c.order {
		if !col.hidden {
			col.determined = true
		}
	}
}

// Resize applies a user resize of col to width. Star columns to the right
// lend or take the difference; a resized star column keeps its new share.
func (c *Collection) Resize(col *Column, width float64) bool {
	if col.owner != c || col.hidden || !col.CanUserResize {
		return false
	}
	old := col.DisplayWidth()
	delta := col.clamp(width) - old
	if isZero(delta) {
		return true
	}
	if c.starColumnsAfter(col.displayIndex) {
		delta += c.AdjustColumnWidths(col.displayIndex+1, -delta)
	}
	next := old + delta
	if col.width.IsStar() {
		if old > 0 {
			col.width.Value = math.Max(minStarWeight, col.width.Value*next/old)
		}
		col.width.DesiredValue = next
	} else {
		col.width = Length{Value: next, Unit: Pixel, DesiredValue: next}
	}
	col.setDisplayValue(next)
	col.determined = true
	return true
}

func (c *Collection) starColumnsAfter(displayIndex int) bool {
	for _, col := range c.order[displayIndex+1:] {
		if !col.hidden && col.width.IsStar() {
			return true
		}
	}
	return false
}
