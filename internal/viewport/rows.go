package viewport

import (
	"math"
)

// VerticalOffset approximates the height scrolled past the top. Rows above
// the window are counted at their estimated height.
func (v *Viewport) VerticalOffset() float64 { return v.verticalOffset }

// NegVerticalOffset is the part of the first displayed slot hidden above the top.
func (v *Viewport) NegVerticalOffset() float64 { return v.negVerticalOffset }

// FirstDisplayedSlot returns the topmost displayed slot, or -1.
func (v *Viewport) FirstDisplayedSlot() int { return v.firstSlot }

// LastDisplayedSlot returns the bottommost displayed slot, or -1.
func (v *Viewport) LastDisplayedSlot() int { return v.lastSlot }

// DisplayedSlots returns the displayed slots from top to bottom.
func (v *Viewport) DisplayedSlots() []int { return v.displayedSlots }

// NumTotallyDisplayed counts displayed slots that are not cut off.
func (v *Viewport) NumTotallyDisplayed() int { return v.numTotallyDisplayed }

// SlotHeight returns the measured height of a displayed slot.
func (v *Viewport) SlotHeight(slot int) (float64, bool) {
	h, ok := v.heights[slot]
	return h, ok
}

// IsSlotDisplayed reports whether slot is at least partly in view.
func (v *Viewport) IsSlotDisplayed(slot int) bool {
	_, ok := v.heights[slot]
	return ok && slot >= v.firstSlot && slot <= v.lastSlot
}

// IsSlotTotallyDisplayed reports whether slot is fully in view.
func (v *Viewport) IsSlotTotallyDisplayed(slot int) bool {
	if !v.IsSlotDisplayed(slot) {
		return false
	}
	y := -v.negVerticalOffset
	for _, s := range v.displayedSlots {
		h := v.heights[s]
		if s == slot {
			return y >= -epsilon && y+h <= v.cellsHeight+epsilon
		}
		y += h
	}
	return false
}

// ContentHeight estimates the height of every visible slot.
func (v *Viewport) ContentHeight() float64 {
	n := v.slots.SlotCount()
	if n == 0 {
		return 0
	}
	if v.firstSlot < 0 || len(v.displayedSlots) == 0 {
		return v.estimatedHeight(0, n-1)
	}
	h := v.verticalOffset - v.negVerticalOffset
	for _, s := range v.displayedSlots {
		h += v.heights[s]
	}
	return h + v.estimatedHeight(v.lastSlot+1, n-1)
}

func (v *Viewport) maxVerticalOffset() float64 {
	return math.Max(0, v.ContentHeight()-v.cellsHeight)
}

// RemainingPages estimates how many viewport heights of content lie below the window.
func (v *Viewport) RemainingPages() float64 {
	if v.cellsHeight <= 0 {
		return 0
	}
	below := v.ContentHeight() - v.verticalOffset - v.cellsHeight
	return math.Max(0, below) / v.cellsHeight
}

// normalizeSlot returns slot when visible, else the nearest visible slot after
// it, else the nearest before it.
func (v *Viewport) normalizeSlot(slot int) int {
	n := v.slots.SlotCount()
	if n == 0 {
		return -1
	}
	if slot < 0 || slot >= n {
		return v.slots.NextVisibleSlot(-1)
	}
	if s := v.slots.NextVisibleSlot(slot - 1); s >= 0 {
		return s
	}
	return v.slots.PreviousVisibleSlot(slot)
}

// updateDisplayedRows fills displayHeight from first downward, then upward
// if rows ran out, realizing what enters and recycling what left.
func (v *Viewport) updateDisplayedRows(first int, displayHeight float64) {
	first = v.normalizeSlot(first)
	var window []int
	v.numTotallyDisplayed = 0

	if first < 0 || displayHeight <= 0 {
		if first < 0 {
			v.verticalOffset, v.negVerticalOffset = 0, 0
		}
		v.firstSlot, v.lastSlot = first, -1
		v.release(window)
		return
	}

	deltaY := -v.negVerticalOffset
	last := -1
	for slot := first; slot >= 0 && deltaY < displayHeight-epsilon; slot = v.slots.NextVisibleSlot(slot) {
		deltaY += v.exactSlotHeight(slot)
		window = append(window, slot)
		last = slot
	}

	// Ran out of rows below: pull earlier rows in.
	var lead []int
	for deltaY < displayHeight-epsilon {
		prev := v.slots.PreviousVisibleSlot(first)
		if prev < 0 {
			break
		}
		h := v.exactSlotHeight(prev)
		deltaY += h
		v.verticalOffset = math.Max(0, v.verticalOffset-h)
		first = prev
		lead = append(lead, prev)
	}
	if len(lead) > 0 {
		for i, j := 0, len(lead)-1; i < j; i, j = i+1, j-1 {
			lead[i], lead[j] = lead[j], lead[i]
		}
		window = append(lead, window...)
	}

	if v.slots.PreviousVisibleSlot(first) < 0 {
		// At the top: uncover as much of the first row as fits.
		if deltaY < displayHeight && v.negVerticalOffset > 0 {
			neg := math.Max(0, v.negVerticalOffset-(displayHeight-deltaY))
			deltaY += v.negVerticalOffset - neg
			v.negVerticalOffset = neg
		}
		v.verticalOffset = v.negVerticalOffset
	} else if len(lead) > 0 && v.negVerticalOffset > 0 {
		// Earlier rows were pulled in, so nothing above is hidden any more.
		v.verticalOffset = math.Max(0, v.verticalOffset-v.negVerticalOffset)
		v.negVerticalOffset = 0
	}

	y := -v.negVerticalOffset
	for _, s := range window {
		h := v.heights[s]
		if y >= -epsilon && y+h <= displayHeight+epsilon {
			v.numTotallyDisplayed++
		}
		y += h
	}

	v.firstSlot, v.lastSlot = first, last
	v.release(window)
}

// release recycles every realized slot outside window and records window.
func (v *Viewport) release(window []int) {
	keep := make(map[int]struct{}, len(window))
	for _, s := range window {
		keep[s] = struct{}{}
	}
	for s := range v.heights {
		if _, ok := keep[s]; !ok {
			v.presenter.Recycle(s)
			delete(v.heights, s)
		}
	}
	v.displayedSlots = window
}

// SetVerticalOffset scrolls so that y is the approximate offset of the top.
func (v *Viewport) SetVerticalOffset(y float64) float64 {
	return v.ScrollVertically(y - v.verticalOffset)
}

// ScrollVertically scrolls by dy. Small distances walk measured rows; large
// ones jump by the row height estimate. The applied offset is returned.
func (v *Viewport) ScrollVertically(dy float64) float64 {
	if v.firstSlot < 0 || v.cellsHeight <= 0 {
		return v.verticalOffset
	}
	target := math.Min(math.Max(v.verticalOffset+dy, 0), v.maxVerticalOffset())
	dy = target - v.verticalOffset
	if math.Abs(dy) < epsilon {
		return v.verticalOffset
	}

	first, neg := v.firstSlot, v.negVerticalOffset
	if dy > 0 {
		remaining := neg + dy
		if dy > v.cellsHeight {
			first, remaining = v.skipForward(first, remaining)
		}
		for {
			h := v.exactSlotHeight(first)
			if remaining < h-epsilon {
				break
			}
			next := v.slots.NextVisibleSlot(first)
			if next < 0 {
				remaining = math.Min(remaining, math.Max(h-epsilon, 0))
				break
			}
			remaining -= h
			first = next
		}
		neg = math.Max(remaining, 0)
	} else {
		remaining := -dy
		if remaining <= neg {
			neg -= remaining
		} else {
			remaining -= neg
			neg = 0
			if remaining > v.cellsHeight {
				first, remaining = v.skipBackward(first, remaining)
			}
			for remaining > epsilon {
				prev := v.slots.PreviousVisibleSlot(first)
				if prev < 0 {
					break
				}
				h := v.exactSlotHeight(prev)
				first = prev
				if remaining <= h {
					neg = h - remaining
					remaining = 0
				} else {
					remaining -= h
				}
			}
		}
	}

	v.verticalOffset = target
	v.negVerticalOffset = neg
	v.updateDisplayedRows(first, v.cellsHeight)
	v.updateVerticalScrollBar()
	return v.verticalOffset
}

// skipForward jumps over whole estimated rows, keeping about one page of
// distance to walk exactly.
func (v *Viewport) skipForward(slot int, distance float64) (int, float64) {
	for distance > v.cellsHeight {
		next := v.slots.NextVisibleSlot(slot)
		if next < 0 {
			break
		}
		distance -= v.slotHeight(slot)
		slot = next
	}
	return slot, distance
}

func (v *Viewport) skipBackward(slot int, distance float64) (int, float64) {
	for distance > v.cellsHeight {
		prev := v.slots.PreviousVisibleSlot(slot)
		if prev < 0 {
			break
		}
		distance -= v.slotHeight(prev)
		slot = prev
	}
	return slot, distance
}

// ScrollSlotIntoView scrolls the least distance that shows slot completely,
// or puts it at the top when it is taller than the viewport.
func (v *Viewport) ScrollSlotIntoView(slot int) bool {
	if slot < 0 || slot >= v.slots.SlotCount() || v.slots.VisibleSlotCountBetween(slot, slot) == 0 {
		return false
	}
	if v.cellsHeight <= 0 {
		return false
	}
	if v.IsSlotTotallyDisplayed(slot) {
		return true
	}

	if v.firstSlot < 0 || slot <= v.firstSlot {
		if slot == v.firstSlot {
			v.verticalOffset -= v.negVerticalOffset
		} else if v.firstSlot >= 0 {
			v.verticalOffset -= v.negVerticalOffset + v.heightBetween(slot, v.firstSlot-1)
		}
		if v.slots.PreviousVisibleSlot(slot) < 0 {
			v.verticalOffset = 0
		}
		v.verticalOffset = math.Max(v.verticalOffset, 0)
		v.negVerticalOffset = 0
		v.updateDisplayedRows(slot, v.cellsHeight)
		v.updateVerticalScrollBar()
		return true
	}

	// Below the window: align the slot's bottom with the bottom edge.
	acc := 0.0
	top := slot
	for {
		acc += v.exactSlotHeight(top)
		if acc >= v.cellsHeight-epsilon {
			break
		}
		prev := v.slots.PreviousVisibleSlot(top)
		if prev < 0 {
			break
		}
		top = prev
	}
	neg := math.Max(0, acc-v.cellsHeight)
	if h := v.heights[slot]; h > v.cellsHeight {
		// Taller than the viewport: show its top.
		top, neg = slot, 0
	}
	if top > v.firstSlot {
		v.verticalOffset += v.heightBetween(v.firstSlot, top-1) - v.negVerticalOffset + neg
	} else {
		v.verticalOffset += neg - v.negVerticalOffset
	}
	v.verticalOffset = math.Max(v.verticalOffset, 0)
	v.negVerticalOffset = neg
	v.updateDisplayedRows(top, v.cellsHeight)
	v.updateVerticalScrollBar()
	return true
}

// heightBetween sums the visible slots in [lo, hi], exactly for short ranges
// and by estimate for long ones.
func (v *Viewport) heightBetween(lo, hi int) float64 {
	if hi < lo {
		return 0
	}
	if hi-lo > 4*len(v.displayedSlots)+64 {
		return v.estimatedHeight(lo, hi)
	}
	h := 0.0
	for s := v.slots.NextVisibleSlot(lo - 1); s >= 0 && s <= hi; s = v.slots.NextVisibleSlot(s) {
		h += v.slotHeight(s)
	}
	return h
}

// PageSlot returns the visible slot about one page from slot.
func (v *Viewport) PageSlot(slot int, down bool) int {
	steps := max(v.numTotallyDisplayed-1, 1)
	for ; steps > 0; steps-- {
		var next int
		if down {
			next = v.slots.NextVisibleSlot(slot)
		} else {
			next = v.slots.PreviousVisibleSlot(slot)
		}
		if next < 0 {
			break
		}
		slot = next
	}
	return slot
}
