package viewport

// DefaultRowHeightSample is how many measured rows feed the height estimate.
const DefaultRowHeightSample = 16

const defaultRowHeight = 1

// estimator averages the heights of the first sample rows it sees. Later
// measurements do not move the estimate until it is reset.
type estimator struct {
	sample int

	rowSum, headerSum     float64
	rowCount, headerCount int

	row, header float64
}

func newEstimator(sample int) *estimator {
	return &estimator{sample: sample, row: defaultRowHeight, header: defaultRowHeight}
}

func (e *estimator) observe(isHeader bool, h float64) {
	if h <= 0 {
		return
	}
	if isHeader {
		if e.headerCount < e.sample {
			e.headerSum += h
			e.headerCount++
			e.header = e.headerSum / float64(e.headerCount)
		}
		return
	}
	if e.rowCount < e.sample {
		e.rowSum += h
		e.rowCount++
		e.row = e.rowSum / float64(e.rowCount)
	}
}

func (e *estimator) reset() {
	e.rowSum, e.headerSum = 0, 0
	e.rowCount, e.headerCount = 0, 0
	e.row, e.header = defaultRowHeight, defaultRowHeight
}

// RowHeightEstimate returns the height assumed for rows not yet measured.
func (v *Viewport) RowHeightEstimate() float64 { return v.estimate.row }

// GroupHeaderHeightEstimate returns the height assumed for unmeasured group headers.
func (v *Viewport) GroupHeaderHeightEstimate() float64 { return v.estimate.header }

// InvalidateRowHeightEstimate drops the estimate after a change that affects
// row heights. Displayed rows are measured again on the next layout.
func (v *Viewport) InvalidateRowHeightEstimate() {
	v.estimate.reset()
	v.recycleAll()
	v.ComputeScrollBarsLayout()
}

// estimatedHeight estimates the height of the visible slots in [lo, hi].
func (v *Viewport) estimatedHeight(lo, hi int) float64 {
	if hi < lo || lo < 0 {
		return 0
	}
	visible := v.slots.VisibleSlotCountBetween(lo, hi)
	headers := v.slots.VisibleHeaderCountBetween(lo, hi)
	return float64(visible-headers)*v.estimate.row + float64(headers)*v.estimate.header
}

// slotHeight is the measured height of a realized slot, else the estimate.
func (v *Viewport) slotHeight(slot int) float64 {
	if h, ok := v.heights[slot]; ok {
		return h
	}
	if v.slots.IsGroupHeader(slot) {
		return v.estimate.header
	}
	return v.estimate.row
}

// exactSlotHeight realizes slot if needed and returns its measured height.
func (v *Viewport) exactSlotHeight(slot int) float64 {
	if h, ok := v.heights[slot]; ok {
		return h
	}
	h := v.presenter.Realize(slot)
	if h <= 0 {
		h = v.slotHeight(slot)
	} else {
		v.estimate.observe(v.slots.IsGroupHeader(slot), h)
	}
	v.heights[slot] = h
	return h
}
