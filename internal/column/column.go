package column

import "math"

// Column describes one grid column. Layout state (width, display order,
// visibility) changes only through the owning Collection.
type Column struct {
	Header   string
	Binding  string
	ReadOnly bool
	// CanUserResize gates Collection.Resize.
	CanUserResize bool

	width    Length
	minWidth float64
	maxWidth float64
	hidden   bool

	index        int
	displayIndex int
	owner        *Collection
	determined   bool

	headerWidth float64
	cellWidth   float64
}

// New returns an unattached column bound to the given field.
func New(header, binding string, width Length) *Column {
	return &Column{
		Header:        header,
		Binding:       binding,
		CanUserResize: true,
		width:         width,
		index:         -1,
		displayIndex:  -1,
	}
}

// Width returns the current width including desired and display values.
func (c *Column) Width() Length { return c.width }

// DisplayWidth returns the laid out width.
func (c *Column) DisplayWidth() float64 {
	if math.IsNaN(c.width.DisplayValue) {
		return 0
	}
	return c.width.DisplayValue
}

// Index is the position in the underlying column list.
func (c *Column) Index() int { return c.index }

// DisplayIndex is the position in display order.
func (c *Column) DisplayIndex() int { return c.displayIndex }

// IsVisible reports whether the column takes part in layout.
func (c *Column) IsVisible() bool { return !c.hidden }

// IsFrozen reports whether the column is pinned to the leading edge.
func (c *Column) IsFrozen() bool {
	return c.owner != nil && c.displayIndex < c.owner.frozen
}

// IsInitialDesiredWidthDetermined reports whether the first auto-size pass
// has settled this column.
func (c *Column) IsInitialDesiredWidthDetermined() bool { return c.determined }

// ActualMinWidth is the effective minimum after collection defaults.
func (c *Column) ActualMinWidth() float64 {
	lo := c.minWidth
	if lo <= 0 && c.owner != nil {
		lo = c.owner.minWidth
	}
	return math.Max(lo, 0)
}

// ActualMaxWidth is the effective maximum after collection defaults; never below the minimum.
func (c *Column) ActualMaxWidth() float64 {
	hi := c.maxWidth
	if hi <= 0 && c.owner != nil {
		hi = c.owner.maxWidth
	}
	if hi <= 0 {
		hi = math.Inf(1)
	}
	return math.Max(hi, c.ActualMinWidth())
}

func (c *Column) clamp(v float64) float64 {
	return math.Min(math.Max(v, c.ActualMinWidth()), c.ActualMaxWidth())
}

func (c *Column) setDisplayValue(v float64) {
	c.width.DisplayValue = c.clamp(v)
}

func (c *Column) setDesiredValue(v float64) {
	c.width.DesiredValue = v
}
