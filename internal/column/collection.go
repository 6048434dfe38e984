package column

import (
	"fmt"
	"math"
	"slices"
)

// DefaultMinWidth is the minimum width, in cells, of a column that sets none.
const DefaultMinWidth = 4

// Collection owns a grid's columns, their display order and their widths.
type Collection struct {
	cols  []*Column // by Index
	order []*Column // by DisplayIndex

	frozen    int
	minWidth  float64
	maxWidth  float64
	available float64

	autoSizing bool
}

// Option configures a Collection.
type Option func(*Collection)

// WithMinWidth sets the default minimum column width.
func WithMinWidth(w float64) Option {
	return func(c *Collection) { c.minWidth = w }
}

// WithMaxWidth sets the default maximum column width. Zero means unbounded.
func WithMaxWidth(w float64) Option {
	return func(c *Collection) { c.maxWidth = w }
}

// WithFrozenCount pins the first n columns in display order.
func WithFrozenCount(n int) Option {
	return func(c *Collection) { c.frozen = max(n, 0) }
}

// NewCollection returns an empty collection.
func NewCollection(opts ...Option) *Collection {
	c := &Collection{minWidth: DefaultMinWidth}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Len returns the number of columns, visible or not.
func (c *Collection) Len() int { return len(c.cols) }

// At returns the column at Index i, or nil.
func (c *Collection) At(i int) *Column {
	if i < 0 || i >= len(c.cols) {
		return nil
	}
	return c.cols[i]
}

// ByDisplayIndex returns the column shown at position i, or nil.
func (c *Collection) ByDisplayIndex(i int) *Column {
	if i < 0 || i >= len(c.order) {
		return nil
	}
	return c.order[i]
}

// Find returns the first column bound to binding, or nil.
func (c *Collection) Find(binding string) *Column {
	for _, col := range c.cols {
		if col.Binding == binding {
			return col
		}
	}
	return nil
}

// Ordered returns every column in display order.
func (c *Collection) Ordered() []*Column {
	return slices.Clone(c.order)
}

// Visible returns the visible columns in display order.
func (c *Collection) Visible() []*Column {
	out := make([]*Column, 0, len(c.order))
	for _, col := range c.order {
		if !col.hidden {
			out = append(out, col)
		}
	}
	return out
}

// Add appends col at the end of both the column list and the display order.
func (c *Collection) Add(col *Column) error {
	return c.Insert(len(c.cols), col)
}

// Insert places col at Index i; it takes the same display position.
func (c *Collection) Insert(i int, col *Column) error {
	if col.owner != nil {
		return ErrColumnOwned
	}
	if i < 0 || i > len(c.cols) {
		return fmt.Errorf("insert at %d: %w", i, ErrDisplayIndexRange)
	}
	col.owner = c
	c.cols = slices.Insert(c.cols, i, col)
	c.order = slices.Insert(c.order, i, col)
	c.renumber()

	c.coerce(col)
	if col.width.IsAbsolute() {
		col.determined = true
	} else {
		col.determined = false
		c.autoSizing = true
	}
	c.rebalance()
	return nil
}

// Remove detaches col.
func (c *Collection) Remove(col *Column) error {
	if col.owner != c {
		return ErrColumnNotFound
	}
	c.cols = slices.DeleteFunc(c.cols, func(x *Column) bool { return x == col })
	c.order = slices.DeleteFunc(c.order, func(x *Column) bool { return x == col })
	col.owner = nil
	col.index, col.displayIndex = -1, -1
	c.renumber()
	c.rebalance()
	return nil
}

// SetDisplayIndex moves col to display position d, shifting the columns in between.
func (c *Collection) SetDisplayIndex(col *Column, d int) error {
	if col.owner != c {
		return ErrColumnNotFound
	}
	if d < 0 || d >= len(c.order) {
		return fmt.Errorf("display index %d: %w", d, ErrDisplayIndexRange)
	}
	c.order = slices.Delete(c.order, col.displayIndex, col.displayIndex+1)
	c.order = slices.Insert(c.order, d, col)
	c.renumber()
	return nil
}

func (c *Collection) renumber() {
	for i, col := range c.cols {
		col.index = i
	}
	for i, col := range c.order {
		col.displayIndex = i
	}
}

// FrozenCount returns how many leading display positions are frozen.
func (c *Collection) FrozenCount() int { return min(c.frozen, len(c.order)) }

// SetFrozenCount pins the first n columns in display order.
func (c *Collection) SetFrozenCount(n int) {
	c.frozen = max(n, 0)
}

// FrozenWidth sums the widths of the visible frozen columns.
func (c *Collection) FrozenWidth() float64 {
	w := 0.0
	for _, col := range c.order[:c.FrozenCount()] {
		if !col.hidden {
			w += col.DisplayWidth()
		}
	}
	return w
}

// AvailableWidth is the width of the cell area.
func (c *Collection) AvailableWidth() float64 { return c.available }

// SetAvailableWidth records the cell area width and lets star columns follow it.
func (c *Collection) SetAvailableWidth(w float64) {
	if w < 0 || w == c.available {
		return
	}
	c.available = w
	c.rebalance()
}

// VisibleEdgedColumnsWidth sums the display widths of the visible columns.
func (c *Collection) VisibleEdgedColumnsWidth() float64 {
	w := 0.0
	for _, col := range c.order {
		if !col.hidden {
			w += col.DisplayWidth()
		}
	}
	return w
}

// VisibleStarColumnCount counts visible star columns.
func (c *Collection) VisibleStarColumnCount() int {
	n := 0
	for _, col := range c.order {
		if !col.hidden && col.width.IsStar() {
			n++
		}
	}
	return n
}

// SetWidth replaces col's width. Auto and star widths are re-measured on the
// next auto-size pass.
func (c *Collection) SetWidth(col *Column, l Length) error {
	if col.owner != c {
		return ErrColumnNotFound
	}
	if l.Value < 0 || (l.IsStar() && l.Value == 0) || math.IsNaN(l.Value) {
		return fmt.Errorf("%s: %w", l, ErrInvalidWidth)
	}
	if l.IsAbsolute() {
		l.DesiredValue, l.DisplayValue = l.Value, l.Value
	} else {
		l.DesiredValue = math.NaN()
		l.DisplayValue = col.width.DisplayValue
		col.determined = false
		c.autoSizing = true
	}
	col.width = l
	c.coerce(col)
	c.rebalance()
	return nil
}

// SetMinWidth sets col's own minimum; zero falls back to the collection default.
func (c *Collection) SetMinWidth(col *Column, w float64) error {
	if col.owner != c {
		return ErrColumnNotFound
	}
	col.minWidth = max(w, 0)
	col.setDisplayValue(col.DisplayWidth())
	c.rebalance()
	return nil
}

// SetMaxWidth sets col's own maximum; zero falls back to the collection default.
func (c *Collection) SetMaxWidth(col *Column, w float64) error {
	if col.owner != c {
		return ErrColumnNotFound
	}
	col.maxWidth = max(w, 0)
	col.setDisplayValue(col.DisplayWidth())
	c.rebalance()
	return nil
}

// SetVisible shows or hides col.
func (c *Collection) SetVisible(col *Column, visible bool) error {
	if col.owner != c {
		return ErrColumnNotFound
	}
	if col.hidden == !visible {
		return nil
	}
	col.hidden = !visible
	if visible {
		c.coerce(col)
	}
	c.rebalance()
	return nil
}

// RoundedWidths returns integral widths for the visible columns in display
// order. Rounding is cumulative so the total matches the rounded sum.
func (c *Collection) RoundedWidths() []int {
	vis := c.Visible()
	out := make([]int, len(vis))
	acc, prev := 0.0, 0
	for i, col := range vis {
		acc += col.DisplayWidth()
		r := int(math.Round(acc))
		out[i] = r - prev
		prev = r
	}
	return out
}

// coerce fills in desired and display values that are not known yet.
func (c *Collection) coerce(col *Column) {
	l := &col.width
	switch {
	case l.IsAbsolute():
		l.DesiredValue = l.Value
		col.setDisplayValue(l.Value)
	case l.IsStar():
		if math.IsNaN(l.DesiredValue) {
			l.DesiredValue = c.starDesiredValue(col)
		}
		if math.IsNaN(l.DisplayValue) {
			col.setDisplayValue(l.DesiredValue)
		} else {
			col.setDisplayValue(l.DisplayValue)
		}
	default:
		natural := c.naturalWidth(col)
		if math.IsNaN(l.DesiredValue) || l.DesiredValue < natural {
			l.DesiredValue = natural
		}
		if math.IsNaN(l.DisplayValue) {
			col.setDisplayValue(l.DesiredValue)
		} else {
			col.setDisplayValue(l.DisplayValue)
		}
	}
}

// starDesiredValue sizes a new star column like its peers, or from the
// space the other columns leave when it is the only one.
func (c *Collection) starDesiredValue(col *Column) float64 {
	var weights, desired, nonStar float64
	for _, other := range c.order {
		if other == col || other.hidden {
			continue
		}
		if other.width.IsStar() {
			if !math.IsNaN(other.width.DesiredValue) {
				weights += other.width.Value
				desired += other.width.DesiredValue
			}
			continue
		}
		nonStar += other.DisplayWidth()
	}
	if weights > 0 {
		return desired * col.width.Value / weights
	}
	return math.Max(col.ActualMinWidth(), c.available-nonStar)
}

func (c *Collection) naturalWidth(col *Column) float64 {
	var w float64
	switch col.width.Unit {
	case Auto:
		w = math.Max(col.headerWidth, col.cellWidth)
	case SizeToCells:
		w = col.cellWidth
	case SizeToHeader:
		w = col.headerWidth
	}
	return math.Max(w, col.ActualMinWidth())
}

// rebalance keeps star columns filling the available width once the
// initial auto-size pass is over.
func (c *Collection) rebalance() {
	if c.autoSizing || c.available <= 0 || c.VisibleStarColumnCount() == 0 {
		return
	}
	c.AdjustColumnWidths(0, c.available-c.VisibleEdgedColumnsWidth())
}
