// Package selection tracks which slots are selected and reports what was
// added and removed once per outer operation.
package selection

import (
	"fmt"
	"iter"
	"strings"

	"gridview/internal/slotmap"
)

// Mode restricts how many rows can be selected.
type Mode int

const (
	Extended Mode = iota
	Single
)

func (m Mode) String() string {
	if m == Single {
		return "single"
	}
	return "extended"
}

// ParseMode reads "single" or "extended".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "extended":
		return Extended, nil
	case "single":
		return Single, nil
	}
	return Extended, fmt.Errorf("selection mode %q: want single or extended", s)
}

// Action says how a currency move changes the selection.
type Action int

const (
	// None moves currency only.
	None Action = iota
	// SelectCurrent clears the selection and selects the target.
	SelectCurrent
	// AddCurrentToSelection adds the target.
	AddCurrentToSelection
	// RemoveCurrentFromSelection removes the target.
	RemoveCurrentFromSelection
	// SelectFromAnchorToCurrent selects the range between the anchor and the target.
	SelectFromAnchorToCurrent
)

func (a Action) String() string {
	switch a {
	case None:
		return "none"
	case SelectCurrent:
		return "select"
	case AddCurrentToSelection:
		return "add"
	case RemoveCurrentFromSelection:
		return "remove"
	case SelectFromAnchorToCurrent:
		return "range"
	}
	return "unknown"
}

// Change lists the items that entered and left the selection.
type Change[T any] struct {
	Added   []T
	Removed []T
}

// Model is a slot selection over items of type T. Only slots that resolve
// to an item can be selected.
type Model[T comparable] struct {
	mode    Mode
	slots   *slotmap.Map[bool]
	items   map[T]int
	anchor  int
	resolve func(slot int) (T, bool)

	batch     *Batch
	order     []T
	net       map[T]int
	listeners []func(Change[T])
}

// NewModel returns an empty selection. resolve maps a slot to its item and
// reports false for slots that cannot be selected.
func NewModel[T comparable](mode Mode, resolve func(slot int) (T, bool)) *Model[T] {
	m := &Model[T]{
		mode:    mode,
		slots:   slotmap.New[bool](),
		items:   make(map[T]int),
		anchor:  -1,
		resolve: resolve,
		net:     make(map[T]int),
	}
	m.batch = NewBatch(m.flush)
	return m
}

// Batch returns the scope that groups selection notifications.
func (m *Model[T]) Batch() *Batch { return m.batch }

// OnChange registers fn for selection changes.
func (m *Model[T]) OnChange(fn func(Change[T])) {
	m.listeners = append(m.listeners, fn)
}

func (m *Model[T]) Mode() Mode { return m.mode }

// SetMode switches modes. Going to Single keeps only the anchor row, or the
// first selected one.
func (m *Model[T]) SetMode(mode Mode) {
	m.mode = mode
	if mode != Single || m.Count() <= 1 {
		return
	}
	keep := m.anchor
	if !m.slots.Contains(keep) {
		keep = m.slots.FirstIndex()
	}
	end := m.batch.Begin()
	defer end()
	for _, s := range m.SelectedSlots() {
		if s != keep {
			m.Deselect(s)
		}
	}
}

// Anchor returns the pivot of range selection, or -1.
func (m *Model[T]) Anchor() int { return m.anchor }

// SetAnchor moves the pivot of range selection.
func (m *Model[T]) SetAnchor(slot int) { m.anchor = slot }

// Contains reports whether slot is selected.
func (m *Model[T]) Contains(slot int) bool { return m.slots.Contains(slot) }

// Count returns the number of selected slots.
func (m *Model[T]) Count() int { return m.slots.IndexCount() }

// Slots iterates the selected slots in order.
func (m *Model[T]) Slots() iter.Seq[int] { return m.slots.Indexes() }

// SelectedSlots returns the selected slots in order.
func (m *Model[T]) SelectedSlots() []int {
	out := make([]int, 0, m.Count())
	for s := range m.slots.Indexes() {
		out = append(out, s)
	}
	return out
}

// Items returns the selected items in slot order.
func (m *Model[T]) Items() []T {
	out := make([]T, 0, m.Count())
	for s := range m.slots.Indexes() {
		if it, ok := m.resolve(s); ok {
			out = append(out, it)
		}
	}
	return out
}

// ContainsItem reports whether it is selected.
func (m *Model[T]) ContainsItem(it T) bool {
	_, ok := m.items[it]
	return ok
}

// Select adds slot. It reports false when slot cannot be selected.
func (m *Model[T]) Select(slot int) bool {
	if m.slots.Contains(slot) {
		return true
	}
	it, ok := m.resolve(slot)
	if !ok {
		return false
	}
	if m.mode == Single && m.Count() > 0 {
		end := m.batch.Begin()
		defer end()
		m.Clear()
	}
	m.slots.AddValue(slot, true)
	m.items[it]++
	m.record(it, 1)
	return true
}

// Deselect removes slot. It reports whether slot was selected.
func (m *Model[T]) Deselect(slot int) bool {
	if !m.slots.Contains(slot) {
		return false
	}
	m.slots.RemoveValue(slot)
	if it, ok := m.resolve(slot); ok {
		m.forget(it)
	}
	return true
}

// SelectRange selects every selectable slot in [lo, hi]. In Single mode
// only hi is selected.
func (m *Model[T]) SelectRange(lo, hi int) {
	if lo > hi {
		lo, hi = hi, lo
	}
	end := m.batch.Begin()
	defer end()
	if m.mode == Single {
		m.Select(hi)
		return
	}
	for s := lo; s <= hi; s++ {
		m.Select(s)
	}
}

// Clear deselects everything.
func (m *Model[T]) Clear() {
	if m.slots.IsEmpty() {
		return
	}
	end := m.batch.Begin()
	defer end()
	for _, s := range m.SelectedSlots() {
		m.Deselect(s)
	}
}

// Apply changes the selection for a currency move to slot.
func (m *Model[T]) Apply(action Action, slot int) {
	end := m.batch.Begin()
	defer end()
	switch action {
	case SelectCurrent:
		m.selectOnly(slot)
	case AddCurrentToSelection:
		if m.mode == Single {
			m.selectOnly(slot)
			return
		}
		m.Select(slot)
		m.anchor = slot
	case RemoveCurrentFromSelection:
		m.Deselect(slot)
	case SelectFromAnchorToCurrent:
		if m.mode == Single || m.anchor < 0 {
			m.selectOnly(slot)
			return
		}
		m.Clear()
		m.SelectRange(m.anchor, slot)
	}
}

func (m *Model[T]) selectOnly(slot int) {
	for _, s := range m.SelectedSlots() {
		if s != slot {
			m.Deselect(s)
		}
	}
	m.Select(slot)
	m.anchor = slot
}

// InsertSlots shifts selected slots at or after slot down by count.
func (m *Model[T]) InsertSlots(slot, count int) {
	m.slots.InsertIndexes(slot, count)
	if m.anchor >= slot {
		m.anchor += count
	}
}

// RemoveSlots drops count slots at slot. gone resolves the i-th removed
// slot to the item it held, since the source may already have forgotten it.
func (m *Model[T]) RemoveSlots(slot, count int, gone func(i int) (T, bool)) {
	end := m.batch.Begin()
	defer end()
	for s := range m.slots.Indexes() {
		if s >= slot+count {
			break
		}
		if s < slot {
			continue
		}
		if it, ok := gone(s - slot); ok {
			m.forget(it)
		}
	}
	m.slots.RemoveIndexes(slot, count)
	switch {
	case m.anchor >= slot+count:
		m.anchor -= count
	case m.anchor >= slot:
		m.anchor = -1
	}
}

// Reset drops the selection without resolving slots, e.g. after the items
// were replaced wholesale.
func (m *Model[T]) Reset() {
	end := m.batch.Begin()
	defer end()
	for it, n := range m.items {
		for range n {
			m.record(it, -1)
		}
	}
	m.slots.Clear()
	clear(m.items)
	m.anchor = -1
}

func (m *Model[T]) forget(it T) {
	if m.items[it] <= 1 {
		delete(m.items, it)
	} else {
		m.items[it]--
	}
	m.record(it, -1)
}

func (m *Model[T]) record(it T, delta int) {
	if _, ok := m.net[it]; !ok {
		m.order = append(m.order, it)
	}
	m.net[it] += delta
	m.batch.Mark()
}

func (m *Model[T]) flush() {
	var c Change[T]
	for _, it := range m.order {
		switch n := m.net[it]; {
		case n > 0:
			c.Added = append(c.Added, it)
		case n < 0:
			c.Removed = append(c.Removed, it)
		}
	}
	m.order = m.order[:0]
	clear(m.net)
	if len(c.Added) == 0 && len(c.Removed) == 0 {
		return
	}
	for _, fn := range m.listeners {
		fn(c)
	}
}
