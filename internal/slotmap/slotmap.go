// Package slotmap holds a sparse, ordered mapping from slot indexes to values.
//
// Marked indexes are stored as runs of equal values, so a map describing a
// handful of group headers over millions of rows costs a handful of runs.
// Inserting or removing indexes shifts only the runs that sit after the edit.
package slotmap

import (
	"iter"
	"math"
	"sort"
)

const (
	// None is returned when no marked index precedes the query.
	None = -1
	// End is returned when no marked index follows the query.
	End = math.MaxInt
)

type span[V comparable] struct {
	lo, hi int
	value  V
}

func (s span[V]) size() int { return s.hi - s.lo + 1 }

// Map is a sparse index-to-value table. The zero value is an empty map.
type Map[V comparable] struct {
	spans []span[V]
}

// New returns an empty map.
func New[V comparable]() *Map[V] {
	return &Map[V]{}
}

// seek returns the position of the first run whose upper bound is >= index.
func (m *Map[V]) seek(index int) int {
	return sort.Search(len(m.spans), func(i int) bool { return m.spans[i].hi >= index })
}

// IsEmpty reports whether no index is marked.
func (m *Map[V]) IsEmpty() bool { return len(m.spans) == 0 }

// RangeCount returns the number of stored runs.
func (m *Map[V]) RangeCount() int { return len(m.spans) }

// IndexCount returns the number of marked indexes.
func (m *Map[V]) IndexCount() int {
	n := 0
	for _, s := range m.spans {
		n += s.size()
	}
	return n
}

// Contains reports whether index is marked. Out of range indexes are never marked.
func (m *Map[V]) Contains(index int) bool {
	pos := m.seek(index)
	return pos < len(m.spans) && m.spans[pos].lo <= index
}

// ContainsAll reports whether every index in [lo, hi] is marked.
func (m *Map[V]) ContainsAll(lo, hi int) bool {
	if hi < lo {
		return false
	}
	pos := m.seek(lo)
	for pos < len(m.spans) && m.spans[pos].lo <= lo {
		if m.spans[pos].hi >= hi {
			return true
		}
		lo = m.spans[pos].hi + 1
		pos++
	}
	return false
}

// ContainsIndexAndValue reports whether index is marked with value.
func (m *Map[V]) ContainsIndexAndValue(index int, value V) bool {
	v, ok := m.GetValueAt(index)
	return ok && v == value
}

// GetValueAt returns the value stored at index.
func (m *Map[V]) GetValueAt(index int) (V, bool) {
	pos := m.seek(index)
	if pos < len(m.spans) && m.spans[pos].lo <= index {
		return m.spans[pos].value, true
	}
	var zero V
	return zero, false
}

// AddValue marks index with value, replacing any previous value.
func (m *Map[V]) AddValue(index int, value V) {
	m.AddValues(index, 1, value)
}

// AddValues marks count indexes starting at start with value.
func (m *Map[V]) AddValues(start, count int, value V) {
	if count <= 0 || start < 0 {
		return
	}
	m.RemoveValues(start, count)
	pos := m.seek(start)
	m.splice(pos, pos, span[V]{lo: start, hi: start + count - 1, value: value})
	m.coalesce(pos)
	m.coalesce(pos - 1)
}

// RemoveValue unmarks index without shifting the indexes after it.
func (m *Map[V]) RemoveValue(index int) {
	m.RemoveValues(index, 1)
}

// RemoveValues unmarks count indexes starting at start without shifting.
func (m *Map[V]) RemoveValues(start, count int) {
	if count <= 0 {
		return
	}
	end := start + count - 1
	pos := m.seek(start)
	i := pos
	var keep []span[V]
	for i < len(m.spans) && m.spans[i].lo <= end {
		s := m.spans[i]
		if s.lo < start {
			keep = append(keep, span[V]{lo: s.lo, hi: start - 1, value: s.value})
		}
		if s.hi > end {
			keep = append(keep, span[V]{lo: end + 1, hi: s.hi, value: s.value})
		}
		i++
	}
	if i > pos {
		m.splice(pos, i, keep...)
	}
}

// InsertIndex opens an unmarked index at index, shifting later indexes up by one.
func (m *Map[V]) InsertIndex(index int) {
	m.InsertIndexes(index, 1)
}

// InsertIndexes opens count unmarked indexes at start, shifting later indexes up.
func (m *Map[V]) InsertIndexes(start, count int) {
	if count <= 0 {
		return
	}
	pos := m.seek(start)
	if pos < len(m.spans) && m.spans[pos].lo < start {
		s := m.spans[pos]
		left := span[V]{lo: s.lo, hi: start - 1, value: s.value}
		right := span[V]{lo: start + count, hi: s.hi + count, value: s.value}
		m.splice(pos, pos+1, left, right)
		pos += 2
	}
	for i := pos; i < len(m.spans); i++ {
		m.spans[i].lo += count
		m.spans[i].hi += count
	}
}

// InsertIndexAndValue opens index and marks it with value.
func (m *Map[V]) InsertIndexAndValue(index int, value V) {
	m.InsertIndexes(index, 1)
	m.AddValue(index, value)
}

// RemoveIndex deletes index, shifting later indexes down by one.
func (m *Map[V]) RemoveIndex(index int) {
	m.RemoveIndexes(index, 1)
}

// RemoveIndexes deletes count indexes at start, shifting later indexes down.
func (m *Map[V]) RemoveIndexes(start, count int) {
	if count <= 0 {
		return
	}
	m.RemoveValues(start, count)
	pos := sort.Search(len(m.spans), func(i int) bool { return m.spans[i].lo >= start })
	for i := pos; i < len(m.spans); i++ {
		m.spans[i].lo -= count
		m.spans[i].hi -= count
	}
	m.coalesce(pos - 1)
}

// GetIndexCount returns how many indexes in [lo, hi] are marked.
func (m *Map[V]) GetIndexCount(lo, hi int) int {
	if hi < lo {
		return 0
	}
	n := 0
	for pos := m.seek(lo); pos < len(m.spans) && m.spans[pos].lo <= hi; pos++ {
		s := m.spans[pos]
		n += min(s.hi, hi) - max(s.lo, lo) + 1
	}
	return n
}

// GetIndexCountValue returns how many indexes in [lo, hi] are marked with value.
func (m *Map[V]) GetIndexCountValue(lo, hi int, value V) int {
	if hi < lo {
		return 0
	}
	n := 0
	for pos := m.seek(lo); pos < len(m.spans) && m.spans[pos].lo <= hi; pos++ {
		s := m.spans[pos]
		if s.value == value {
			n += min(s.hi, hi) - max(s.lo, lo) + 1
		}
	}
	return n
}

// GetIndexCountBeforeGap walks forward from start and returns the number of
// marked indexes met before reaching the gap-th unmarked index (zero based).
func (m *Map[V]) GetIndexCountBeforeGap(start, gap int) int {
	n := 0
	cur := start
	for pos := m.seek(start); pos < len(m.spans); pos++ {
		s := m.spans[pos]
		lo := max(s.lo, cur)
		gaps := lo - cur
		if gap < gaps {
			break
		}
		gap -= gaps
		n += s.hi - lo + 1
		cur = s.hi + 1
	}
	return n
}

// GetNextIndex returns the first marked index after index, or End.
func (m *Map[V]) GetNextIndex(index int) int {
	pos := m.seek(index + 1)
	if pos == len(m.spans) {
		return End
	}
	return max(m.spans[pos].lo, index+1)
}

// GetPreviousIndex returns the last marked index before index, or None.
func (m *Map[V]) GetPreviousIndex(index int) int {
	pos := sort.Search(len(m.spans), func(i int) bool { return m.spans[i].lo >= index })
	if pos == 0 {
		return None
	}
	return min(m.spans[pos-1].hi, index-1)
}

// GetNextGap returns the first unmarked index after index.
func (m *Map[V]) GetNextGap(index int) int {
	cur := index + 1
	pos := m.seek(cur)
	for pos < len(m.spans) && m.spans[pos].lo <= cur {
		cur = m.spans[pos].hi + 1
		pos++
	}
	return cur
}

// GetPreviousGap returns the last unmarked index before index, or None.
func (m *Map[V]) GetPreviousGap(index int) int {
	for cur := index - 1; cur >= 0; {
		pos := m.seek(cur)
		if pos == len(m.spans) || m.spans[pos].lo > cur {
			return cur
		}
		cur = m.spans[pos].lo - 1
	}
	return None
}

// GetNthIndex returns the n-th marked index (zero based), or None.
func (m *Map[V]) GetNthIndex(n int) int {
	if n < 0 {
		return None
	}
	for _, s := range m.spans {
		if n < s.size() {
			return s.lo + n
		}
		n -= s.size()
	}
	return None
}

// FirstIndex returns the lowest marked index, or None.
func (m *Map[V]) FirstIndex() int {
	if len(m.spans) == 0 {
		return None
	}
	return m.spans[0].lo
}

// LastIndex returns the highest marked index, or None.
func (m *Map[V]) LastIndex() int {
	if len(m.spans) == 0 {
		return None
	}
	return m.spans[len(m.spans)-1].hi
}

// Indexes yields the marked indexes in ascending order.
func (m *Map[V]) Indexes() iter.Seq[int] {
	return func(yield func(int) bool) {
		for _, s := range m.spans {
			for i := s.lo; i <= s.hi; i++ {
				if !yield(i) {
					return
				}
			}
		}
	}
}

// All yields every marked index with its value in ascending order.
func (m *Map[V]) All() iter.Seq2[int, V] {
	return func(yield func(int, V) bool) {
		for _, s := range m.spans {
			for i := s.lo; i <= s.hi; i++ {
				if !yield(i, s.value) {
					return
				}
			}
		}
	}
}

// Clear unmarks everything.
func (m *Map[V]) Clear() {
	m.spans = m.spans[:0]
}

// Clone returns an independent copy.
func (m *Map[V]) Clone() *Map[V] {
	c := &Map[V]{spans: make([]span[V], len(m.spans))}
	copy(c.spans, m.spans)
	return c
}

func (m *Map[V]) splice(from, to int, with ...span[V]) {
	tail := append([]span[V](nil), m.spans[to:]...)
	m.spans = append(append(m.spans[:from], with...), tail...)
}

// coalesce merges the run at pos with its successor when they touch and agree.
func (m *Map[V]) coalesce(pos int) {
	if pos < 0 || pos+1 >= len(m.spans) {
		return
	}
	a, b := m.spans[pos], m.spans[pos+1]
	if a.hi+1 == b.lo && a.value == b.value {
		m.spans[pos].hi = b.hi
		m.splice(pos+1, pos+2)
	}
}
