package slotmap

import (
	"slices"
	"testing"
)

func marked(m *Map[int]) []int {
	return slices.Collect(m.Indexes())
}

func TestAddValueCoalesces(t *testing.T) {
	m := New[int]()
	m.AddValue(3, 1)
	m.AddValue(5, 1)
	m.AddValue(4, 1)
	if m.RangeCount() != 1 {
		t.Errorf("expected 1 range, got %d", m.RangeCount())
	}
	m.AddValue(4, 2)
	if m.RangeCount() != 3 {
		t.Errorf("expected 3 ranges after overwrite, got %d", m.RangeCount())
	}
	if v, ok := m.GetValueAt(4); !ok || v != 2 {
		t.Errorf("expected value 2 at 4, got %d (%v)", v, ok)
	}
	if m.IndexCount() != 3 {
		t.Errorf("expected 3 marked indexes, got %d", m.IndexCount())
	}
}

func TestOutOfRangeIsNotPresent(t *testing.T) {
	m := New[bool]()
	m.AddValues(0, 5, true)
	for _, idx := range []int{-10, -1, 5, 1 << 40} {
		if m.Contains(idx) {
			t.Errorf("expected %d to be absent", idx)
		}
		if _, ok := m.GetValueAt(idx); ok {
			t.Errorf("expected no value at %d", idx)
		}
	}
}

func TestNextPreviousRoundTrip(t *testing.T) {
	m := New[int]()
	for _, idx := range []int{0, 1, 2, 7, 11, 12, 40} {
		m.AddValue(idx, idx%3)
	}
	for s := range m.Indexes() {
		next := m.GetNextIndex(s)
		if next == End {
			continue
		}
		if got := m.GetPreviousIndex(next); got != s {
			t.Errorf("expected previous(next(%d)) == %d, got %d", s, s, got)
		}
	}
	if m.GetNextIndex(40) != End {
		t.Errorf("expected End after last index")
	}
	if m.GetPreviousIndex(0) != None {
		t.Errorf("expected None before first index")
	}
	if got := m.GetNextIndex(3); got != 7 {
		t.Errorf("expected next(3) == 7, got %d", got)
	}
	if got := m.GetPreviousIndex(11); got != 7 {
		t.Errorf("expected previous(11) == 7, got %d", got)
	}
}

func TestRemovedIsNotContained(t *testing.T) {
	m := New[int]()
	m.AddValues(10, 10, 1)
	m.RemoveValue(15)
	if m.Contains(15) {
		t.Errorf("expected 15 to be removed")
	}
	if !m.Contains(14) || !m.Contains(16) {
		t.Errorf("expected neighbours to survive")
	}
	m.RemoveValues(0, 100)
	if !m.IsEmpty() {
		t.Errorf("expected empty map, got %v", marked(m))
	}
}

func TestInsertIndexesShifts(t *testing.T) {
	m := New[int]()
	m.AddValues(2, 3, 1) // 2,3,4
	m.AddValue(10, 2)

	m.InsertIndexes(3, 2)
	want := []int{2, 5, 6, 12}
	if got := marked(m); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if v, _ := m.GetValueAt(12); v != 2 {
		t.Errorf("expected value 2 to move with its index, got %d", v)
	}

	m.InsertIndexAndValue(0, 9)
	want = []int{0, 3, 6, 7, 13}
	if got := marked(m); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestRemoveIndexesShiftsAndMerges(t *testing.T) {
	m := New[int]()
	m.AddValues(0, 3, 1)
	m.AddValues(5, 3, 1)
	m.RemoveIndexes(3, 2)
	if m.RangeCount() != 1 {
		t.Errorf("expected merged range, got %d ranges", m.RangeCount())
	}
	want := []int{0, 1, 2, 3, 4, 5}
	if got := marked(m); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	m.RemoveIndex(0)
	if got := m.LastIndex(); got != 4 {
		t.Errorf("expected last index 4, got %d", got)
	}
}

func TestGetIndexCount(t *testing.T) {
	m := New[int]()
	m.AddValues(0, 5, 1)
	m.AddValues(10, 5, 2)
	tests := []struct {
		lo, hi int
		want   int
	}{
		{0, 20, 10},
		{3, 11, 4},
		{5, 9, 0},
		{12, 12, 1},
		{9, 3, 0},
	}
	for _, tt := range tests {
		if got := m.GetIndexCount(tt.lo, tt.hi); got != tt.want {
			t.Errorf("GetIndexCount(%d, %d): expected %d, got %d", tt.lo, tt.hi, tt.want, got)
		}
	}
	if got := m.GetIndexCountValue(0, 20, 2); got != 5 {
		t.Errorf("expected 5 indexes with value 2, got %d", got)
	}
}

func TestGaps(t *testing.T) {
	m := New[int]()
	m.AddValues(0, 3, 1)
	m.AddValues(3, 2, 2) // adjacent run with a different value
	m.AddValue(7, 1)

	if got := m.GetNextGap(0); got != 5 {
		t.Errorf("expected next gap 5, got %d", got)
	}
	if got := m.GetNextGap(5); got != 6 {
		t.Errorf("expected next gap 6, got %d", got)
	}
	if got := m.GetPreviousGap(8); got != 6 {
		t.Errorf("expected previous gap 6, got %d", got)
	}
	if got := m.GetPreviousGap(4); got != None {
		t.Errorf("expected no previous gap, got %d", got)
	}
}

func TestGetIndexCountBeforeGap(t *testing.T) {
	// Headers at every eleventh slot: 0, 11, 22 ...
	m := New[int]()
	for i := 0; i < 10; i++ {
		m.AddValue(i*11, 0)
	}
	for row := 0; row < 100; row++ {
		want := row + row/10 + 1
		if got := row + m.GetIndexCountBeforeGap(0, row); got != want {
			t.Errorf("row %d: expected slot %d, got %d", row, want, got)
		}
	}
}

func TestGetNthIndex(t *testing.T) {
	m := New[int]()
	m.AddValues(4, 2, 1)
	m.AddValue(9, 1)
	if got := m.GetNthIndex(2); got != 9 {
		t.Errorf("expected 9, got %d", got)
	}
	if got := m.GetNthIndex(3); got != None {
		t.Errorf("expected None, got %d", got)
	}
}

func TestContainsAll(t *testing.T) {
	m := New[int]()
	m.AddValues(0, 3, 1)
	m.AddValues(3, 3, 2)
	if !m.ContainsAll(1, 5) {
		t.Errorf("expected [1,5] to be fully marked")
	}
	if m.ContainsAll(1, 6) {
		t.Errorf("expected [1,6] to have a hole")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := New[int]()
	m.AddValues(0, 4, 1)
	c := m.Clone()
	c.RemoveIndexes(0, 2)
	if m.IndexCount() != 4 {
		t.Errorf("expected original untouched, got %d", m.IndexCount())
	}
	if c.IndexCount() != 2 {
		t.Errorf("expected clone to shrink, got %d", c.IndexCount())
	}
}
