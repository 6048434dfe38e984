package grid

import (
	"strings"

	"gridview/internal/edit"
	"gridview/internal/selection"
	"gridview/internal/slotmap"
	"gridview/internal/source"
)

// GroupInfo is a group header slot.
type GroupInfo struct {
	Key   string
	Level int
	// Count is the number of items in the group.
	Count int
	Slot  int
	// LastSubItemSlot is the last slot covered by the group, headers of
	// nested groups included.
	LastSubItemSlot int
	Collapsed       bool

	path string
}

// SlotCount counts data rows and group headers, collapsed or not.
func (g *Grid) SlotCount() int { return g.rowCount + g.headers.IndexCount() }

// VisibleSlotCount counts the slots not hidden by a collapsed group.
func (g *Grid) VisibleSlotCount() int {
	n := g.SlotCount()
	if n == 0 {
		return 0
	}
	return g.VisibleSlotCountBetween(0, n-1)
}

func (g *Grid) IsGroupHeader(slot int) bool { return g.headers.Contains(slot) }

// IsSlotVisible reports whether slot exists and no collapsed group hides it.
func (g *Grid) IsSlotVisible(slot int) bool {
	return slot >= 0 && slot < g.SlotCount() && !g.hidden.Contains(slot)
}

func (g *Grid) NextVisibleSlot(slot int) int {
	next := g.hidden.GetNextGap(max(slot, -1))
	if next >= g.SlotCount() {
		return -1
	}
	return next
}

func (g *Grid) PreviousVisibleSlot(slot int) int {
	n := g.SlotCount()
	if n == 0 {
		return -1
	}
	return g.hidden.GetPreviousGap(min(slot, n))
}

func (g *Grid) VisibleSlotCountBetween(lo, hi int) int {
	lo, hi = max(lo, 0), min(hi, g.SlotCount()-1)
	if hi < lo {
		return 0
	}
	return hi - lo + 1 - g.hidden.GetIndexCount(lo, hi)
}

func (g *Grid) VisibleHeaderCountBetween(lo, hi int) int {
	n := 0
	for s := g.headers.GetNextIndex(lo - 1); s != slotmap.End && s <= hi; s = g.headers.GetNextIndex(s) {
		if !g.hidden.Contains(s) {
			n++
		}
	}
	return n
}

// SlotFromRowIndex returns the slot of the row-th item.
func (g *Grid) SlotFromRowIndex(row int) int {
	if row < 0 {
		return -1
	}
	return row + g.headers.GetIndexCountBeforeGap(0, row)
}

// RowIndexFromSlot returns the item index at slot, or -1 for headers.
func (g *Grid) RowIndexFromSlot(slot int) int {
	if slot < 0 || slot >= g.SlotCount() || g.headers.Contains(slot) {
		return -1
	}
	return slot - g.headers.GetIndexCount(0, slot)
}

// ItemAt returns the item shown at slot.
func (g *Grid) ItemAt(slot int) (source.Item, bool) {
	row := g.RowIndexFromSlot(slot)
	if row < 0 || g.items == nil {
		return nil, false
	}
	it := g.items.At(row)
	return it, it != nil
}

// GroupAt returns the group whose header is at slot.
func (g *Grid) GroupAt(slot int) (*GroupInfo, bool) {
	return g.headers.GetValueAt(slot)
}

// Groups returns the group headers in slot order.
func (g *Grid) Groups() []*GroupInfo {
	var out []*GroupInfo
	for _, info := range g.headers.All() {
		out = append(out, info)
	}
	return out
}

// ParentGroup returns the innermost group covering slot.
func (g *Grid) ParentGroup(slot int) (*GroupInfo, bool) {
	for s := g.headers.GetPreviousIndex(slot); s != slotmap.None; s = g.headers.GetPreviousIndex(s) {
		if info, _ := g.headers.GetValueAt(s); info.LastSubItemSlot >= slot {
			return info, true
		}
	}
	return nil, false
}

func (g *Grid) rebuildSlots() {
	g.headers.Clear()
	g.hidden.Clear()
	g.rowCount = 0
	if g.items == nil {
		return
	}
	g.rowCount = g.items.Len()
	gs, ok := g.items.(source.GroupSource)
	if !ok {
		return
	}
	groups := gs.Groups()
	slot := 0
	var open []*GroupInfo
	var path []string
	for i, gr := range groups {
		for len(open) > 0 && open[len(open)-1].Level >= gr.Level {
			open[len(open)-1].LastSubItemSlot = slot - 1
			open = open[:len(open)-1]
		}
		path = append(path[:min(gr.Level, len(path))], gr.Key)
		info := &GroupInfo{Key: gr.Key, Level: gr.Level, Count: gr.Count, Slot: slot, path: strings.Join(path, "\x00")}
		g.headers.AddValue(slot, info)
		open = append(open, info)
		slot++
		if i+1 == len(groups) || groups[i+1].Level <= gr.Level {
			slot += gr.Count
		}
	}
	for _, info := range open {
		info.LastSubItemSlot = slot - 1
	}
	for _, info := range g.Groups() {
		if g.collapsed[info.path] && !g.hidden.Contains(info.Slot) {
			g.hide(info)
		} else if g.collapsed[info.path] {
			info.Collapsed = true
		}
	}
}

func (g *Grid) hide(info *GroupInfo) {
	info.Collapsed = true
	if n := info.LastSubItemSlot - info.Slot; n > 0 {
		g.hidden.AddValues(info.Slot+1, n, true)
	}
}

// shiftGroups moves group bounds after count rows were inserted at slot.
func (g *Grid) shiftGroups(slot, count int) {
	for _, info := range g.headers.All() {
		if info.Slot >= slot {
			info.Slot += count
		}
		if info.LastSubItemSlot >= slot {
			info.LastSubItemSlot += count
		}
	}
}

// shrinkGroups moves group bounds after count rows were removed at slot.
func (g *Grid) shrinkGroups(slot, count int) {
	for _, info := range g.headers.All() {
		if info.Slot >= slot {
			info.Slot -= count
		}
		switch {
		case info.LastSubItemSlot >= slot+count:
			info.LastSubItemSlot -= count
		case info.LastSubItemSlot >= slot:
			info.LastSubItemSlot = slot - 1
		}
	}
}

// CollapseGroup hides the slots of the group headed at slot. When the
// current cell is inside, its edit is committed and currency moves to the
// header; a failed commit vetoes the collapse.
func (g *Grid) CollapseGroup(slot int) bool {
	info, ok := g.headers.GetValueAt(slot)
	if !ok {
		return false
	}
	if info.Collapsed {
		return true
	}
	inside := func(s int) bool { return s > info.Slot && s <= info.LastSubItemSlot }
	if es := g.edit.Slot(); g.edit.State() != edit.Browsing && inside(es) {
		if !g.commitEditing() {
			return false
		}
	}
	if inside(g.current.Slot) {
		if !g.UpdateSelectionAndCurrency(g.current.ColumnIndex, info.Slot, selection.None, false) {
			return false
		}
	}
	g.collapsed[info.path] = true
	if !g.hidden.Contains(info.Slot) {
		g.hide(info)
	} else {
		info.Collapsed = true
	}
	g.vp.Refresh()
	return true
}

// ExpandGroup shows the slots of the group headed at slot. Nested groups
// that are collapsed stay collapsed.
func (g *Grid) ExpandGroup(slot int) bool {
	info, ok := g.headers.GetValueAt(slot)
	if !ok {
		return false
	}
	if !info.Collapsed {
		return true
	}
	info.Collapsed = false
	delete(g.collapsed, info.path)
	if g.hidden.Contains(info.Slot) {
		// An outer collapsed group still hides everything.
		return true
	}
	if n := info.LastSubItemSlot - info.Slot; n > 0 {
		g.hidden.RemoveValues(info.Slot+1, n)
	}
	for s := g.headers.GetNextIndex(info.Slot); s != slotmap.End && s <= info.LastSubItemSlot; {
		sub, _ := g.headers.GetValueAt(s)
		if sub.Collapsed {
			g.hide(sub)
			s = g.headers.GetNextIndex(sub.LastSubItemSlot)
			continue
		}
		s = g.headers.GetNextIndex(s)
	}
	g.vp.Refresh()
	return true
}

// ToggleGroup collapses an expanded group and expands a collapsed one.
func (g *Grid) ToggleGroup(slot int) bool {
	info, ok := g.headers.GetValueAt(slot)
	if !ok {
		return false
	}
	if info.Collapsed {
		return g.ExpandGroup(slot)
	}
	return g.CollapseGroup(slot)
}

// expandTo expands every collapsed group hiding slot.
func (g *Grid) expandTo(slot int) {
	for g.hidden.Contains(slot) {
		var outer *GroupInfo
		for s := g.headers.GetPreviousIndex(slot); s != slotmap.None; s = g.headers.GetPreviousIndex(s) {
			info, _ := g.headers.GetValueAt(s)
			if info.Collapsed && info.LastSubItemSlot >= slot && !g.hidden.Contains(info.Slot) {
				outer = info
				break
			}
		}
		if outer == nil {
			return
		}
		g.ExpandGroup(outer.Slot)
	}
}
