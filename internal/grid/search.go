package grid

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"gridview/internal/column"
	"gridview/internal/selection"
	"gridview/internal/source"
)

// CellText formats the value of col on slot, or returns "" for headers.
func (g *Grid) CellText(slot int, col *column.Column) string {
	it, ok := g.ItemAt(slot)
	if !ok || col == nil || col.Binding == "" {
		return ""
	}
	v, _ := it.Get(col.Binding)
	return source.Format(v)
}

type columnTexts struct {
	g    *Grid
	col  *column.Column
	rows int
}

func (c columnTexts) String(i int) string {
	return c.g.CellText(c.g.SlotFromRowIndex(i), c.col)
}

func (c columnTexts) Len() int { return c.rows }

// Find fuzzy-matches query against the loaded values of the current
// column, or the first column without currency, and returns the matching
// slots best match first.
func (g *Grid) Find(query string) []int {
	query = strings.TrimSpace(query)
	col := g.CurrentColumn()
	if col == nil {
		col = g.edgeColumn(false)
	}
	if query == "" || col == nil || g.items == nil {
		return nil
	}
	matches := fuzzy.FindFrom(query, columnTexts{g: g, col: col, rows: g.rowCount})
	slots := make([]int, 0, len(matches))
	for _, m := range matches {
		slots = append(slots, g.SlotFromRowIndex(m.Index))
	}
	return slots
}

// GoTo selects slot, keeping the current column, and scrolls it into view.
func (g *Grid) GoTo(slot int) bool {
	col := g.current.ColumnIndex
	if g.cols.At(col) == nil {
		col = g.firstColumnIndex()
	}
	g.expandTo(slot)
	return g.UpdateSelectionAndCurrency(col, slot, selection.SelectCurrent, true)
}
