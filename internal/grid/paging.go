package grid

import (
	"context"
	"math"

	"gridview/internal/source"
)

// NeedsMoreItems reports how many items to request when the window is
// within the loading threshold of the end and the source has more. It
// marks a load as in flight; call LoadCompleted when it finishes.
func (g *Grid) NeedsMoreItems() (int, bool) {
	paged, ok := g.items.(source.PagedSource)
	if !ok || g.loading || !paged.HasMoreItems() {
		return 0, false
	}
	if g.vp.CellsHeight() <= 0 || g.vp.RemainingPages() > g.loadThreshold {
		return 0, false
	}
	rowHeight := math.Max(g.vp.RowHeightEstimate(), 1)
	n := int(math.Ceil(g.fetchPages * g.vp.CellsHeight() / rowHeight))
	g.loading = true
	g.log.Debug("requesting more items", "count", n, "remaining_pages", g.vp.RemainingPages())
	return max(n, 1), true
}

// LoadCompleted clears the in-flight load and records its error.
func (g *Grid) LoadCompleted(err error) {
	g.loading = false
	if err != nil {
		g.fail("load items", err)
	}
}

// IsLoading reports whether a load is in flight.
func (g *Grid) IsLoading() bool { return g.loading }

// LoadMoreItems loads synchronously when NeedsMoreItems says so and
// returns how many items arrived.
func (g *Grid) LoadMoreItems(ctx context.Context) (int, error) {
	n, ok := g.NeedsMoreItems()
	if !ok {
		return 0, nil
	}
	got, err := g.items.(source.PagedSource).LoadMoreItems(ctx, n)
	g.LoadCompleted(err)
	return got, err
}
