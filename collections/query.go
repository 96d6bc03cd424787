// query.go - Filtered reads served to the collection screens. Ordering is
// insertion order; consumers needing a stable display order sort client-side.

package collections

import "context"

// Query exposes filtered collectible reads to the presentation layer.
type Query struct {
	store Store
}

// NewQuery creates a query layer backed by the given store.
func NewQuery(store Store) *Query {
	return &Query{store: store}
}

// FetchOutstanding returns the active, unprocessed working set: rows that
// are unprinted and whose owning period has not been exported.
func (q *Query) FetchOutstanding(ctx context.Context) ([]Collectible, error) {
	return q.store.ListOutstanding(ctx)
}

// FetchAllForPeriod returns every collectible attached to a period.
func (q *Query) FetchAllForPeriod(ctx context.Context, periodID int64) ([]Collectible, error) {
	return q.store.ListCollectiblesByPeriod(ctx, periodID)
}

// FetchAll returns every collectible row, unfiltered.
func (q *Query) FetchAll(ctx context.Context) ([]Collectible, error) {
	return q.store.ListCollectibles(ctx)
}
