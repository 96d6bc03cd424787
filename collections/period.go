// period.go - Period lifecycle: creation, lookup and the "collection in
// progress" signal used by the presentation layer.

package collections

import (
	"context"
	"time"
)

// PeriodManager creates and looks up collection periods.
type PeriodManager struct {
	store Store
}

// NewPeriodManager creates a period manager backed by the given store.
func NewPeriodManager(store Store) *PeriodManager {
	return &PeriodManager{store: store}
}

// CreatePeriod inserts a new open period for the given date and returns the
// generated identifier.
func (m *PeriodManager) CreatePeriod(ctx context.Context, date time.Time) (int64, error) {
	return m.store.CreatePeriod(ctx, date)
}

// LatestPeriod returns the most recently created period, or nil if none
// exist. "Latest" is resolved by identifier order, never by date value.
func (m *PeriodManager) LatestPeriod(ctx context.Context) (*Period, error) {
	return m.store.LatestPeriod(ctx)
}

// LatestOpenPeriodDate returns the date of the latest period only while it
// has not been exported. The second return is false when no period exists or
// the latest one is already exported, which tells the presentation layer
// collection is no longer in progress.
func (m *PeriodManager) LatestOpenPeriodDate(ctx context.Context) (time.Time, bool, error) {
	p, err := m.store.LatestPeriod(ctx)
	if err != nil {
		return time.Time{}, false, err
	}
	if p == nil || p.Exported {
		return time.Time{}, false, nil
	}
	return p.Date, true, nil
}

// PeriodDateByID returns the date of the period with the given identifier.
// The second return is false when the identifier does not exist.
func (m *PeriodManager) PeriodDateByID(ctx context.Context, id int64) (time.Time, bool, error) {
	p, err := m.store.PeriodByID(ctx, id)
	if err != nil {
		return time.Time{}, false, err
	}
	if p == nil {
		return time.Time{}, false, nil
	}
	return p.Date, true, nil
}

// AllPeriods returns every period for administrative review.
func (m *PeriodManager) AllPeriods(ctx context.Context) ([]Period, error) {
	return m.store.ListPeriods(ctx)
}
