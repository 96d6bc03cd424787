/*
export.go - Export finalization for collection periods

PURPOSE:
  Validates that every collectible of a period has been printed, then flips
  the period's export flag. The transition is one-way: there is no unexport,
  and an exported period's collectibles permanently leave the outstanding
  working set.

SEE ALSO:
  - query.go: FetchOutstanding excludes exported periods
  - importer.go: How collectibles enter a period
*/
package collections

import "context"

// Exporter finalizes collection periods.
type Exporter struct {
	store Store
}

// NewExporter creates an exporter backed by the given store.
func NewExporter(store Store) *Exporter {
	return &Exporter{store: store}
}

// MarkPrinted flags a collectible as printed. This is the data-entry write
// path that makes ExportPeriod's precondition satisfiable, and the only
// mutation a collectible sees after import.
func (e *Exporter) MarkPrinted(ctx context.Context, accountNumber int64) error {
	return e.store.MarkPrinted(ctx, accountNumber)
}

// ExportPeriod marks a period as exported once all of its collectibles have
// been printed. If any are still pending it returns an IncompleteExportError
// naming them and performs no mutation. Re-exporting an already exported
// period whose rows are all printed is a no-op.
func (e *Exporter) ExportPeriod(ctx context.Context, periodID int64) error {
	p, err := e.store.PeriodByID(ctx, periodID)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrPeriodNotFound
	}

	pending, err := e.store.UnprintedAccounts(ctx, periodID)
	if err != nil {
		return err
	}
	if len(pending) > 0 {
		return &IncompleteExportError{PeriodID: periodID, Pending: pending}
	}

	if p.Exported {
		return nil
	}
	return e.store.MarkPeriodExported(ctx, periodID)
}
