/*
store.go - Persistence interface for the collection engine

PURPOSE:
  Defines the interface between the domain logic and the database.
  The store exclusively owns all rows; PeriodManager, Importer, Query,
  Exporter and Directory hold no state across calls and treat the store
  as the single source of truth.

CONTRACT NOTES:
  - Each method is an implicit short-lived transaction. The Importer's
    per-row inserts are independent commits; a crash mid-import leaves
    the rows already written plus the period row.
  - InsertCollectible has insert-or-ignore semantics on account_number:
    it reports whether a row was actually written, never overwrites.
  - MarkPeriodExported is the only period mutation and is one-way.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - collections/store/memory.go: In-memory for testing

SEE ALSO:
  - period.go, importer.go, query.go, export.go, users.go: Consumers
*/
package collections

import (
	"context"
	"time"
)

// Store handles persistence for periods, collectibles, credentials and
// import run audit rows.
type Store interface {
	// CreatePeriod inserts a new open period for the given calendar date
	// and returns the generated identifier.
	CreatePeriod(ctx context.Context, date time.Time) (int64, error)

	// PeriodByID returns the period with the given identifier, or nil if
	// it does not exist.
	PeriodByID(ctx context.Context, id int64) (*Period, error)

	// LatestPeriod returns the most recently created period by identifier
	// order, or nil if no periods exist. Identifier order is authoritative:
	// dates are user-supplied and not guaranteed monotonic.
	LatestPeriod(ctx context.Context) (*Period, error)

	// ListPeriods returns all periods. Ordering is unspecified.
	ListPeriods(ctx context.Context) ([]Period, error)

	// MarkPeriodExported sets the period's export flag. One-way.
	MarkPeriodExported(ctx context.Context, id int64) error

	// InsertCollectible writes a collectible unless its account number
	// already exists anywhere in the store. Returns true if a row was
	// inserted, false if the insert was ignored as a duplicate.
	InsertCollectible(ctx context.Context, c Collectible) (bool, error)

	// CollectibleByAccount returns the row for an account, or nil.
	CollectibleByAccount(ctx context.Context, accountNumber int64) (*Collectible, error)

	// ListOutstanding returns collectibles that are unprinted AND belong
	// to a period that has not been exported.
	ListOutstanding(ctx context.Context) ([]Collectible, error)

	// ListCollectiblesByPeriod returns all collectibles for a period.
	ListCollectiblesByPeriod(ctx context.Context, periodID int64) ([]Collectible, error)

	// ListCollectibles returns every collectible row.
	ListCollectibles(ctx context.Context) ([]Collectible, error)

	// UnprintedAccounts returns the account numbers of a period's
	// collectibles that have not been marked printed.
	UnprintedAccounts(ctx context.Context, periodID int64) ([]int64, error)

	// MarkPrinted flags a collectible as printed. Returns
	// ErrCollectibleNotFound if the account does not exist.
	MarkPrinted(ctx context.Context, accountNumber int64) error

	// AdminByUsername returns the admin credential record, or nil.
	AdminByUsername(ctx context.Context, username string) (*Admin, error)

	// AddConsultant inserts a consultant record and returns its identifier.
	AddConsultant(ctx context.Context, c Consultant) (int64, error)

	// ConsultantByName returns the consultant record, or nil.
	ConsultantByName(ctx context.Context, name string) (*Consultant, error)

	// ListConsultants returns all consultant records.
	ListConsultants(ctx context.Context) ([]Consultant, error)

	// SaveImportRun records the outcome of a batch import.
	SaveImportRun(ctx context.Context, run ImportRun) error

	// ListImportRuns returns import runs, most recent first.
	ListImportRuns(ctx context.Context) ([]ImportRun, error)
}
