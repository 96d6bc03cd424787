/*
types.go - Core domain types for the collection workflow

PURPOSE:
  Value types shared across the collection engine: periods, collectible
  (loan account) records, credential records, and import run audit rows.
  These are plain data carriers; behavior lives in PeriodManager, Importer,
  Query, Exporter and Directory.

KEY TYPES:
  Period:      A collection window with an irreversible export flag.
  Collectible: A loan account's outstanding-balance record for a period.
  Consultant:  A field consultant credential/info record.
  Admin:       An administrator credential record.
  ImportRun:   Audit record of one batch import's outcome.

MONETARY FIELDS:
  All monetary amounts use shopspring/decimal. The store persists them as
  decimal strings; float arithmetic never touches balances.

SEE ALSO:
  - store.go: Persistence interface over these types
  - importer.go: How Collectible rows are created
*/
package collections

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period is an administrator-defined collection window. A batch of
// collectibles belongs to exactly one period, and a period transitions
// open -> exported exactly once.
type Period struct {
	ID       int64
	Date     time.Time
	Exported bool
}

// Collectible is a loan account record tracked for a specific period.
// AccountNumber is globally unique: a real-world account, not recreated per
// period. Rows are immutable after import except for the Printed flag.
type Collectible struct {
	AccountNumber    int64
	Name             string
	RemainingBalance decimal.Decimal
	// DueDate is carried verbatim from the batch; no date contract is
	// imposed on it.
	DueDate    string
	AmountPaid decimal.Decimal
	DailyDue   decimal.Decimal
	Printed    bool
	PeriodID   int64
}

// Consultant is a field consultant identity record.
type Consultant struct {
	ID            int64
	Name          string
	AdminPasscode string
	PasswordHash  string
	Area          string
}

// Admin is an administrator credential record.
type Admin struct {
	Username     string
	PasswordHash string
}

// ImportRun records the outcome of one batch import.
type ImportRun struct {
	ID        string
	PeriodID  int64
	Inserted  int
	Skipped   int
	Failed    int
	CreatedAt time.Time
}

// DateFormat is the calendar-date layout used for period and batch dates.
const DateFormat = "2006-01-02"
