/*
importer.go - Batch import of collectible records

PURPOSE:
  Parses a delimited text batch, validates its shape, assigns each record
  to a collection period, and upserts rows without duplicating existing
  account numbers.

ALGORITHM:
  1. Create a fresh period for the target date. Import never appends to an
     existing period. A storage failure here aborts the whole import.
  2. Split content into non-empty trimmed lines; require a header plus at
     least one data row.
  3. Validate the header against the fixed eight-name set. Extra headers
     are tolerated and ignored; any missing name is a hard abort that lists
     every missing header.
  4. Parse each data row into a typed record at this boundary: field count
     must match the header, numerics must parse, monetary values must be
     non-negative. A row's period_id of "0" resolves to the period created
     in step 1.
  5. Insert each record with insert-or-ignore semantics on account_number.

FAILURE POLICY:
  Steps 1-3 are hard aborts. Per-row parse and storage failures are logged
  and skipped; the batch continues. The result reports inserted, skipped
  duplicate and failed row counts so callers can surface partial outcomes
  instead of a bare success flag.

BATCH FORMAT:
  Plain text, line-oriented, comma-separated, no quoting or escaping.
  Header line mandatory, order-independent.

SEE ALSO:
  - period.go: Period creation
  - store.go: InsertCollectible contract
*/
package collections

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// requiredHeaders is the fixed header set every batch must carry.
var requiredHeaders = []string{
	"account_number", "name", "remaining_balance", "due_date",
	"amount_paid", "daily_due", "is_printed", "period_id",
}

// Importer ingests delimited text batches of collectible records.
type Importer struct {
	periods *PeriodManager
	store   Store
	log     *logrus.Logger
}

// NewImporter creates an importer backed by the given store.
func NewImporter(store Store, log *logrus.Logger) *Importer {
	if log == nil {
		log = logrus.New()
	}
	return &Importer{
		periods: NewPeriodManager(store),
		store:   store,
		log:     log,
	}
}

// RowError records one data row that could not be imported.
type RowError struct {
	Line   int
	Reason string
}

// ImportResult reports the outcome of one batch import.
type ImportResult struct {
	RunID             string
	PeriodID          int64
	Inserted          int
	SkippedDuplicates int
	FailedRows        []RowError
}

// Import creates a new period for targetDate and ingests the batch into it.
// Structural faults (too few lines, missing headers) abort with a
// FormatError; the period created in step 1 still exists with zero rows
// attached. Per-row faults never abort the batch.
func (imp *Importer) Import(ctx context.Context, content string, targetDate time.Time) (*ImportResult, error) {
	periodID, err := imp.periods.CreatePeriod(ctx, targetDate)
	if err != nil {
		return nil, fmt.Errorf("failed to create period: %w", err)
	}

	lines := splitLines(content)
	if len(lines) < 2 {
		return nil, &FormatError{Reason: "empty or insufficient data"}
	}

	header := splitFields(lines[0])
	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}

	var missing []string
	for _, name := range requiredHeaders {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &FormatError{MissingHeaders: missing}
	}

	result := &ImportResult{
		RunID:    uuid.NewString(),
		PeriodID: periodID,
	}

	for i, line := range lines[1:] {
		lineNo := i + 2 // 1-based, after the header line

		row, err := parseRow(line, index, len(header), periodID)
		if err != nil {
			imp.log.WithFields(logrus.Fields{
				"run_id": result.RunID,
				"line":   lineNo,
			}).WithError(err).Warn("skipping malformed batch row")
			result.FailedRows = append(result.FailedRows, RowError{Line: lineNo, Reason: err.Error()})
			continue
		}

		inserted, err := imp.store.InsertCollectible(ctx, row)
		if err != nil {
			imp.log.WithFields(logrus.Fields{
				"run_id":  result.RunID,
				"line":    lineNo,
				"account": row.AccountNumber,
			}).WithError(err).Warn("skipping row: insert failed")
			result.FailedRows = append(result.FailedRows, RowError{Line: lineNo, Reason: err.Error()})
			continue
		}

		if inserted {
			result.Inserted++
		} else {
			result.SkippedDuplicates++
		}
	}

	run := ImportRun{
		ID:        result.RunID,
		PeriodID:  periodID,
		Inserted:  result.Inserted,
		Skipped:   result.SkippedDuplicates,
		Failed:    len(result.FailedRows),
		CreatedAt: time.Now().UTC(),
	}
	if err := imp.store.SaveImportRun(ctx, run); err != nil {
		// The batch itself succeeded; losing the audit row is not fatal.
		imp.log.WithField("run_id", run.ID).WithError(err).Warn("failed to record import run")
	}

	return result, nil
}

// parseRow converts one data line into a typed Collectible. This is the
// single validation boundary: past here the record is an immutable value.
func parseRow(line string, index map[string]int, want int, periodID int64) (Collectible, error) {
	values := splitFields(line)
	if len(values) != want {
		return Collectible{}, fmt.Errorf("expected %d fields, got %d", want, len(values))
	}

	field := func(name string) string { return values[index[name]] }

	account, err := strconv.ParseInt(field("account_number"), 10, 64)
	if err != nil {
		return Collectible{}, fmt.Errorf("invalid account_number %q", field("account_number"))
	}

	balance, err := parseMonetary("remaining_balance", field("remaining_balance"))
	if err != nil {
		return Collectible{}, err
	}
	paid, err := parseMonetary("amount_paid", field("amount_paid"))
	if err != nil {
		return Collectible{}, err
	}
	daily, err := parseMonetary("daily_due", field("daily_due"))
	if err != nil {
		return Collectible{}, err
	}

	printed, err := strconv.ParseInt(field("is_printed"), 10, 64)
	if err != nil {
		return Collectible{}, fmt.Errorf("invalid is_printed %q", field("is_printed"))
	}

	pid, err := strconv.ParseInt(field("period_id"), 10, 64)
	if err != nil {
		return Collectible{}, fmt.Errorf("invalid period_id %q", field("period_id"))
	}
	// Sentinel 0 means "attach to the period created by this import".
	// Explicit non-zero values pin the row to a historical period.
	if pid == 0 {
		pid = periodID
	}

	return Collectible{
		AccountNumber:    account,
		Name:             field("name"),
		RemainingBalance: balance,
		DueDate:          field("due_date"),
		AmountPaid:       paid,
		DailyDue:         daily,
		Printed:          printed != 0,
		PeriodID:         pid,
	}, nil
}

func parseMonetary(name, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s %q", name, raw)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("negative %s %q", name, raw)
	}
	return d, nil
}

// splitLines returns the non-empty, trimmed lines of the batch.
func splitLines(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// splitFields splits a line on commas and trims each field. The batch format
// has no quoting or escaping, so plain splitting is the whole contract.
func splitFields(line string) []string {
	fields := strings.Split(line, ",")
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}
