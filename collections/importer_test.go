package collections_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eclc/collection-engine/collections"
	"github.com/eclc/collection-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestImporter(t *testing.T) (*collections.Importer, *sqlite.Store) {
	store := newTestStore(t)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel) // keep test output quiet
	return collections.NewImporter(store, log), store
}

const batchHeader = "account_number,name,remaining_balance,due_date,amount_paid,daily_due,is_printed,period_id"

var jan1 = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// =============================================================================
// IMPORT TESTS
// =============================================================================

func TestImporter_SingleRow(t *testing.T) {
	// GIVEN: A fresh store and a minimal valid batch
	// WHEN: Importing against target date 2024-01-01
	// THEN: One new period exists and the row is attached to it

	imp, store := newTestImporter(t)
	ctx := context.Background()

	batch := batchHeader + "\n111,Ann,100.0,2024-01-01,0,10,0,0"

	result, err := imp.Import(ctx, batch, jan1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 0, result.SkippedDuplicates)
	assert.Empty(t, result.FailedRows)
	assert.NotEmpty(t, result.RunID)

	periods, err := store.ListPeriods(ctx)
	require.NoError(t, err)
	require.Len(t, periods, 1)
	assert.Equal(t, result.PeriodID, periods[0].ID)
	assert.False(t, periods[0].Exported)

	c, err := store.CollectibleByAccount(ctx, 111)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "Ann", c.Name)
	assert.Equal(t, result.PeriodID, c.PeriodID)
	assert.True(t, decimal.RequireFromString("100.0").Equal(c.RemainingBalance))
	assert.False(t, c.Printed)
}

func TestImporter_HeaderOrderIndependent(t *testing.T) {
	// Headers may arrive in any order; extra columns are ignored.

	imp, store := newTestImporter(t)
	ctx := context.Background()

	batch := "name,account_number,period_id,is_printed,daily_due,amount_paid,due_date,remaining_balance,notes\n" +
		"Jose Rizal,123456789,0,0,50.00,0.00,2024-12-22,2500.00,ignore me"

	result, err := imp.Import(ctx, batch, jan1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)

	c, err := store.CollectibleByAccount(ctx, 123456789)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "Jose Rizal", c.Name)
	assert.Equal(t, "2024-12-22", c.DueDate)
	assert.True(t, decimal.RequireFromString("50.00").Equal(c.DailyDue))
}

func TestImporter_MissingHeaders(t *testing.T) {
	// GIVEN: A batch missing several required headers
	// WHEN: Importing
	// THEN: The import aborts naming every missing header and persists no rows;
	//       the period created before parsing still exists with nothing attached

	imp, store := newTestImporter(t)
	ctx := context.Background()

	batch := "account_number,name,remaining_balance\n111,Ann,100.0"

	_, err := imp.Import(ctx, batch, jan1)
	require.Error(t, err)
	assert.ErrorIs(t, err, collections.ErrInvalidBatch)

	var format *collections.FormatError
	require.ErrorAs(t, err, &format)
	assert.ElementsMatch(t,
		[]string{"due_date", "amount_paid", "daily_due", "is_printed", "period_id"},
		format.MissingHeaders)

	all, err := store.ListCollectibles(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	periods, err := store.ListPeriods(ctx)
	require.NoError(t, err)
	require.Len(t, periods, 1)

	attached, err := store.ListCollectiblesByPeriod(ctx, periods[0].ID)
	require.NoError(t, err)
	assert.Empty(t, attached)
}

func TestImporter_InsufficientData(t *testing.T) {
	imp, _ := newTestImporter(t)
	ctx := context.Background()

	for _, content := range []string{"", "\n\n  \n", batchHeader} {
		_, err := imp.Import(ctx, content, jan1)
		assert.ErrorIs(t, err, collections.ErrInvalidBatch)
	}
}

func TestImporter_DuplicateAccount_NoOverwrite(t *testing.T) {
	// GIVEN: Account 111 already imported as "Ann"
	// WHEN: A later batch carries 111 again with different fields
	// THEN: The row is skipped as a duplicate and the original is untouched

	imp, store := newTestImporter(t)
	ctx := context.Background()

	_, err := imp.Import(ctx, batchHeader+"\n111,Ann,100.0,2024-01-01,0,10,0,0", jan1)
	require.NoError(t, err)

	result, err := imp.Import(ctx, batchHeader+"\n111,Mallory,999.0,2024-02-02,5,20,1,0", jan1.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 1, result.SkippedDuplicates)

	c, err := store.CollectibleByAccount(ctx, 111)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "Ann", c.Name)
	assert.True(t, decimal.RequireFromString("100.0").Equal(c.RemainingBalance))
	assert.False(t, c.Printed)
}

func TestImporter_PeriodAttachment(t *testing.T) {
	// Rows with period_id "0" attach to this import's period; explicit
	// non-zero values pin the row to the named historical period.

	imp, store := newTestImporter(t)
	ctx := context.Background()

	first, err := imp.Import(ctx, batchHeader+"\n111,Ann,100.0,2024-01-01,0,10,0,0", jan1)
	require.NoError(t, err)

	batch := batchHeader + "\n" +
		"222,Bea,200.0,2024-02-01,0,10,0,0\n" +
		"333,Cid,300.0,2024-02-01,0,10,0," + itoa(first.PeriodID)
	second, err := imp.Import(ctx, batch, jan1.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.NotEqual(t, first.PeriodID, second.PeriodID)

	bea, err := store.CollectibleByAccount(ctx, 222)
	require.NoError(t, err)
	assert.Equal(t, second.PeriodID, bea.PeriodID)

	cid, err := store.CollectibleByAccount(ctx, 333)
	require.NoError(t, err)
	assert.Equal(t, first.PeriodID, cid.PeriodID)
}

func TestImporter_ColumnCountMismatch_RowSkipped(t *testing.T) {
	// A row with the wrong field count fails individually; the batch continues.

	imp, store := newTestImporter(t)
	ctx := context.Background()

	batch := batchHeader + "\n" +
		"111,Ann,100.0,2024-01-01,0,10,0\n" + // one field short
		"222,Bea,200.0,2024-01-01,0,10,0,0"

	result, err := imp.Import(ctx, batch, jan1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	require.Len(t, result.FailedRows, 1)
	assert.Equal(t, 2, result.FailedRows[0].Line)

	missing, err := store.CollectibleByAccount(ctx, 111)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestImporter_MalformedNumerics_RowSkipped(t *testing.T) {
	imp, _ := newTestImporter(t)
	ctx := context.Background()

	batch := batchHeader + "\n" +
		"111,Ann,not-a-number,2024-01-01,0,10,0,0\n" +
		"222,Bea,-50.0,2024-01-01,0,10,0,0\n" +
		"333,Cid,300.0,2024-01-01,0,10,0,0"

	result, err := imp.Import(ctx, batch, jan1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	assert.Len(t, result.FailedRows, 2)
}

func TestImporter_UnknownExplicitPeriod_RowSkipped(t *testing.T) {
	// An explicit period_id that references no period violates the foreign
	// key; the row fails individually and the batch continues.

	imp, _ := newTestImporter(t)
	ctx := context.Background()

	batch := batchHeader + "\n" +
		"111,Ann,100.0,2024-01-01,0,10,0,9999\n" +
		"222,Bea,200.0,2024-01-01,0,10,0,0"

	result, err := imp.Import(ctx, batch, jan1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	require.Len(t, result.FailedRows, 1)
	assert.Equal(t, 2, result.FailedRows[0].Line)
}

func TestImporter_RecordsRun(t *testing.T) {
	imp, store := newTestImporter(t)
	ctx := context.Background()

	batch := batchHeader + "\n" +
		"111,Ann,100.0,2024-01-01,0,10,0,0\n" +
		"111,Ann,100.0,2024-01-01,0,10,0,0\n" +
		"bad row"

	result, err := imp.Import(ctx, batch, jan1)
	require.NoError(t, err)

	runs, err := store.ListImportRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, result.RunID, runs[0].ID)
	assert.Equal(t, 1, runs[0].Inserted)
	assert.Equal(t, 1, runs[0].Skipped)
	assert.Equal(t, 1, runs[0].Failed)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
