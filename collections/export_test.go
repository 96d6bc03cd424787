package collections_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eclc/collection-engine/collections"
	"github.com/eclc/collection-engine/collections/store"
)

func seedPeriodWithCollectibles(t *testing.T, mem *store.Memory, accounts ...int64) int64 {
	t.Helper()
	ctx := context.Background()

	periodID, err := mem.CreatePeriod(ctx, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	for _, a := range accounts {
		_, err := mem.InsertCollectible(ctx, collections.Collectible{
			AccountNumber:    a,
			Name:             "Account",
			RemainingBalance: decimal.NewFromInt(100),
			DueDate:          "2024-01-31",
			AmountPaid:       decimal.Zero,
			DailyDue:         decimal.NewFromInt(10),
			PeriodID:         periodID,
		})
		require.NoError(t, err)
	}
	return periodID
}

func TestExporter_RefusedWhileUnprinted(t *testing.T) {
	// GIVEN: A period with one printed and one unprinted collectible
	// WHEN: Exporting the period
	// THEN: The export is refused naming the pending account and the flag
	//       keeps its prior value

	mem := store.NewMemory()
	exp := collections.NewExporter(mem)
	ctx := context.Background()

	periodID := seedPeriodWithCollectibles(t, mem, 111, 222)
	require.NoError(t, exp.MarkPrinted(ctx, 111))

	err := exp.ExportPeriod(ctx, periodID)
	require.Error(t, err)
	assert.ErrorIs(t, err, collections.ErrExportIncomplete)

	var incomplete *collections.IncompleteExportError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, periodID, incomplete.PeriodID)
	assert.Equal(t, []int64{222}, incomplete.Pending)

	p, err := mem.PeriodByID(ctx, periodID)
	require.NoError(t, err)
	assert.False(t, p.Exported)
}

func TestExporter_SucceedsWhenAllPrinted(t *testing.T) {
	mem := store.NewMemory()
	exp := collections.NewExporter(mem)
	ctx := context.Background()

	periodID := seedPeriodWithCollectibles(t, mem, 111, 222)
	require.NoError(t, exp.MarkPrinted(ctx, 111))
	require.NoError(t, exp.MarkPrinted(ctx, 222))

	require.NoError(t, exp.ExportPeriod(ctx, periodID))

	p, err := mem.PeriodByID(ctx, periodID)
	require.NoError(t, err)
	assert.True(t, p.Exported)

	// Exported collectibles leave the outstanding working set for good.
	out, err := mem.ListOutstanding(ctx)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestExporter_ReExportIsNoOp(t *testing.T) {
	mem := store.NewMemory()
	exp := collections.NewExporter(mem)
	ctx := context.Background()

	periodID := seedPeriodWithCollectibles(t, mem, 111)
	require.NoError(t, exp.MarkPrinted(ctx, 111))
	require.NoError(t, exp.ExportPeriod(ctx, periodID))
	require.NoError(t, exp.ExportPeriod(ctx, periodID))

	p, err := mem.PeriodByID(ctx, periodID)
	require.NoError(t, err)
	assert.True(t, p.Exported)
}

func TestExporter_UnknownPeriod(t *testing.T) {
	exp := collections.NewExporter(store.NewMemory())

	err := exp.ExportPeriod(context.Background(), 42)
	assert.ErrorIs(t, err, collections.ErrPeriodNotFound)
}

func TestExporter_EmptyPeriodExports(t *testing.T) {
	// A period with zero collectibles has nothing pending; export succeeds.

	mem := store.NewMemory()
	exp := collections.NewExporter(mem)
	ctx := context.Background()

	periodID := seedPeriodWithCollectibles(t, mem)
	require.NoError(t, exp.ExportPeriod(ctx, periodID))

	p, err := mem.PeriodByID(ctx, periodID)
	require.NoError(t, err)
	assert.True(t, p.Exported)
}
