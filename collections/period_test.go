package collections_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eclc/collection-engine/collections"
	"github.com/eclc/collection-engine/collections/store"
)

func TestPeriodManager_LatestByIdentifierNotDate(t *testing.T) {
	// GIVEN: Two periods created with dates out of chronological order
	// WHEN: Resolving the latest period
	// THEN: The later-created period wins, regardless of its date value

	mgr := collections.NewPeriodManager(store.NewMemory())
	ctx := context.Background()

	later := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	_, err := mgr.CreatePeriod(ctx, later)
	require.NoError(t, err)
	id2, err := mgr.CreatePeriod(ctx, earlier)
	require.NoError(t, err)

	latest, err := mgr.LatestPeriod(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, id2, latest.ID)
	assert.Equal(t, earlier, latest.Date)
}

func TestPeriodManager_LatestOpenPeriodDate(t *testing.T) {
	mem := store.NewMemory()
	mgr := collections.NewPeriodManager(mem)
	ctx := context.Background()

	// No periods yet: collection is not in progress.
	_, open, err := mgr.LatestOpenPeriodDate(ctx)
	require.NoError(t, err)
	assert.False(t, open)

	date := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	id, err := mgr.CreatePeriod(ctx, date)
	require.NoError(t, err)

	got, open, err := mgr.LatestOpenPeriodDate(ctx)
	require.NoError(t, err)
	assert.True(t, open)
	assert.Equal(t, date, got)

	// Once the latest period is exported, the signal goes dark.
	require.NoError(t, mem.MarkPeriodExported(ctx, id))

	_, open, err = mgr.LatestOpenPeriodDate(ctx)
	require.NoError(t, err)
	assert.False(t, open)
}

func TestPeriodManager_PeriodDateByID(t *testing.T) {
	mgr := collections.NewPeriodManager(store.NewMemory())
	ctx := context.Background()

	date := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	id, err := mgr.CreatePeriod(ctx, date)
	require.NoError(t, err)

	got, ok, err := mgr.PeriodDateByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, date, got)

	_, ok, err = mgr.PeriodDateByID(ctx, id+99)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPeriodManager_AllPeriods(t *testing.T) {
	mgr := collections.NewPeriodManager(store.NewMemory())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := mgr.CreatePeriod(ctx, time.Date(2024, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
	}

	periods, err := mgr.AllPeriods(ctx)
	require.NoError(t, err)
	assert.Len(t, periods, 3)
}
