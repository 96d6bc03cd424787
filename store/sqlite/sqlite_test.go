package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eclc/collection-engine/collections"
	"github.com/eclc/collection-engine/store/sqlite"
)

func sampleCollectible(account, periodID int64) collections.Collectible {
	return collections.Collectible{
		AccountNumber:    account,
		Name:             "Jose Rizal",
		RemainingBalance: decimal.RequireFromString("2500.00"),
		DueDate:          "2024-12-22",
		AmountPaid:       decimal.Zero,
		DailyDue:         decimal.RequireFromString("50.00"),
		PeriodID:         periodID,
	}
}

func TestBootstrap_Idempotent(t *testing.T) {
	// GIVEN: A database already bootstrapped and populated
	// WHEN: Opening it a second time
	// THEN: No error, no duplicated admin seed, existing rows untouched

	dbPath := filepath.Join(t.TempDir(), "collections.db")
	ctx := context.Background()

	store, err := sqlite.New(dbPath)
	require.NoError(t, err)

	periodID, err := store.CreatePeriod(ctx, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	inserted, err := store.InsertCollectible(ctx, sampleCollectible(111, periodID))
	require.NoError(t, err)
	require.True(t, inserted)
	require.NoError(t, store.Close())

	reopened, err := sqlite.New(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	periods, err := reopened.ListPeriods(ctx)
	require.NoError(t, err)
	assert.Len(t, periods, 1)

	c, err := reopened.CollectibleByAccount(ctx, 111)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "Jose Rizal", c.Name)

	// Count the seed directly: exactly one admin row.
	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var admins int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM admin_accounts WHERE username = ?",
		sqlite.DefaultAdminUsername,
	).Scan(&admins))
	assert.Equal(t, 1, admins)
}

func TestInsertCollectible_IgnoresDuplicates(t *testing.T) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	periodID, err := store.CreatePeriod(ctx, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	inserted, err := store.InsertCollectible(ctx, sampleCollectible(111, periodID))
	require.NoError(t, err)
	assert.True(t, inserted)

	dup := sampleCollectible(111, periodID)
	dup.Name = "Someone Else"
	inserted, err = store.InsertCollectible(ctx, dup)
	require.NoError(t, err)
	assert.False(t, inserted)

	c, err := store.CollectibleByAccount(ctx, 111)
	require.NoError(t, err)
	assert.Equal(t, "Jose Rizal", c.Name)
}

func TestInsertCollectible_EnforcesPeriodReference(t *testing.T) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer store.Close()

	_, err = store.InsertCollectible(context.Background(), sampleCollectible(111, 9999))
	assert.Error(t, err)
}

func TestMarkPrinted_UnknownAccount(t *testing.T) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer store.Close()

	err = store.MarkPrinted(context.Background(), 404)
	assert.ErrorIs(t, err, collections.ErrCollectibleNotFound)
}

func TestMarkPeriodExported_UnknownPeriod(t *testing.T) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer store.Close()

	err = store.MarkPeriodExported(context.Background(), 404)
	assert.ErrorIs(t, err, collections.ErrPeriodNotFound)
}

func TestUnprintedAccounts(t *testing.T) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	periodID, err := store.CreatePeriod(ctx, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	for _, account := range []int64{111, 222, 333} {
		_, err := store.InsertCollectible(ctx, sampleCollectible(account, periodID))
		require.NoError(t, err)
	}
	require.NoError(t, store.MarkPrinted(ctx, 222))

	pending, err := store.UnprintedAccounts(ctx, periodID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{111, 333}, pending)
}
