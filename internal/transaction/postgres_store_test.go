//go:build integration

package transaction

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraudwatch/fraudwatch/internal/testutil"
)

func setupTestDB(t *testing.T) (*PostgresStore, func()) {
	t.Helper()
	db, cleanup := testutil.PGTest(t)
	return NewPostgresStore(db), cleanup
}

func integrationTxn(score float64) *Transaction {
	status, level := Classify(score)
	hour := 3
	return &Transaction{
		CCNumber:  "4999999999999999",
		Amount:    88.20,
		Category:  "grocery_pos",
		Channel:   DefaultChannel,
		RiskScore: score,
		RiskLevel: level,
		Status:    status,
		Features:  Features{HourOfDay: &hour},
		CreatedAt: time.Now().UTC(),
	}
}

func TestPostgresStore_CreateAndGet(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	created, err := store.Create(ctx, integrationTxn(0.85))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, 0.85, got.RiskScore)
	assert.Equal(t, StatusBlocked, got.Status)
	require.NotNil(t, got.HourOfDay)
	assert.Equal(t, 3, *got.HourOfDay)
	assert.Nil(t, got.AmountZScore)
}

func TestPostgresStore_GetNotFound(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := store.Get(context.Background(), "txn_does_not_exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStore_ListAndCount(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	for _, score := range []float64{0.1, 0.5, 0.9} {
		_, err := store.Create(ctx, integrationTxn(score))
		require.NoError(t, err)
	}

	min := 0.5
	txns, err := store.List(ctx, Filter{MinScore: &min, Limit: 10})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(txns), 2)

	n, err := store.CountByScoreGTE(ctx, 0.5)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(2))
}

func TestPostgresStore_UpdateStatus(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	created, err := store.Create(ctx, integrationTxn(0.9))
	require.NoError(t, err)

	updated, err := store.UpdateStatus(ctx, created.ID, StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, updated.Status)
	assert.Equal(t, 0.9, updated.RiskScore)

	_, err = store.UpdateStatus(ctx, "txn_does_not_exist", StatusApproved)
	assert.ErrorIs(t, err, ErrNotFound)
}
