package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/adventure/internal/storage/postgres"
	"github.com/cory-johannsen/adventure/internal/testutil"
)

func TestBalanceRepository_DefaultsToZero(t *testing.T) {
	repo := postgres.NewBalanceRepository(testutil.NewPool(t))
	got, err := repo.Balance(context.Background(), uniqueID("bal"))
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestBalanceRepository_Adjust(t *testing.T) {
	repo := postgres.NewBalanceRepository(testutil.NewPool(t))
	ctx := context.Background()
	id := uniqueID("bal")

	got, err := repo.Adjust(ctx, id, 150)
	require.NoError(t, err)
	assert.Equal(t, int64(150), got)

	got, err = repo.Adjust(ctx, id, -50)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got)

	bal, err := repo.Balance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(100), bal)
}

func TestBalanceRepository_InsufficientFunds(t *testing.T) {
	repo := postgres.NewBalanceRepository(testutil.NewPool(t))
	ctx := context.Background()
	id := uniqueID("bal")

	_, err := repo.Adjust(ctx, id, 10)
	require.NoError(t, err)
	_, err = repo.Adjust(ctx, id, -11)
	assert.ErrorIs(t, err, postgres.ErrInsufficientFunds)

	bal, err := repo.Balance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(10), bal)
}
