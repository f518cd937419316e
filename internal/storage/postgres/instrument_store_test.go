package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moex-iss/internal/domain"
	"moex-iss/internal/storage"
)

func TestInstrumentStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewInstrumentStore(pool)
	ctx := context.Background()

	inst := &domain.Instrument{
		Ticker:        "CRH5",
		MinStep:       "0.001",
		LastTradeDate: "2025-03-20",
		FetchedAt:     1736500000000,
	}
	require.NoError(t, store.Insert(ctx, inst))

	got, err := store.GetByTicker(ctx, "CRH5")
	require.NoError(t, err)
	assert.Equal(t, "0.001", got.MinStep)
	assert.Equal(t, "2025-03-20", got.LastTradeDate)
	assert.Equal(t, int64(1736500000000), got.FetchedAt)
	assert.Positive(t, got.CreatedAt)

	err = store.Insert(ctx, inst)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	_, err = store.GetByTicker(ctx, "CRZ9")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestInstrumentStore_List(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewInstrumentStore(pool)
	ctx := context.Background()

	for _, ticker := range []string{"CRM5", "CRH5", "CRU5"} {
		require.NoError(t, store.Insert(ctx, &domain.Instrument{
			Ticker:        ticker,
			MinStep:       "0.001",
			LastTradeDate: "2025-09-18",
			FetchedAt:     1,
		}))
	}

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "CRH5", list[0].Ticker)
	assert.Equal(t, "CRM5", list[1].Ticker)
	assert.Equal(t, "CRU5", list[2].Ticker)
}

func TestInstrumentStore_InvalidInput(t *testing.T) {
	store := NewInstrumentStore(nil)

	err := store.Insert(context.Background(), &domain.Instrument{})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
