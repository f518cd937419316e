package postgres

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moex-iss/internal/domain"
	"moex-iss/internal/storage"
)

func makeCandle(ticker, interval string, beginMs int64) *domain.Candle {
	return &domain.Candle{
		Ticker:   ticker,
		Market:   "stock",
		Interval: interval,
		BeginMs:  beginMs,
		EndMs:    beginMs + 59999,
		Open:     decimal.RequireFromString("16.105"),
		Close:    decimal.RequireFromString("16.2"),
		High:     decimal.RequireFromString("16.3"),
		Low:      decimal.RequireFromString("16.01"),
		Value:    5230000.5,
		Volume:   323000,
	}
}

func TestCandleStore_InsertBulkAndGetByTicker(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandleStore(pool)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.Candle{
		makeCandle("AFKS", "1m", 120000),
		makeCandle("AFKS", "1m", 60000),
		makeCandle("AFKS", "1d", 60000),
	}))

	result, err := store.GetByTicker(ctx, "AFKS", "1m")
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, int64(60000), result[0].BeginMs)
	assert.Equal(t, int64(120000), result[1].BeginMs)
	assert.True(t, decimal.RequireFromString("16.105").Equal(result[0].Open))
	assert.True(t, decimal.RequireFromString("16.01").Equal(result[0].Low))
	assert.Equal(t, "stock", result[0].Market)
	assert.InDelta(t, 5230000.5, result[0].Value, 0.0001)

	daily, err := store.GetByTicker(ctx, "AFKS", "1d")
	require.NoError(t, err)
	assert.Len(t, daily, 1)
}

func TestCandleStore_InsertBulkIsAtomic(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandleStore(pool)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.Candle{makeCandle("SBER", "1m", 60000)}))

	err := store.InsertBulk(ctx, []*domain.Candle{
		makeCandle("SBER", "1m", 120000),
		makeCandle("SBER", "1m", 60000),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	result, err := store.GetByTicker(ctx, "SBER", "1m")
	require.NoError(t, err)
	assert.Len(t, result, 1, "failed batch must not leave partial rows")
}

func TestCandleStore_GetByTimeRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandleStore(pool)
	ctx := context.Background()

	var candles []*domain.Candle
	for i := int64(1); i <= 5; i++ {
		candles = append(candles, makeCandle("GAZP", "10m", i*600000))
	}
	require.NoError(t, store.InsertBulk(ctx, candles))

	result, err := store.GetByTimeRange(ctx, "GAZP", "10m", 1200000, 2400000)
	require.NoError(t, err)
	require.Len(t, result, 3)
	assert.Equal(t, int64(1200000), result[0].BeginMs)
	assert.Equal(t, int64(2400000), result[2].BeginMs)
}

func TestCandleStore_EmptyAndInvalid(t *testing.T) {
	store := NewCandleStore(nil)
	ctx := context.Background()

	assert.NoError(t, store.InsertBulk(ctx, nil))
	assert.ErrorIs(t, store.InsertBulk(ctx, []*domain.Candle{nil}), storage.ErrInvalidInput)
}
