package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"moex-iss/internal/domain"
	"moex-iss/internal/storage"
)

func testCandle(ticker, interval string, beginMs int64, close string) *domain.Candle {
	return &domain.Candle{
		Ticker:   ticker,
		Market:   "future",
		Interval: interval,
		BeginMs:  beginMs,
		EndMs:    beginMs + 59000,
		Open:     decimal.RequireFromString(close),
		Close:    decimal.RequireFromString(close),
		High:     decimal.RequireFromString(close),
		Low:      decimal.RequireFromString(close),
		Value:    1000,
		Volume:   10,
	}
}

func TestCandleStore_InsertBulkAndGetByTicker(t *testing.T) {
	store := NewCandleStore()
	ctx := context.Background()

	candles := []*domain.Candle{
		testCandle("CRH5", "1m", 3000, "11.93"),
		testCandle("CRH5", "1m", 1000, "11.91"),
		testCandle("CRH5", "1m", 2000, "11.92"),
		testCandle("CRH5", "1d", 1000, "11.90"),
	}

	if err := store.InsertBulk(ctx, candles); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetByTicker(ctx, "CRH5", "1m")
	if err != nil {
		t.Fatalf("GetByTicker failed: %v", err)
	}

	if len(result) != 3 {
		t.Fatalf("expected 3 candles, got %d", len(result))
	}

	// Verify ordering by begin ASC
	for i, want := range []int64{1000, 2000, 3000} {
		if result[i].BeginMs != want {
			t.Errorf("result[%d].BeginMs: expected %d, got %d", i, want, result[i].BeginMs)
		}
	}
	if result[0].Close.String() != "11.91" {
		t.Errorf("expected close 11.91, got %s", result[0].Close)
	}
}

func TestCandleStore_InsertBulk_Duplicates(t *testing.T) {
	store := NewCandleStore()
	ctx := context.Background()

	// Duplicate inside batch
	err := store.InsertBulk(ctx, []*domain.Candle{
		testCandle("CRH5", "1m", 1000, "1"),
		testCandle("CRH5", "1m", 1000, "2"),
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey for intra-batch duplicate, got %v", err)
	}

	// Nothing from the failed batch was stored
	result, _ := store.GetByTicker(ctx, "CRH5", "1m")
	if len(result) != 0 {
		t.Fatalf("expected empty store after failed batch, got %d", len(result))
	}

	if err := store.InsertBulk(ctx, []*domain.Candle{testCandle("CRH5", "1m", 1000, "1")}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	// Duplicate against existing
	err = store.InsertBulk(ctx, []*domain.Candle{
		testCandle("CRH5", "1m", 2000, "1"),
		testCandle("CRH5", "1m", 1000, "1"),
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey against existing, got %v", err)
	}

	result, _ = store.GetByTicker(ctx, "CRH5", "1m")
	if len(result) != 1 {
		t.Errorf("expected 1 candle after rejected batch, got %d", len(result))
	}
}

func TestCandleStore_InsertBulk_Empty(t *testing.T) {
	store := NewCandleStore()

	if err := store.InsertBulk(context.Background(), nil); err != nil {
		t.Errorf("expected nil for empty batch, got %v", err)
	}
}

func TestCandleStore_GetByTimeRange(t *testing.T) {
	store := NewCandleStore()
	ctx := context.Background()

	candles := []*domain.Candle{
		testCandle("AFKS", "1m", 1000, "16.1"),
		testCandle("AFKS", "1m", 2000, "16.2"),
		testCandle("AFKS", "1m", 3000, "16.3"),
		testCandle("AFKS", "1m", 4000, "16.4"),
	}
	if err := store.InsertBulk(ctx, candles); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	// Inclusive range
	result, err := store.GetByTimeRange(ctx, "AFKS", "1m", 2000, 3000)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(result))
	}
	if result[0].BeginMs != 2000 || result[1].BeginMs != 3000 {
		t.Errorf("unexpected range: %d..%d", result[0].BeginMs, result[1].BeginMs)
	}

	result, _ = store.GetByTimeRange(ctx, "AFKS", "1d", 0, 5000)
	if len(result) != 0 {
		t.Errorf("expected no candles for other interval, got %d", len(result))
	}
}
