package storage

import (
	"context"

	"moex-iss/internal/domain"
)

// InstrumentStore provides access to instruments storage.
type InstrumentStore interface {
	// Insert adds a new instrument. Returns ErrDuplicateKey if ticker exists.
	Insert(ctx context.Context, inst *domain.Instrument) error

	// GetByTicker retrieves an instrument by ticker. Returns ErrNotFound if not exists.
	GetByTicker(ctx context.Context, ticker string) (*domain.Instrument, error)

	// List retrieves all instruments, ordered by ticker ASC.
	List(ctx context.Context) ([]*domain.Instrument, error)
}

// CandleStore provides access to candles storage.
type CandleStore interface {
	// InsertBulk adds multiple candles. Fails entire batch on duplicate (ticker, interval, begin_ms).
	InsertBulk(ctx context.Context, candles []*domain.Candle) error

	// GetByTicker retrieves all candles of a series, ordered by begin_ms ASC.
	GetByTicker(ctx context.Context, ticker, interval string) ([]*domain.Candle, error)

	// GetByTimeRange retrieves candles of a series with begin_ms within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, ticker, interval string, start, end int64) ([]*domain.Candle, error)
}
