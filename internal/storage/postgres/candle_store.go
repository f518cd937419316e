package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"moex-iss/internal/domain"
	"moex-iss/internal/storage"
)

// CandleStore implements storage.CandleStore using PostgreSQL.
type CandleStore struct {
	pool *Pool
}

// NewCandleStore creates a new CandleStore.
func NewCandleStore(pool *Pool) *CandleStore {
	return &CandleStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CandleStore = (*CandleStore)(nil)

const candleColumns = `ticker, market, candle_interval, begin_ms, end_ms,
	open::text, close::text, high::text, low::text, value, volume`

// InsertBulk adds multiple candles atomically. Fails entire batch on any duplicate.
func (s *CandleStore) InsertBulk(ctx context.Context, candles []*domain.Candle) (err error) {
	if len(candles) == 0 {
		return nil
	}
	for _, c := range candles {
		if c == nil || c.Ticker == "" {
			return storage.ErrInvalidInput
		}
	}
	defer func(start time.Time) { observe("insert_candles", start, err) }(time.Now())

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO candles (
			ticker, market, candle_interval, begin_ms, end_ms, open, close, high, low, value, volume
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	batch := &pgx.Batch{}
	for _, c := range candles {
		batch.Queue(query,
			c.Ticker,
			c.Market,
			c.Interval,
			c.BeginMs,
			c.EndMs,
			c.Open.String(),
			c.Close.String(),
			c.High.String(),
			c.Low.String(),
			c.Value,
			c.Volume,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range candles {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return storageErr("insert candle in bulk", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByTicker retrieves all candles of a series, ordered by begin_ms ASC.
func (s *CandleStore) GetByTicker(ctx context.Context, ticker, interval string) (result []*domain.Candle, err error) {
	defer func(start time.Time) { observe("get_candles", start, err) }(time.Now())

	query := `SELECT ` + candleColumns + `
		FROM candles
		WHERE ticker = $1 AND candle_interval = $2
		ORDER BY begin_ms ASC
	`

	rows, err := s.pool.Query(ctx, query, ticker, interval)
	if err != nil {
		return nil, fmt.Errorf("get candles by ticker: %w", err)
	}
	defer rows.Close()

	return scanCandles(rows)
}

// GetByTimeRange retrieves candles of a series with begin_ms within [start, end] (inclusive).
func (s *CandleStore) GetByTimeRange(ctx context.Context, ticker, interval string, start, end int64) (result []*domain.Candle, err error) {
	defer func(t time.Time) { observe("get_candles_range", t, err) }(time.Now())

	query := `SELECT ` + candleColumns + `
		FROM candles
		WHERE ticker = $1 AND candle_interval = $2 AND begin_ms >= $3 AND begin_ms <= $4
		ORDER BY begin_ms ASC
	`

	rows, err := s.pool.Query(ctx, query, ticker, interval, start, end)
	if err != nil {
		return nil, fmt.Errorf("get candles by time range: %w", err)
	}
	defer rows.Close()

	return scanCandles(rows)
}

// scanCandles scans multiple rows into a slice.
func scanCandles(rows pgx.Rows) ([]*domain.Candle, error) {
	var candles []*domain.Candle

	for rows.Next() {
		var c domain.Candle
		var open, closePx, high, low string

		err := rows.Scan(
			&c.Ticker, &c.Market, &c.Interval, &c.BeginMs, &c.EndMs,
			&open, &closePx, &high, &low, &c.Value, &c.Volume,
		)
		if err != nil {
			return nil, fmt.Errorf("scan candle row: %w", err)
		}

		if c.Open, err = decimal.NewFromString(open); err != nil {
			return nil, fmt.Errorf("parse open: %w", err)
		}
		if c.Close, err = decimal.NewFromString(closePx); err != nil {
			return nil, fmt.Errorf("parse close: %w", err)
		}
		if c.High, err = decimal.NewFromString(high); err != nil {
			return nil, fmt.Errorf("parse high: %w", err)
		}
		if c.Low, err = decimal.NewFromString(low); err != nil {
			return nil, fmt.Errorf("parse low: %w", err)
		}

		candles = append(candles, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candle rows: %w", err)
	}

	return candles, nil
}
