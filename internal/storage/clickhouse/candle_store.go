package clickhouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"moex-iss/internal/domain"
	"moex-iss/internal/observability"
	"moex-iss/internal/storage"
)

// CandleStore implements storage.CandleStore using ClickHouse.
type CandleStore struct {
	conn *Conn
}

// NewCandleStore creates a new CandleStore.
func NewCandleStore(conn *Conn) *CandleStore {
	return &CandleStore{conn: conn}
}

// Compile-time interface check.
var _ storage.CandleStore = (*CandleStore)(nil)

// InsertBulk adds multiple candles. Fails entire batch on duplicate (ticker, interval, begin_ms).
func (s *CandleStore) InsertBulk(ctx context.Context, candles []*domain.Candle) (err error) {
	if len(candles) == 0 {
		return nil
	}
	defer func(start time.Time) { observe("insert_candles", start, err) }(time.Now())

	// Check for intra-batch duplicates
	seen := make(map[domain.CandleKey]struct{}, len(candles))
	for _, c := range candles {
		if c == nil || c.Ticker == "" {
			return storage.ErrInvalidInput
		}
		k := c.Key()
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// MergeTree does not enforce uniqueness, so check stored rows first
	for _, c := range candles {
		exists, err := s.exists(ctx, c.Ticker, c.Interval, c.BeginMs)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO candles (
			ticker, market, candle_interval, begin_ms, end_ms,
			open, close, high, low, value, volume
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, c := range candles {
		err = batch.Append(
			c.Ticker, c.Market, c.Interval, uint64(c.BeginMs), uint64(c.EndMs),
			c.Open, c.Close, c.High, c.Low, c.Value, c.Volume,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByTicker retrieves all candles of a series, ordered by begin_ms ASC.
func (s *CandleStore) GetByTicker(ctx context.Context, ticker, interval string) (result []*domain.Candle, err error) {
	defer func(start time.Time) { observe("get_candles", start, err) }(time.Now())

	query := `
		SELECT ticker, market, candle_interval, begin_ms, end_ms, open, close, high, low, value, volume
		FROM candles
		WHERE ticker = ? AND candle_interval = ?
		ORDER BY begin_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, ticker, interval)
	if err != nil {
		return nil, fmt.Errorf("query by ticker: %w", err)
	}
	defer rows.Close()

	return scanCandles(rows)
}

// GetByTimeRange retrieves candles of a series with begin_ms within [start, end] (inclusive).
func (s *CandleStore) GetByTimeRange(ctx context.Context, ticker, interval string, start, end int64) (result []*domain.Candle, err error) {
	defer func(t time.Time) { observe("get_candles_range", t, err) }(time.Now())

	query := `
		SELECT ticker, market, candle_interval, begin_ms, end_ms, open, close, high, low, value, volume
		FROM candles
		WHERE ticker = ? AND candle_interval = ? AND begin_ms >= ? AND begin_ms <= ?
		ORDER BY begin_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, ticker, interval, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanCandles(rows)
}

// exists checks if a candle with the given key exists.
func (s *CandleStore) exists(ctx context.Context, ticker, interval string, beginMs int64) (bool, error) {
	query := `
		SELECT count(*) FROM candles
		WHERE ticker = ? AND candle_interval = ? AND begin_ms = ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, ticker, interval, uint64(beginMs)).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanCandles scans multiple rows.
func scanCandles(rows chRows) ([]*domain.Candle, error) {
	var candles []*domain.Candle

	for rows.Next() {
		var c domain.Candle
		var beginMs, endMs uint64
		var open, closePx, high, low decimal.Decimal

		err := rows.Scan(
			&c.Ticker, &c.Market, &c.Interval, &beginMs, &endMs,
			&open, &closePx, &high, &low, &c.Value, &c.Volume,
		)
		if err != nil {
			return nil, fmt.Errorf("scan candle row: %w", err)
		}

		c.BeginMs = int64(beginMs)
		c.EndMs = int64(endMs)
		c.Open, c.Close, c.High, c.Low = open, closePx, high, low
		candles = append(candles, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candle rows: %w", err)
	}

	return candles, nil
}

func observe(operation string, start time.Time, err error) {
	if errors.Is(err, storage.ErrDuplicateKey) || errors.Is(err, storage.ErrInvalidInput) {
		err = nil
	}
	observability.RecordDBQuery("clickhouse", operation, time.Since(start).Seconds(), err)
}
