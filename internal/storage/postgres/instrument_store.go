package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"moex-iss/internal/domain"
	"moex-iss/internal/storage"
)

// InstrumentStore implements storage.InstrumentStore using PostgreSQL.
type InstrumentStore struct {
	pool *Pool
}

// NewInstrumentStore creates a new InstrumentStore.
func NewInstrumentStore(pool *Pool) *InstrumentStore {
	return &InstrumentStore{pool: pool}
}

// Compile-time interface check.
var _ storage.InstrumentStore = (*InstrumentStore)(nil)

// Insert adds a new instrument. Returns ErrDuplicateKey if ticker exists.
func (s *InstrumentStore) Insert(ctx context.Context, inst *domain.Instrument) (err error) {
	if inst == nil || inst.Ticker == "" {
		return storage.ErrInvalidInput
	}
	defer func(start time.Time) { observe("insert_instrument", start, err) }(time.Now())

	query := `
		INSERT INTO instruments (ticker, min_step, last_trade_date, fetched_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err = s.pool.Exec(ctx, query,
		inst.Ticker,
		inst.MinStep,
		inst.LastTradeDate,
		inst.FetchedAt,
	)
	if err != nil {
		return storageErr("insert instrument", err)
	}
	return nil
}

// GetByTicker retrieves an instrument by ticker. Returns ErrNotFound if not exists.
func (s *InstrumentStore) GetByTicker(ctx context.Context, ticker string) (inst *domain.Instrument, err error) {
	defer func(start time.Time) { observe("get_instrument", start, err) }(time.Now())

	query := `
		SELECT ticker, min_step, last_trade_date, fetched_at, created_at
		FROM instruments
		WHERE ticker = $1
	`

	inst, err = scanInstrument(s.pool.QueryRow(ctx, query, ticker))
	if err != nil {
		return nil, storageErr("get instrument by ticker", err)
	}
	return inst, nil
}

// List retrieves all instruments, ordered by ticker ASC.
func (s *InstrumentStore) List(ctx context.Context) (result []*domain.Instrument, err error) {
	defer func(start time.Time) { observe("list_instruments", start, err) }(time.Now())

	query := `
		SELECT ticker, min_step, last_trade_date, fetched_at, created_at
		FROM instruments
		ORDER BY ticker ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list instruments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		inst, err := scanInstrument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan instrument row: %w", err)
		}
		result = append(result, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate instrument rows: %w", err)
	}
	return result, nil
}

// scanInstrument scans a single row into Instrument.
func scanInstrument(row pgx.Row) (*domain.Instrument, error) {
	var inst domain.Instrument
	err := row.Scan(
		&inst.Ticker,
		&inst.MinStep,
		&inst.LastTradeDate,
		&inst.FetchedAt,
		&inst.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inst, nil
}
