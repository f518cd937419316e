// Package postgres stores instruments and candles in PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"moex-iss/internal/observability"
	"moex-iss/internal/storage"
)

// Pool is the pgx pool shared by the instrument and candle stores.
type Pool struct {
	*pgxpool.Pool
}

// NewPool parses dsn, connects and pings. The pool is closed again if the
// ping fails.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Close releases every pooled connection.
func (p *Pool) Close() {
	p.Pool.Close()
}

// SQLSTATE unique_violation.
const uniqueViolation = "23505"

// storageErr maps a pgx error onto the storage sentinels; anything else is
// wrapped with op.
func storageErr(op string, err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		return storage.ErrDuplicateKey
	case errors.Is(err, pgx.ErrNoRows):
		return storage.ErrNotFound
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// observe records query latency. Sentinel outcomes are expected results and
// do not count as query errors.
func observe(operation string, start time.Time, err error) {
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrDuplicateKey) || errors.Is(err, storage.ErrInvalidInput) {
		err = nil
	}
	observability.RecordDBQuery("postgres", operation, time.Since(start).Seconds(), err)
}
