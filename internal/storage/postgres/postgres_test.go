package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"moex-iss/internal/storage"
)

func TestStorageErr(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
	assert.ErrorIs(t, storageErr("insert candle", dup), storage.ErrDuplicateKey)

	assert.ErrorIs(t, storageErr("get instrument", pgx.ErrNoRows), storage.ErrNotFound)

	other := errors.New("connection reset")
	err := storageErr("insert candle", other)
	assert.ErrorIs(t, err, other)
	assert.EqualError(t, err, "insert candle: connection reset")

	fk := &pgconn.PgError{Code: "23503"}
	assert.NotErrorIs(t, storageErr("insert candle", fk), storage.ErrDuplicateKey)
}
