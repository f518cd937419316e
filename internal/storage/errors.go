package storage

import "errors"

// Sentinels returned by every InstrumentStore and CandleStore backend.
// Backends translate driver errors into these so callers can branch with errors.Is.
var (
	// ErrNotFound: no instrument with the requested ticker.
	ErrNotFound = errors.New("storage: not found")

	// ErrDuplicateKey: the ticker, or the (ticker, interval, begin_ms) candle key,
	// is already stored. Rows are written once and never updated.
	ErrDuplicateKey = errors.New("storage: duplicate key")

	// ErrInvalidInput: a nil record or one with an empty ticker.
	ErrInvalidInput = errors.New("storage: invalid input")
)
