package iss

import (
	"context"

	"moex-iss/internal/domain"
)

// Client defines the ISS queries used by the rest of the module.
type Client interface {
	// ListFutures returns every currently traded futures ticker.
	ListFutures(ctx context.Context) ([]string, error)

	// ListFuturesByPrefix returns futures tickers starting with prefix, case-insensitively.
	ListFuturesByPrefix(ctx context.Context, prefix string) ([]string, error)

	// GetFutureMetadata returns tick size and last trading date of a futures contract.
	GetFutureMetadata(ctx context.Context, ticker string) (*domain.Instrument, error)

	// GetCandles returns the flattened candles block for ticker on market.
	GetCandles(ctx context.Context, market Market, ticker string, opts CandleOpts) ([]Record, error)
}

// Compile-time interface check.
var _ Client = (*HTTPClient)(nil)
