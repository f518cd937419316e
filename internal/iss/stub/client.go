package stub

import (
	"context"

	"moex-iss/internal/domain"
	"moex-iss/internal/iss"
)

// Client implements iss.Client for testing.
type Client struct {
	Futures     []string
	Instruments map[string]*domain.Instrument
	Candles     map[string][]iss.Record // keyed by ticker

	// Calls counts GetCandles invocations per ticker.
	Calls map[string]int
	// Err, when set, is returned by every query.
	Err error
}

// NewClient creates a new stub ISS client. The zero Client is also usable.
func NewClient() *Client {
	return &Client{
		Instruments: make(map[string]*domain.Instrument),
		Candles:     make(map[string][]iss.Record),
		Calls:       make(map[string]int),
	}
}

// Compile-time interface check.
var _ iss.Client = (*Client)(nil)

// ListFutures returns the stub ticker list.
func (c *Client) ListFutures(_ context.Context) ([]string, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return append([]string(nil), c.Futures...), nil
}

// ListFuturesByPrefix filters the stub ticker list.
func (c *Client) ListFuturesByPrefix(ctx context.Context, prefix string) ([]string, error) {
	all, err := c.ListFutures(ctx)
	if err != nil {
		return nil, err
	}
	return iss.FilterByPrefix(all, prefix), nil
}

// GetFutureMetadata returns the stored instrument or iss.ErrNotFound.
func (c *Client) GetFutureMetadata(_ context.Context, ticker string) (*domain.Instrument, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	inst, ok := c.Instruments[ticker]
	if !ok {
		return nil, iss.ErrNotFound
	}
	instCopy := *inst
	return &instCopy, nil
}

// GetCandles returns the stored records for ticker. Interval tokens are
// validated the same way as the HTTP client.
func (c *Client) GetCandles(_ context.Context, market iss.Market, ticker string, opts iss.CandleOpts) ([]iss.Record, error) {
	if market != iss.MarketFuture && market != iss.MarketStock {
		return []iss.Record{}, nil
	}
	if opts.Interval != "" {
		if _, err := opts.Interval.Code(); err != nil {
			return nil, err
		}
	}
	if c.Calls == nil {
		c.Calls = make(map[string]int)
	}
	c.Calls[ticker]++
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Candles[ticker], nil
}

// AddInstrument adds an instrument to the stub store.
func (c *Client) AddInstrument(inst *domain.Instrument) {
	if c.Instruments == nil {
		c.Instruments = make(map[string]*domain.Instrument)
	}
	c.Instruments[inst.Ticker] = inst
	c.Futures = append(c.Futures, inst.Ticker)
}

// AddCandles sets the candle records returned for ticker.
func (c *Client) AddCandles(ticker string, records []iss.Record) {
	if c.Candles == nil {
		c.Candles = make(map[string][]iss.Record)
	}
	c.Candles[ticker] = records
}
