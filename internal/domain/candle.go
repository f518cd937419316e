package domain

import "github.com/shopspring/decimal"

// Candle is one OHLCV bucket for an instrument.
// Unique key: (Ticker, Interval, BeginMs).
type Candle struct {
	Ticker   string
	Market   string // future | stock
	Interval string // symbolic token, e.g. 1m, 1d
	BeginMs  int64
	EndMs    int64
	Open     decimal.Decimal
	Close    decimal.Decimal
	High     decimal.Decimal
	Low      decimal.Decimal
	Value    float64 // turnover in quote currency
	Volume   float64
}

// CandleKey identifies a candle inside a ticker/interval series.
type CandleKey struct {
	Ticker   string
	Interval string
	BeginMs  int64
}

// Key returns the unique key of the candle.
func (c *Candle) Key() CandleKey {
	return CandleKey{Ticker: c.Ticker, Interval: c.Interval, BeginMs: c.BeginMs}
}
