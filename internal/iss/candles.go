package iss

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"moex-iss/internal/domain"
)

const candlesBlock = "candles"

// DateTimeLayout is the ISS format for from/till parameters and candle
// begin/end columns.
const DateTimeLayout = "2006-01-02 15:04:05"

// Moscow is the exchange time zone. ISS timestamps carry no offset.
var Moscow = time.FixedZone("MSK", 3*60*60)

// CandleOpts holds the optional parameters of a candles query.
type CandleOpts struct {
	From     string   // inclusive start, DateTimeLayout or a date; omitted when empty
	Till     string   // inclusive end; omitted when empty
	Interval Interval // defaults to DefaultInterval
}

// GetCandles returns the flattened candles block for ticker on market.
// An unsupported market yields an empty result without a request.
func (c *HTTPClient) GetCandles(ctx context.Context, market Market, ticker string, opts CandleOpts) ([]Record, error) {
	method, ok := market.candlesMethod(ticker)
	if !ok {
		return []Record{}, nil
	}

	params, err := candleParams(opts)
	if err != nil {
		return nil, err
	}

	doc, err := c.Query(ctx, method, params)
	if err != nil {
		return nil, err
	}

	records, err := Flatten(doc, candlesBlock)
	if err != nil {
		return nil, fmt.Errorf("get candles %s: %w", ticker, err)
	}
	return records, nil
}

// GetFutureCandles returns candles for a FORTS futures contract.
func (c *HTTPClient) GetFutureCandles(ctx context.Context, ticker string, opts CandleOpts) ([]Record, error) {
	return c.GetCandles(ctx, MarketFuture, ticker, opts)
}

// GetStockCandles returns candles for a share on the stock market.
func (c *HTTPClient) GetStockCandles(ctx context.Context, ticker string, opts CandleOpts) ([]Record, error) {
	return c.GetCandles(ctx, MarketStock, ticker, opts)
}

func candleParams(opts CandleOpts) (url.Values, error) {
	interval := opts.Interval
	if interval == "" {
		interval = DefaultInterval
	}
	code, err := interval.Code()
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	if opts.From != "" {
		params.Set("from", opts.From)
	}
	if opts.Till != "" {
		params.Set("till", opts.Till)
	}
	params.Set("interval", code)
	return params, nil
}

// ParseCandles converts flattened candle records into typed candles.
// Each record must carry open, close, high, low, value, volume, begin and end.
// Candles are labelled with interval.Canonical().
func ParseCandles(market Market, ticker string, interval Interval, records []Record) ([]*domain.Candle, error) {
	if interval == "" {
		interval = DefaultInterval
	}
	interval = interval.Canonical()

	candles := make([]*domain.Candle, 0, len(records))
	for i, r := range records {
		c := &domain.Candle{
			Ticker:   ticker,
			Market:   string(market),
			Interval: string(interval),
		}

		var err error
		if c.Open, err = decimalField(r, "open"); err != nil {
			return nil, fmt.Errorf("candle %d: %w", i, err)
		}
		if c.Close, err = decimalField(r, "close"); err != nil {
			return nil, fmt.Errorf("candle %d: %w", i, err)
		}
		if c.High, err = decimalField(r, "high"); err != nil {
			return nil, fmt.Errorf("candle %d: %w", i, err)
		}
		if c.Low, err = decimalField(r, "low"); err != nil {
			return nil, fmt.Errorf("candle %d: %w", i, err)
		}
		if c.Value, err = floatField(r, "value"); err != nil {
			return nil, fmt.Errorf("candle %d: %w", i, err)
		}
		if c.Volume, err = floatField(r, "volume"); err != nil {
			return nil, fmt.Errorf("candle %d: %w", i, err)
		}
		if c.BeginMs, err = timeField(r, "begin"); err != nil {
			return nil, fmt.Errorf("candle %d: %w", i, err)
		}
		if c.EndMs, err = timeField(r, "end"); err != nil {
			return nil, fmt.Errorf("candle %d: %w", i, err)
		}

		candles = append(candles, c)
	}
	return candles, nil
}

func decimalField(r Record, name string) (decimal.Decimal, error) {
	switch v := r[name].(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %s=%q", ErrSchema, name, v)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %s is %T", ErrSchema, name, r[name])
	}
}

func floatField(r Record, name string) (float64, error) {
	switch v := r[name].(type) {
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q", ErrSchema, name, v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %s is %T", ErrSchema, name, r[name])
	}
}

func timeField(r Record, name string) (int64, error) {
	s, ok := r[name].(string)
	if !ok {
		return 0, fmt.Errorf("%w: %s is %T", ErrSchema, name, r[name])
	}
	t, err := time.ParseInLocation(DateTimeLayout, s, Moscow)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrSchema, name, s)
	}
	return t.UnixMilli(), nil
}
