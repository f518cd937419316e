// Package export copies instrument metadata and candles from ISS into storage.
package export

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"moex-iss/internal/domain"
	"moex-iss/internal/iss"
	"moex-iss/internal/observability"
	"moex-iss/internal/storage"
)

// Run statuses reported to metrics.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// Request selects what to export.
// Tickers takes precedence over Prefix; Prefix is resolved against futures only.
type Request struct {
	Market   iss.Market
	Tickers  []string
	Prefix   string
	From     string
	Till     string
	Interval iss.Interval
}

// Result summarizes an export run.
type Result struct {
	Tickers           int
	InstrumentsStored int
	CandlesFetched    int
	CandlesStored     int
	CandlesSkipped    int      // already present in storage
	Failed            []string // tickers whose export failed
}

// Status classifies the result for metrics and logging.
func (r *Result) Status() string {
	switch {
	case len(r.Failed) == 0:
		return StatusSuccess
	case len(r.Failed) < r.Tickers:
		return StatusPartial
	default:
		return StatusFailed
	}
}

// Exporter fetches data through an iss.Client and persists it.
type Exporter struct {
	client          iss.Client
	instrumentStore storage.InstrumentStore
	candleStore     storage.CandleStore
	logger          *log.Logger
	now             func() time.Time
}

// ExporterOptions contains configuration for creating an Exporter.
type ExporterOptions struct {
	Client          iss.Client
	InstrumentStore storage.InstrumentStore // optional; metadata is skipped when nil
	CandleStore     storage.CandleStore
	Logger          *log.Logger
}

// NewExporter creates a new Exporter.
func NewExporter(opts ExporterOptions) *Exporter {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Exporter{
		client:          opts.Client,
		instrumentStore: opts.InstrumentStore,
		candleStore:     opts.CandleStore,
		logger:          logger,
		now:             time.Now,
	}
}

// Export resolves the requested tickers and stores their candles.
// A failure on one ticker is logged and recorded in Result.Failed; the run
// continues with the next ticker. Context cancellation stops the run.
func (e *Exporter) Export(ctx context.Context, req Request) (*Result, error) {
	start := e.now()

	if req.Market == "" {
		req.Market = iss.MarketFuture
	}
	if req.Interval == "" {
		req.Interval = iss.DefaultInterval
	}
	if _, err := req.Interval.Code(); err != nil {
		return nil, err
	}
	if canonical := req.Interval.Canonical(); canonical != req.Interval {
		e.logger.Printf("Interval %s is served as %s candles", req.Interval, canonical)
		req.Interval = canonical
	}

	tickers, err := e.resolveTickers(ctx, req)
	if err != nil {
		observability.RecordExportRun(StatusFailed, e.now().Sub(start).Seconds(), e.now().Unix())
		return nil, fmt.Errorf("resolve tickers: %w", err)
	}

	result := &Result{Tickers: len(tickers)}
	e.logger.Printf("Exporting %d %s tickers, interval %s", len(tickers), req.Market, req.Interval)

	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := e.exportTicker(ctx, req, ticker, result); err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			e.logger.Printf("export %s failed: %v", ticker, err)
			result.Failed = append(result.Failed, ticker)
		}
	}

	finished := e.now()
	observability.RecordExportRun(result.Status(), finished.Sub(start).Seconds(), finished.Unix())
	e.logger.Printf("Export finished: %d fetched, %d stored, %d skipped, %d failed",
		result.CandlesFetched, result.CandlesStored, result.CandlesSkipped, len(result.Failed))

	return result, nil
}

func (e *Exporter) resolveTickers(ctx context.Context, req Request) ([]string, error) {
	if len(req.Tickers) > 0 {
		return req.Tickers, nil
	}
	if req.Prefix == "" {
		return nil, errors.New("no tickers or prefix given")
	}
	if req.Market != iss.MarketFuture {
		return nil, fmt.Errorf("prefix lookup is not supported for market %q", req.Market)
	}
	return e.client.ListFuturesByPrefix(ctx, req.Prefix)
}

func (e *Exporter) exportTicker(ctx context.Context, req Request, ticker string, result *Result) error {
	if req.Market == iss.MarketFuture && e.instrumentStore != nil {
		stored, err := e.storeInstrument(ctx, ticker)
		if err != nil {
			return err
		}
		if stored {
			result.InstrumentsStored++
		}
	}

	records, err := e.client.GetCandles(ctx, req.Market, ticker, iss.CandleOpts{
		From:     req.From,
		Till:     req.Till,
		Interval: req.Interval,
	})
	if err != nil {
		return fmt.Errorf("get candles: %w", err)
	}

	candles, err := iss.ParseCandles(req.Market, ticker, req.Interval, records)
	if err != nil {
		return fmt.Errorf("parse candles: %w", err)
	}
	result.CandlesFetched += len(candles)
	observability.RecordCandlesFetched(string(req.Market), len(candles))

	fresh, err := e.newCandles(ctx, candles)
	if err != nil {
		return err
	}
	result.CandlesSkipped += len(candles) - len(fresh)

	if len(fresh) == 0 {
		return nil
	}
	if err := e.candleStore.InsertBulk(ctx, fresh); err != nil {
		return fmt.Errorf("store candles: %w", err)
	}
	result.CandlesStored += len(fresh)
	observability.RecordCandlesStored(string(req.Market), len(fresh))

	return nil
}

// storeInstrument fetches and stores metadata unless already stored.
func (e *Exporter) storeInstrument(ctx context.Context, ticker string) (bool, error) {
	_, err := e.instrumentStore.GetByTicker(ctx, ticker)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return false, fmt.Errorf("get stored instrument: %w", err)
	}

	inst, err := e.client.GetFutureMetadata(ctx, ticker)
	if err != nil {
		return false, fmt.Errorf("get metadata: %w", err)
	}

	if err := e.instrumentStore.Insert(ctx, inst); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return false, nil
		}
		return false, fmt.Errorf("store instrument: %w", err)
	}
	observability.RecordInstrumentStored()
	return true, nil
}

// newCandles drops candles whose key is already stored or repeated in the batch.
// The stored range covering the batch is read once.
func (e *Exporter) newCandles(ctx context.Context, candles []*domain.Candle) ([]*domain.Candle, error) {
	if len(candles) == 0 {
		return nil, nil
	}

	first, last := candles[0].BeginMs, candles[0].BeginMs
	for _, c := range candles {
		first = min(first, c.BeginMs)
		last = max(last, c.BeginMs)
	}

	c0 := candles[0]
	existing, err := e.candleStore.GetByTimeRange(ctx, c0.Ticker, c0.Interval, first, last)
	if err != nil {
		return nil, fmt.Errorf("read stored candles: %w", err)
	}

	seen := make(map[domain.CandleKey]struct{}, len(existing)+len(candles))
	for _, c := range existing {
		seen[c.Key()] = struct{}{}
	}

	fresh := make([]*domain.Candle, 0, len(candles))
	for _, c := range candles {
		k := c.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		fresh = append(fresh, c)
	}
	return fresh, nil
}
