package memory

import (
	"context"
	"sort"
	"sync"

	"moex-iss/internal/domain"
	"moex-iss/internal/storage"
)

// seriesKey identifies one ticker/interval series.
type seriesKey struct {
	ticker   string
	interval string
}

// CandleStore is an in-memory implementation of storage.CandleStore.
type CandleStore struct {
	mu     sync.RWMutex
	series map[seriesKey][]*domain.Candle
	keys   map[domain.CandleKey]struct{}
}

// NewCandleStore creates a new in-memory candle store.
func NewCandleStore() *CandleStore {
	return &CandleStore{
		series: make(map[seriesKey][]*domain.Candle),
		keys:   make(map[domain.CandleKey]struct{}),
	}
}

// Compile-time interface check.
var _ storage.CandleStore = (*CandleStore)(nil)

// InsertBulk adds multiple candles. Fails entire batch on duplicate (ticker, interval, begin_ms).
func (s *CandleStore) InsertBulk(_ context.Context, candles []*domain.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Check for duplicates within batch and against existing
	batchKeys := make(map[domain.CandleKey]struct{}, len(candles))
	for _, c := range candles {
		if c == nil || c.Ticker == "" {
			return storage.ErrInvalidInput
		}
		k := c.Key()
		if _, exists := s.keys[k]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[k]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[k] = struct{}{}
	}

	touched := make(map[seriesKey]struct{})
	for _, c := range candles {
		candleCopy := *c
		sk := seriesKey{ticker: c.Ticker, interval: c.Interval}
		s.series[sk] = append(s.series[sk], &candleCopy)
		s.keys[c.Key()] = struct{}{}
		touched[sk] = struct{}{}
	}

	for sk := range touched {
		series := s.series[sk]
		sort.Slice(series, func(i, j int) bool {
			return series[i].BeginMs < series[j].BeginMs
		})
	}

	return nil
}

// GetByTicker retrieves all candles of a series, ordered by begin_ms ASC.
func (s *CandleStore) GetByTicker(_ context.Context, ticker, interval string) ([]*domain.Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series := s.series[seriesKey{ticker: ticker, interval: interval}]
	result := make([]*domain.Candle, 0, len(series))
	for _, c := range series {
		candleCopy := *c
		result = append(result, &candleCopy)
	}
	return result, nil
}

// GetByTimeRange retrieves candles of a series with begin_ms within [start, end] (inclusive).
func (s *CandleStore) GetByTimeRange(_ context.Context, ticker, interval string, start, end int64) ([]*domain.Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Candle
	for _, c := range s.series[seriesKey{ticker: ticker, interval: interval}] {
		if c.BeginMs >= start && c.BeginMs <= end {
			candleCopy := *c
			result = append(result, &candleCopy)
		}
	}
	return result, nil
}
