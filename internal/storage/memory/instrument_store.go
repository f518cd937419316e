package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"moex-iss/internal/domain"
	"moex-iss/internal/storage"
)

// InstrumentStore is an in-memory implementation of storage.InstrumentStore.
type InstrumentStore struct {
	mu       sync.RWMutex
	byTicker map[string]*domain.Instrument
}

// NewInstrumentStore creates a new in-memory instrument store.
func NewInstrumentStore() *InstrumentStore {
	return &InstrumentStore{
		byTicker: make(map[string]*domain.Instrument),
	}
}

// Compile-time interface check.
var _ storage.InstrumentStore = (*InstrumentStore)(nil)

// Insert adds a new instrument. Returns ErrDuplicateKey if ticker exists.
func (s *InstrumentStore) Insert(_ context.Context, inst *domain.Instrument) error {
	if inst == nil || inst.Ticker == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byTicker[inst.Ticker]; exists {
		return storage.ErrDuplicateKey
	}

	instCopy := *inst
	if instCopy.CreatedAt == 0 {
		instCopy.CreatedAt = time.Now().UnixMilli()
	}
	s.byTicker[inst.Ticker] = &instCopy
	return nil
}

// GetByTicker retrieves an instrument by ticker. Returns ErrNotFound if not exists.
func (s *InstrumentStore) GetByTicker(_ context.Context, ticker string) (*domain.Instrument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, exists := s.byTicker[ticker]
	if !exists {
		return nil, storage.ErrNotFound
	}

	instCopy := *inst
	return &instCopy, nil
}

// List retrieves all instruments, ordered by ticker ASC.
func (s *InstrumentStore) List(_ context.Context) ([]*domain.Instrument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Instrument, 0, len(s.byTicker))
	for _, inst := range s.byTicker {
		instCopy := *inst
		result = append(result, &instCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Ticker < result[j].Ticker
	})
	return result, nil
}
