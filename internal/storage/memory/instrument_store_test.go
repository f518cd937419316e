package memory

import (
	"context"
	"errors"
	"testing"

	"moex-iss/internal/domain"
	"moex-iss/internal/storage"
)

func TestInstrumentStore_InsertAndGetByTicker(t *testing.T) {
	store := NewInstrumentStore()
	ctx := context.Background()

	inst := &domain.Instrument{
		Ticker:        "CRH5",
		MinStep:       "0.001",
		LastTradeDate: "2025-03-20",
		FetchedAt:     1736503200000,
	}

	if err := store.Insert(ctx, inst); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	result, err := store.GetByTicker(ctx, "CRH5")
	if err != nil {
		t.Fatalf("GetByTicker failed: %v", err)
	}

	if result.MinStep != "0.001" {
		t.Errorf("MinStep mismatch: got %s, want 0.001", result.MinStep)
	}
	if result.LastTradeDate != "2025-03-20" {
		t.Errorf("LastTradeDate mismatch: got %s, want 2025-03-20", result.LastTradeDate)
	}
	if result.CreatedAt == 0 {
		t.Error("expected CreatedAt to be set")
	}

	// Mutating the returned copy must not affect the store
	result.MinStep = "1"
	again, _ := store.GetByTicker(ctx, "CRH5")
	if again.MinStep != "0.001" {
		t.Errorf("store was mutated through returned pointer: %s", again.MinStep)
	}
}

func TestInstrumentStore_InsertDuplicate(t *testing.T) {
	store := NewInstrumentStore()
	ctx := context.Background()

	inst := &domain.Instrument{Ticker: "CRH5", MinStep: "0.001"}
	if err := store.Insert(ctx, inst); err != nil {
		t.Fatalf("first Insert failed: %v", err)
	}

	err := store.Insert(ctx, inst)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestInstrumentStore_InvalidInput(t *testing.T) {
	store := NewInstrumentStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Insert(ctx, &domain.Instrument{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty ticker, got %v", err)
	}
}

func TestInstrumentStore_GetByTicker_NotFound(t *testing.T) {
	store := NewInstrumentStore()

	_, err := store.GetByTicker(context.Background(), "nonexistent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestInstrumentStore_List(t *testing.T) {
	store := NewInstrumentStore()
	ctx := context.Background()

	for _, ticker := range []string{"CRZ5", "CRH5", "CRM5"} {
		if err := store.Insert(ctx, &domain.Instrument{Ticker: ticker}); err != nil {
			t.Fatalf("Insert %s failed: %v", ticker, err)
		}
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(list) != 3 {
		t.Fatalf("expected 3 instruments, got %d", len(list))
	}
	for i, want := range []string{"CRH5", "CRM5", "CRZ5"} {
		if list[i].Ticker != want {
			t.Errorf("list[%d]: expected %s, got %s", i, want, list[i].Ticker)
		}
	}
}
