package memory

import (
	"context"
	"errors"
	"testing"

	"token-ledger/internal/domain"
	"token-ledger/internal/storage"
)

func tknStats(maxSupply int64) *domain.CurrencyStats {
	sym := domain.Symbol{Precision: 3, Code: "TKN"}
	return &domain.CurrencyStats{
		Supply:    domain.Asset{Amount: 0, Symbol: sym},
		MaxSupply: domain.Asset{Amount: maxSupply, Symbol: sym},
		Issuer:    "alice",
	}
}

func TestStatStore_InsertAndGet(t *testing.T) {
	store := NewStatStore()
	ctx := context.Background()

	if err := store.Insert(ctx, tknStats(1000000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	stats, err := store.Get(ctx, "TKN")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if stats.MaxSupply.Amount != 1000000 {
		t.Errorf("MaxSupply mismatch: got %d, want 1000000", stats.MaxSupply.Amount)
	}
	if stats.Issuer != "alice" {
		t.Errorf("Issuer mismatch: got %s, want alice", stats.Issuer)
	}
}

func TestStatStore_GetMissing(t *testing.T) {
	store := NewStatStore()

	_, err := store.Get(context.Background(), "TKN")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestStatStore_DuplicateKey(t *testing.T) {
	store := NewStatStore()
	ctx := context.Background()

	if err := store.Insert(ctx, tknStats(1000)); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, tknStats(2000))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestStatStore_Update(t *testing.T) {
	store := NewStatStore()
	ctx := context.Background()

	stats := tknStats(1000000)
	if err := store.Insert(ctx, stats); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	stats.Supply.Amount = 500000
	stats.Paused = true
	if err := store.Update(ctx, stats); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.Get(ctx, "TKN")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Supply.Amount != 500000 {
		t.Errorf("Supply mismatch: got %d, want 500000", got.Supply.Amount)
	}
	if !got.Paused {
		t.Error("Expected Paused=true")
	}
}

func TestStatStore_UpdateMissing(t *testing.T) {
	store := NewStatStore()

	err := store.Update(context.Background(), tknStats(1000))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestStatStore_GetReturnsCopy(t *testing.T) {
	store := NewStatStore()
	ctx := context.Background()

	if err := store.Insert(ctx, tknStats(1000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	first, _ := store.Get(ctx, "TKN")
	first.Supply.Amount = 999

	second, _ := store.Get(ctx, "TKN")
	if second.Supply.Amount != 0 {
		t.Errorf("Mutation leaked into store: got %d, want 0", second.Supply.Amount)
	}
}
