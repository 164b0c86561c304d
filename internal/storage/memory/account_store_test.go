package memory

import (
	"context"
	"errors"
	"testing"

	"token-ledger/internal/domain"
	"token-ledger/internal/storage"
)

func balanceRow(owner domain.AccountName, amount int64, code string) *domain.Account {
	return &domain.Account{
		Owner:   owner,
		Balance: domain.Asset{Amount: amount, Symbol: domain.Symbol{Precision: 3, Code: code}},
		Payer:   owner,
	}
}

func TestAccountStore_InsertAndGet(t *testing.T) {
	store := NewAccountStore()
	ctx := context.Background()

	if err := store.Insert(ctx, "TKN", balanceRow("alice", 500, "TKN")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	account, err := store.Get(ctx, "alice", "TKN")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if account.Balance.Amount != 500 {
		t.Errorf("Balance mismatch: got %d, want 500", account.Balance.Amount)
	}
}

func TestAccountStore_GetMissing(t *testing.T) {
	store := NewAccountStore()

	_, err := store.Get(context.Background(), "alice", "TKN")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestAccountStore_DuplicateKey(t *testing.T) {
	store := NewAccountStore()
	ctx := context.Background()

	if err := store.Insert(ctx, "TKN", balanceRow("alice", 1, "TKN")); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, "TKN", balanceRow("alice", 2, "TKN"))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestAccountStore_SameOwnerDifferentSymbols(t *testing.T) {
	store := NewAccountStore()
	ctx := context.Background()

	if err := store.Insert(ctx, "TKN", balanceRow("alice", 1, "TKN")); err != nil {
		t.Fatalf("Insert TKN failed: %v", err)
	}
	if err := store.Insert(ctx, "CERO", balanceRow("alice", 2, "CERO")); err != nil {
		t.Fatalf("Insert CERO failed: %v", err)
	}

	rows, err := store.ListByOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	// Ordered by symbol code ASC
	if rows[0].Balance.Symbol.Code != "CERO" || rows[1].Balance.Symbol.Code != "TKN" {
		t.Errorf("Unexpected order: %s, %s", rows[0].Balance.Symbol.Code, rows[1].Balance.Symbol.Code)
	}
}

func TestAccountStore_UpdateAndDelete(t *testing.T) {
	store := NewAccountStore()
	ctx := context.Background()

	row := balanceRow("alice", 500, "TKN")
	if err := store.Insert(ctx, "TKN", row); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	row.Balance.Amount = 0
	if err := store.Update(ctx, "TKN", row); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := store.Get(ctx, "alice", "TKN")
	if got.Balance.Amount != 0 {
		t.Errorf("Balance mismatch after update: got %d, want 0", got.Balance.Amount)
	}

	if err := store.Delete(ctx, "alice", "TKN"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := store.Get(ctx, "alice", "TKN"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}

	if err := store.Delete(ctx, "alice", "TKN"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}
