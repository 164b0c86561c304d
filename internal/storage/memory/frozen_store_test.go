package memory

import (
	"context"
	"errors"
	"testing"

	"token-ledger/internal/storage"
)

func TestFrozenStore_AddContainsRemove(t *testing.T) {
	store := NewFrozenStore()
	ctx := context.Background()

	frozen, err := store.Contains(ctx, "bob")
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if frozen {
		t.Error("Expected bob not frozen initially")
	}

	if err := store.Add(ctx, "bob"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	frozen, _ = store.Contains(ctx, "bob")
	if !frozen {
		t.Error("Expected bob frozen after Add")
	}

	if err := store.Remove(ctx, "bob"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	frozen, _ = store.Contains(ctx, "bob")
	if frozen {
		t.Error("Expected bob not frozen after Remove")
	}
}

func TestFrozenStore_DoubleAdd(t *testing.T) {
	store := NewFrozenStore()
	ctx := context.Background()

	if err := store.Add(ctx, "bob"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := store.Add(ctx, "bob"); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestFrozenStore_RemoveMissing(t *testing.T) {
	store := NewFrozenStore()

	err := store.Remove(context.Background(), "bob")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestFrozenStore_ListOrdered(t *testing.T) {
	store := NewFrozenStore()
	ctx := context.Background()

	for _, owner := range []string{"carol", "alice", "bob"} {
		if err := store.Add(ctx, domainName(owner)); err != nil {
			t.Fatalf("Add(%s) failed: %v", owner, err)
		}
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(list))
	}
	if list[0] != "alice" || list[1] != "bob" || list[2] != "carol" {
		t.Errorf("Unexpected order: %v", list)
	}
}
