package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-ledger/internal/domain"
	"token-ledger/internal/storage"
)

func TestFrozenStore_AddContainsRemove(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewFrozenStore(pool)

	frozen, err := store.Contains(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, frozen)

	require.NoError(t, store.Add(ctx, "alice"))

	frozen, err = store.Contains(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, frozen)

	assert.ErrorIs(t, store.Add(ctx, "alice"), storage.ErrDuplicateKey)

	require.NoError(t, store.Remove(ctx, "alice"))
	frozen, err = store.Contains(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, frozen)

	assert.ErrorIs(t, store.Remove(ctx, "alice"), storage.ErrNotFound)
}

func TestFrozenStore_List(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewFrozenStore(pool)

	require.NoError(t, store.Add(ctx, "carol"))
	require.NoError(t, store.Add(ctx, "alice"))
	require.NoError(t, store.Add(ctx, "bob"))

	owners, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.AccountName{"alice", "bob", "carol"}, owners)
}
