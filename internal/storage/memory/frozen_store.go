package memory

import (
	"context"
	"sort"
	"sync"

	"token-ledger/internal/domain"
	"token-ledger/internal/storage"
)

// FrozenStore is an in-memory implementation of storage.FrozenStore.
type FrozenStore struct {
	mu   sync.RWMutex
	data map[domain.AccountName]struct{}
}

// NewFrozenStore creates a new in-memory frozen-account set.
func NewFrozenStore() *FrozenStore {
	return &FrozenStore{
		data: make(map[domain.AccountName]struct{}),
	}
}

// Contains reports whether the account is in the frozen set.
func (s *FrozenStore) Contains(_ context.Context, owner domain.AccountName) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.data[owner]
	return exists, nil
}

// Add inserts the account into the set. Returns ErrDuplicateKey if already a member.
func (s *FrozenStore) Add(_ context.Context, owner domain.AccountName) error {
	if owner == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[owner]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[owner] = struct{}{}
	return nil
}

// Remove deletes the account from the set. Returns ErrNotFound if not a member.
func (s *FrozenStore) Remove(_ context.Context, owner domain.AccountName) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[owner]; !exists {
		return storage.ErrNotFound
	}

	delete(s.data, owner)
	return nil
}

// List retrieves all frozen accounts, ordered by name ASC.
func (s *FrozenStore) List(_ context.Context) ([]domain.AccountName, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.AccountName, 0, len(s.data))
	for owner := range s.data {
		result = append(result, owner)
	}

	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })

	return result, nil
}

var _ storage.FrozenStore = (*FrozenStore)(nil)
