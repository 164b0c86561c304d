package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"token-ledger/internal/domain"
	"token-ledger/internal/storage"
)

// AccountStore is an in-memory implementation of storage.AccountStore.
type AccountStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Account // keyed by owner|symbol code
}

// NewAccountStore creates a new in-memory balance store.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		data: make(map[string]*domain.Account),
	}
}

// accountKey generates a unique key for a balance row.
func accountKey(owner domain.AccountName, symbolCode string) string {
	return fmt.Sprintf("%s|%s", owner, symbolCode)
}

// Get retrieves a balance row. Returns ErrNotFound if not exists.
func (s *AccountStore) Get(_ context.Context, owner domain.AccountName, symbolCode string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, exists := s.data[accountKey(owner, symbolCode)]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *account
	return &copy, nil
}

// Insert adds a new balance row. Returns ErrDuplicateKey if the key exists.
func (s *AccountStore) Insert(_ context.Context, symbolCode string, account *domain.Account) error {
	if account == nil || account.Owner == "" || symbolCode == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := accountKey(account.Owner, symbolCode)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *account
	s.data[key] = &copy
	return nil
}

// Update replaces an existing balance row. Returns ErrNotFound if not exists.
func (s *AccountStore) Update(_ context.Context, symbolCode string, account *domain.Account) error {
	if account == nil || account.Owner == "" || symbolCode == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := accountKey(account.Owner, symbolCode)
	if _, exists := s.data[key]; !exists {
		return storage.ErrNotFound
	}

	copy := *account
	s.data[key] = &copy
	return nil
}

// Delete removes a balance row. Returns ErrNotFound if not exists.
func (s *AccountStore) Delete(_ context.Context, owner domain.AccountName, symbolCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := accountKey(owner, symbolCode)
	if _, exists := s.data[key]; !exists {
		return storage.ErrNotFound
	}

	delete(s.data, key)
	return nil
}

// ListByOwner retrieves all balance rows of an owner, ordered by symbol code ASC.
func (s *AccountStore) ListByOwner(_ context.Context, owner domain.AccountName) ([]*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Account
	for _, account := range s.data {
		if account.Owner == owner {
			copy := *account
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Balance.Symbol.Code < result[j].Balance.Symbol.Code
	})

	return result, nil
}

var _ storage.AccountStore = (*AccountStore)(nil)
