package memory

import (
	"context"
	"sync"

	"token-ledger/internal/domain"
	"token-ledger/internal/storage"
)

// StatStore is an in-memory implementation of storage.StatStore.
type StatStore struct {
	mu   sync.RWMutex
	data map[string]*domain.CurrencyStats // keyed by symbol code
}

// NewStatStore creates a new in-memory currency stats store.
func NewStatStore() *StatStore {
	return &StatStore{
		data: make(map[string]*domain.CurrencyStats),
	}
}

// Get retrieves the currency row for a symbol code. Returns ErrNotFound if not exists.
func (s *StatStore) Get(_ context.Context, symbolCode string) (*domain.CurrencyStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats, exists := s.data[symbolCode]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *stats
	return &copy, nil
}

// Insert adds a new currency row. Returns ErrDuplicateKey if the code exists.
func (s *StatStore) Insert(_ context.Context, stats *domain.CurrencyStats) error {
	if stats == nil || stats.MaxSupply.Symbol.Code == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	code := stats.MaxSupply.Symbol.Code
	if _, exists := s.data[code]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *stats
	s.data[code] = &copy
	return nil
}

// Update replaces an existing currency row. Returns ErrNotFound if not exists.
func (s *StatStore) Update(_ context.Context, stats *domain.CurrencyStats) error {
	if stats == nil || stats.MaxSupply.Symbol.Code == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	code := stats.MaxSupply.Symbol.Code
	if _, exists := s.data[code]; !exists {
		return storage.ErrNotFound
	}

	copy := *stats
	s.data[code] = &copy
	return nil
}

var _ storage.StatStore = (*StatStore)(nil)
