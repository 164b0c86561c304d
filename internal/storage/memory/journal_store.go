package memory

import (
	"context"
	"sort"
	"sync"

	"token-ledger/internal/domain"
	"token-ledger/internal/storage"
)

// JournalStore is an in-memory implementation of storage.JournalStore.
type JournalStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ActionRecord // keyed by record ID
}

// NewJournalStore creates a new in-memory action journal.
func NewJournalStore() *JournalStore {
	return &JournalStore{
		data: make(map[string]*domain.ActionRecord),
	}
}

// Append adds an applied action record. Returns ErrDuplicateKey if the ID exists.
func (s *JournalStore) Append(_ context.Context, record *domain.ActionRecord) error {
	if record == nil || record.ID == "" || record.Action == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[record.ID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *record
	s.data[record.ID] = &copy
	return nil
}

// GetBySymbol retrieves all records for a symbol code, ordered by sequence ASC.
func (s *JournalStore) GetBySymbol(_ context.Context, symbolCode string) ([]*domain.ActionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ActionRecord
	for _, record := range s.data {
		if record.SymbolCode == symbolCode {
			copy := *record
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Seq < result[j].Seq })

	return result, nil
}

// GetByAccount retrieves all records touching an account, ordered by sequence ASC.
func (s *JournalStore) GetByAccount(_ context.Context, owner domain.AccountName) ([]*domain.ActionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ActionRecord
	for _, record := range s.data {
		if record.From == owner || record.To == owner {
			copy := *record
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Seq < result[j].Seq })

	return result, nil
}

var _ storage.JournalStore = (*JournalStore)(nil)
