package resource

import (
	"context"
	"sync"

	"token-ledger/internal/domain"
)

// MemoryLimits is an in-memory LimitLedger for tests and single-node runs.
type MemoryLimits struct {
	mu     sync.RWMutex
	quotas map[domain.AccountName]Quota
}

// NewMemoryLimits creates an empty in-memory limit ledger.
func NewMemoryLimits() *MemoryLimits {
	return &MemoryLimits{quotas: make(map[domain.AccountName]Quota)}
}

// GetQuota retrieves the account's quota triple, zero if never set.
func (m *MemoryLimits) GetQuota(_ context.Context, account domain.AccountName) (Quota, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.quotas[account], nil
}

// SetQuota writes the account's quota triple.
func (m *MemoryLimits) SetQuota(_ context.Context, account domain.AccountName, quota Quota) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotas[account] = quota
	return nil
}

var _ LimitLedger = (*MemoryLimits)(nil)

// StaticOptOut is a fixed opt-out set.
type StaticOptOut struct {
	mu       sync.RWMutex
	optedOut map[domain.AccountName]struct{}
}

// NewStaticOptOut creates an opt-out source with the given members.
func NewStaticOptOut(accounts ...domain.AccountName) *StaticOptOut {
	s := &StaticOptOut{optedOut: make(map[domain.AccountName]struct{}, len(accounts))}
	for _, a := range accounts {
		s.optedOut[a] = struct{}{}
	}
	return s
}

// OptOut adds an account to the set.
func (s *StaticOptOut) OptOut(account domain.AccountName) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.optedOut[account] = struct{}{}
}

// OptedOut reports membership.
func (s *StaticOptOut) OptedOut(_ context.Context, account domain.AccountName) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.optedOut[account]
	return ok, nil
}

var _ OptOutSource = (*StaticOptOut)(nil)
