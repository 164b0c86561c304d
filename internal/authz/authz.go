// Package authz answers whether a caller holds authority for an account.
// The ledger core treats any gate failure as a hard abort and performs no
// retry and no partial effect.
package authz

import (
	"context"
	"sync"

	"token-ledger/internal/domain"
)

// Gate is the authority predicate consulted before every action.
type Gate interface {
	// Authorized reports whether caller holds the authority of account.
	Authorized(ctx context.Context, caller, account domain.AccountName) (bool, error)
}

// GateFunc adapts a function to the Gate interface.
type GateFunc func(ctx context.Context, caller, account domain.AccountName) (bool, error)

// Authorized calls f.
func (f GateFunc) Authorized(ctx context.Context, caller, account domain.AccountName) (bool, error) {
	return f(ctx, caller, account)
}

// StaticGate authorizes every account for itself plus explicitly granted
// proxies. It is the in-process gate used by tests and single-node runs.
type StaticGate struct {
	mu     sync.RWMutex
	grants map[domain.AccountName]map[domain.AccountName]struct{} // account -> callers
}

// NewStaticGate creates a gate with self-authorization only.
func NewStaticGate() *StaticGate {
	return &StaticGate{grants: make(map[domain.AccountName]map[domain.AccountName]struct{})}
}

// Grant allows caller to act with the authority of account.
func (g *StaticGate) Grant(account, caller domain.AccountName) {
	g.mu.Lock()
	defer g.mu.Unlock()

	callers, ok := g.grants[account]
	if !ok {
		callers = make(map[domain.AccountName]struct{})
		g.grants[account] = callers
	}
	callers[caller] = struct{}{}
}

// Revoke withdraws a previously granted proxy authority.
func (g *StaticGate) Revoke(account, caller domain.AccountName) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if callers, ok := g.grants[account]; ok {
		delete(callers, caller)
	}
}

// Authorized reports whether caller is account itself or a granted proxy.
func (g *StaticGate) Authorized(_ context.Context, caller, account domain.AccountName) (bool, error) {
	if caller == account {
		return true, nil
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	if callers, ok := g.grants[account]; ok {
		if _, ok := callers[caller]; ok {
			return true, nil
		}
	}
	return false, nil
}

var _ Gate = (*StaticGate)(nil)
