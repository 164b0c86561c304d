package authz

import (
	"context"
	"fmt"
	"sync"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"token-ledger/internal/domain"
)

// KeyGate is a key-based gate: each account registers an ed25519 public
// key, and a caller holds an account's authority when both map to the same
// key. This mirrors deployments where a single operator key controls
// several account names.
type KeyGate struct {
	mu   sync.RWMutex
	keys map[domain.AccountName]string // account -> base58 public key
}

// NewKeyGate creates an empty key registry.
func NewKeyGate() *KeyGate {
	return &KeyGate{keys: make(map[domain.AccountName]string)}
}

// RegisterKey binds a base58-encoded ed25519 public key to an account.
// The key must decode to 32 bytes and be a valid curve point.
func (g *KeyGate) RegisterKey(account domain.AccountName, pubkey string) error {
	if !account.Valid() {
		return fmt.Errorf("register key: invalid account name %q", account)
	}
	decoded, err := base58.Decode(pubkey)
	if err != nil {
		return fmt.Errorf("register key for %s: decode base58: %w", account, err)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("register key for %s: expected 32 bytes, got %d", account, len(decoded))
	}
	if _, err := new(edwards25519.Point).SetBytes(decoded); err != nil {
		return fmt.Errorf("register key for %s: not a valid ed25519 point: %w", account, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.keys[account] = pubkey
	return nil
}

// Authorized reports whether caller and account share a registered key.
// An account without a registered key is controlled only by itself.
func (g *KeyGate) Authorized(_ context.Context, caller, account domain.AccountName) (bool, error) {
	if caller == account {
		return true, nil
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	accountKey, ok := g.keys[account]
	if !ok {
		return false, nil
	}
	callerKey, ok := g.keys[caller]
	if !ok {
		return false, nil
	}
	return accountKey == callerKey, nil
}

var _ Gate = (*KeyGate)(nil)
