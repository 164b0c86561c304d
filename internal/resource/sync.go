// Package resource mirrors balances of the designated resource-backing
// token into the external per-account resource quota.
package resource

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"

	"token-ledger/internal/domain"
)

// Quota is the per-account resource triple held by the external
// resource-limit ledger. Only Bytes is managed here; the other two
// components are read and written back untouched.
type Quota struct {
	Bytes int64 // storage allotment in bytes (managed)
	Net   int64 // bandwidth weight (passthrough)
	CPU   int64 // compute weight (passthrough)
}

// LimitLedger is the external resource-limit ledger.
type LimitLedger interface {
	// GetQuota retrieves the account's current quota triple.
	GetQuota(ctx context.Context, account domain.AccountName) (Quota, error)

	// SetQuota writes the account's quota triple.
	SetQuota(ctx context.Context, account domain.AccountName, quota Quota) error
}

// OptOutSource answers whether an account manages its own quota and must
// not be touched by automatic synchronization (a governance-record flag).
type OptOutSource interface {
	OptedOut(ctx context.Context, account domain.AccountName) (bool, error)
}

// Config fixes the deployment's backing token and conversion scale.
type Config struct {
	BackingSymbol domain.Symbol // token whose balance backs the quota
	BytesPerToken int64         // quota bytes represented by one whole token
}

// DefaultConfig is the stock deployment: 8-decimal RAM token, 1 token = 1KiB.
func DefaultConfig() Config {
	return Config{
		BackingSymbol: domain.Symbol{Precision: 8, Code: "RAM"},
		BytesPerToken: 1024,
	}
}

// Sync pushes backing-token balance changes into the limit ledger.
type Sync struct {
	cfg    Config
	limits LimitLedger
	optOut OptOutSource
}

// New creates a Sync against the external limit ledger and opt-out source.
func New(cfg Config, limits LimitLedger, optOut OptOutSource) *Sync {
	return &Sync{cfg: cfg, limits: limits, optOut: optOut}
}

// Applies reports whether balances of the symbol are quota-backing.
func (s *Sync) Applies(symbol domain.Symbol) bool {
	return symbol.Equal(s.cfg.BackingSymbol)
}

// Apply recomputes the account's byte quota from its resulting
// backing-token balance and writes it back, leaving the other two quota
// components untouched. Accounts that opted out are skipped entirely.
func (s *Sync) Apply(ctx context.Context, account domain.AccountName, balance domain.Asset) error {
	if !s.Applies(balance.Symbol) {
		return nil
	}

	optedOut, err := s.optOut.OptedOut(ctx, account)
	if err != nil {
		return fmt.Errorf("query quota opt-out for %s: %w", account, err)
	}
	if optedOut {
		return nil
	}

	quota, err := s.limits.GetQuota(ctx, account)
	if err != nil {
		return fmt.Errorf("get quota for %s: %w", account, err)
	}
	quota.Bytes = BalanceToBytes(s.cfg, balance.Amount)
	if err := s.limits.SetQuota(ctx, account, quota); err != nil {
		return fmt.Errorf("set quota for %s: %w", account, err)
	}
	return nil
}

// BalanceToBytes converts an integer backing-token amount (in smallest
// units) to a byte quota: amount * BytesPerToken / 10^precision, with ties
// at half a byte rounding up. The product is computed in 256-bit width so
// no representable balance can overflow the intermediate.
func BalanceToBytes(cfg Config, amount int64) int64 {
	if amount <= 0 {
		return 0
	}
	divisor := uint64(cfg.BackingSymbol.PrecisionFactor())

	n := uint256.NewInt(uint64(amount))
	n.Mul(n, uint256.NewInt(uint64(cfg.BytesPerToken)))
	n.Add(n, uint256.NewInt(divisor/2))
	n.Div(n, uint256.NewInt(divisor))

	return int64(n.Uint64())
}
