package ledger

import (
	"context"
	"errors"
	"fmt"

	"token-ledger/internal/domain"
	"token-ledger/internal/storage"
)

// Registry owns the per-symbol currency rows: creation, supply accounting
// and the paused flag. Trust-state and authorization policy live in Token;
// the registry only enforces the numeric invariants of a single currency.
type Registry struct {
	stats storage.StatStore
}

// NewRegistry creates a currency registry over the given stat store.
func NewRegistry(stats storage.StatStore) *Registry {
	return &Registry{stats: stats}
}

// Get retrieves the currency row for a symbol code.
// Returns storage.ErrNotFound if the currency was never created.
func (r *Registry) Get(ctx context.Context, symbolCode string) (*domain.CurrencyStats, error) {
	return r.stats.Get(ctx, symbolCode)
}

// Create registers a new currency with supply 0 and the given ceiling.
func (r *Registry) Create(ctx context.Context, issuer domain.AccountName, maxSupply domain.Asset) error {
	if err := maxSupply.Validate(); err != nil {
		if errors.Is(err, domain.ErrAmountOverflow) {
			return errOverflow(err.Error())
		}
		return errValidation("invalid symbol name")
	}
	if maxSupply.Amount <= 0 {
		return errValidation("max-supply must be positive")
	}
	if !issuer.Valid() {
		return errValidation("invalid account name")
	}

	stats := &domain.CurrencyStats{
		Supply:    domain.Asset{Amount: 0, Symbol: maxSupply.Symbol},
		MaxSupply: maxSupply,
		Issuer:    issuer,
		Paused:    false,
	}
	if err := r.stats.Insert(ctx, stats); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return errState("token with symbol already exists")
		}
		return fmt.Errorf("insert currency stats: %w", err)
	}
	return nil
}

// Issue increments supply by quantity, bounded by max-supply.
// stats is mutated in place on success.
func (r *Registry) Issue(ctx context.Context, stats *domain.CurrencyStats, quantity domain.Asset) error {
	if err := quantity.Validate(); err != nil {
		if errors.Is(err, domain.ErrAmountOverflow) {
			return errOverflow(err.Error())
		}
		return errValidation("invalid symbol name")
	}
	if quantity.Amount <= 0 {
		return errValidation("must issue positive quantity")
	}
	if !quantity.Symbol.Equal(stats.Supply.Symbol) {
		return errValidation("symbol precision mismatch")
	}

	newSupply, err := stats.Supply.Add(quantity)
	if err != nil {
		return errOverflow(domain.ErrAmountOverflow.Error())
	}
	if newSupply.Amount > stats.MaxSupply.Amount {
		return errState("quantity exceeds available supply")
	}

	stats.Supply = newSupply
	if err := r.stats.Update(ctx, stats); err != nil {
		return fmt.Errorf("update currency stats: %w", err)
	}
	return nil
}

// Retire decrements supply by quantity. The caller is responsible for
// debiting the issuer's balance first; supply itself can never underflow
// past the issuer's holdings.
func (r *Registry) Retire(ctx context.Context, stats *domain.CurrencyStats, quantity domain.Asset) error {
	if err := quantity.Validate(); err != nil {
		if errors.Is(err, domain.ErrAmountOverflow) {
			return errOverflow(err.Error())
		}
		return errValidation("invalid symbol name")
	}
	if quantity.Amount <= 0 {
		return errValidation("must retire positive quantity")
	}
	if !quantity.Symbol.Equal(stats.Supply.Symbol) {
		return errValidation("symbol precision mismatch")
	}
	if stats.Supply.Amount < quantity.Amount {
		return errState("overdrawn balance")
	}

	newSupply, err := stats.Supply.Sub(quantity)
	if err != nil {
		return errOverflow(domain.ErrAmountOverflow.Error())
	}

	stats.Supply = newSupply
	if err := r.stats.Update(ctx, stats); err != nil {
		return fmt.Errorf("update currency stats: %w", err)
	}
	return nil
}

// Pause blocks transfers of the currency until Unpause.
func (r *Registry) Pause(ctx context.Context, stats *domain.CurrencyStats) error {
	if stats.Paused {
		return errState("token already paused")
	}
	stats.Paused = true
	if err := r.stats.Update(ctx, stats); err != nil {
		return fmt.Errorf("update currency stats: %w", err)
	}
	return nil
}

// Unpause re-enables transfers of the currency.
func (r *Registry) Unpause(ctx context.Context, stats *domain.CurrencyStats) error {
	if !stats.Paused {
		return errState("token not paused")
	}
	stats.Paused = false
	if err := r.stats.Update(ctx, stats); err != nil {
		return fmt.Errorf("update currency stats: %w", err)
	}
	return nil
}
