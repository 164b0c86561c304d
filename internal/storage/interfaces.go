package storage

import (
	"context"

	"token-ledger/internal/domain"
)

// StatStore provides access to per-symbol currency rows.
// Rows are keyed by symbol code and are never deleted.
type StatStore interface {
	// Get retrieves the currency row for a symbol code. Returns ErrNotFound if not exists.
	Get(ctx context.Context, symbolCode string) (*domain.CurrencyStats, error)

	// Insert adds a new currency row. Returns ErrDuplicateKey if the code exists.
	Insert(ctx context.Context, stats *domain.CurrencyStats) error

	// Update replaces an existing currency row. Returns ErrNotFound if not exists.
	Update(ctx context.Context, stats *domain.CurrencyStats) error
}

// AccountStore provides access to per-(owner, symbol) balance rows.
type AccountStore interface {
	// Get retrieves a balance row. Returns ErrNotFound if not exists.
	Get(ctx context.Context, owner domain.AccountName, symbolCode string) (*domain.Account, error)

	// Insert adds a new balance row. Returns ErrDuplicateKey if the key exists.
	Insert(ctx context.Context, symbolCode string, account *domain.Account) error

	// Update replaces an existing balance row. Returns ErrNotFound if not exists.
	Update(ctx context.Context, symbolCode string, account *domain.Account) error

	// Delete removes a balance row. Returns ErrNotFound if not exists.
	Delete(ctx context.Context, owner domain.AccountName, symbolCode string) error

	// ListByOwner retrieves all balance rows of an owner, ordered by symbol code ASC.
	ListByOwner(ctx context.Context, owner domain.AccountName) ([]*domain.Account, error)
}

// FrozenStore provides access to the global frozen-account set.
type FrozenStore interface {
	// Contains reports whether the account is in the frozen set.
	Contains(ctx context.Context, owner domain.AccountName) (bool, error)

	// Add inserts the account into the set. Returns ErrDuplicateKey if already a member.
	Add(ctx context.Context, owner domain.AccountName) error

	// Remove deletes the account from the set. Returns ErrNotFound if not a member.
	Remove(ctx context.Context, owner domain.AccountName) error

	// List retrieves all frozen accounts, ordered by name ASC.
	List(ctx context.Context) ([]domain.AccountName, error)
}

// JournalStore provides access to the append-only action journal.
type JournalStore interface {
	// Append adds an applied action record. Returns ErrDuplicateKey if the ID exists.
	Append(ctx context.Context, record *domain.ActionRecord) error

	// GetBySymbol retrieves all records for a symbol code, ordered by sequence ASC.
	GetBySymbol(ctx context.Context, symbolCode string) ([]*domain.ActionRecord, error)

	// GetByAccount retrieves all records touching an account (as from or to),
	// ordered by sequence ASC.
	GetByAccount(ctx context.Context, owner domain.AccountName) ([]*domain.ActionRecord, error)
}
