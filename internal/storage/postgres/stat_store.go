package postgres

import (
	"context"
	"fmt"

	"token-ledger/internal/domain"
	"token-ledger/internal/storage"
)

// StatStore implements storage.StatStore using PostgreSQL.
type StatStore struct {
	pool *Pool
}

// NewStatStore creates a new StatStore.
func NewStatStore(pool *Pool) *StatStore {
	return &StatStore{pool: pool}
}

// Compile-time interface check.
var _ storage.StatStore = (*StatStore)(nil)

// Get retrieves the currency row for a symbol code. Returns ErrNotFound if not exists.
func (s *StatStore) Get(ctx context.Context, symbolCode string) (*domain.CurrencyStats, error) {
	query := `
		SELECT symbol_code, precision, supply, max_supply, issuer, paused
		FROM currency_stats
		WHERE symbol_code = $1
	`

	var (
		stats     domain.CurrencyStats
		code      string
		precision uint8
		issuer    string
	)
	err := s.pool.QueryRow(ctx, query, symbolCode).Scan(
		&code,
		&precision,
		&stats.Supply.Amount,
		&stats.MaxSupply.Amount,
		&issuer,
		&stats.Paused,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get currency stats: %w", err)
	}

	symbol := domain.Symbol{Precision: precision, Code: code}
	stats.Supply.Symbol = symbol
	stats.MaxSupply.Symbol = symbol
	stats.Issuer = domain.AccountName(issuer)
	return &stats, nil
}

// Insert adds a new currency row. Returns ErrDuplicateKey if the code exists.
func (s *StatStore) Insert(ctx context.Context, stats *domain.CurrencyStats) error {
	query := `
		INSERT INTO currency_stats (symbol_code, precision, supply, max_supply, issuer, paused)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		stats.Supply.Symbol.Code,
		stats.Supply.Symbol.Precision,
		stats.Supply.Amount,
		stats.MaxSupply.Amount,
		string(stats.Issuer),
		stats.Paused,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert currency stats: %w", err)
	}
	return nil
}

// Update replaces an existing currency row. Returns ErrNotFound if not exists.
func (s *StatStore) Update(ctx context.Context, stats *domain.CurrencyStats) error {
	query := `
		UPDATE currency_stats
		SET supply = $2, max_supply = $3, issuer = $4, paused = $5
		WHERE symbol_code = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		stats.Supply.Symbol.Code,
		stats.Supply.Amount,
		stats.MaxSupply.Amount,
		string(stats.Issuer),
		stats.Paused,
	)
	if err != nil {
		return fmt.Errorf("update currency stats: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
