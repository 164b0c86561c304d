package postgres

import (
	"context"
	"fmt"

	"token-ledger/internal/domain"
	"token-ledger/internal/storage"
)

// FrozenStore implements storage.FrozenStore using PostgreSQL.
type FrozenStore struct {
	pool *Pool
}

// NewFrozenStore creates a new FrozenStore.
func NewFrozenStore(pool *Pool) *FrozenStore {
	return &FrozenStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FrozenStore = (*FrozenStore)(nil)

// Contains reports whether the account is in the frozen set.
func (s *FrozenStore) Contains(ctx context.Context, owner domain.AccountName) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM frozen_accounts WHERE owner = $1)`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, string(owner)).Scan(&exists); err != nil {
		return false, fmt.Errorf("query frozen account: %w", err)
	}
	return exists, nil
}

// Add inserts the account into the set. Returns ErrDuplicateKey if already a member.
func (s *FrozenStore) Add(ctx context.Context, owner domain.AccountName) error {
	query := `INSERT INTO frozen_accounts (owner) VALUES ($1)`

	_, err := s.pool.Exec(ctx, query, string(owner))
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert frozen account: %w", err)
	}
	return nil
}

// Remove deletes the account from the set. Returns ErrNotFound if not a member.
func (s *FrozenStore) Remove(ctx context.Context, owner domain.AccountName) error {
	query := `DELETE FROM frozen_accounts WHERE owner = $1`

	tag, err := s.pool.Exec(ctx, query, string(owner))
	if err != nil {
		return fmt.Errorf("delete frozen account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// List retrieves all frozen accounts, ordered by name ASC.
func (s *FrozenStore) List(ctx context.Context) ([]domain.AccountName, error) {
	query := `SELECT owner FROM frozen_accounts ORDER BY owner ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list frozen accounts: %w", err)
	}
	defer rows.Close()

	var owners []domain.AccountName
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("scan frozen account row: %w", err)
		}
		owners = append(owners, domain.AccountName(owner))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate frozen account rows: %w", err)
	}
	return owners, nil
}
