package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"token-ledger/internal/domain"
	"token-ledger/internal/storage"
)

// AccountStore implements storage.AccountStore using PostgreSQL.
type AccountStore struct {
	pool *Pool
}

// NewAccountStore creates a new AccountStore.
func NewAccountStore(pool *Pool) *AccountStore {
	return &AccountStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AccountStore = (*AccountStore)(nil)

// Get retrieves a balance row. Returns ErrNotFound if not exists.
func (s *AccountStore) Get(ctx context.Context, owner domain.AccountName, symbolCode string) (*domain.Account, error) {
	query := `
		SELECT owner, symbol_code, precision, balance, payer
		FROM accounts
		WHERE owner = $1 AND symbol_code = $2
	`

	row := s.pool.QueryRow(ctx, query, string(owner), symbolCode)
	account, err := scanAccount(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get balance row: %w", err)
	}
	return account, nil
}

// Insert adds a new balance row. Returns ErrDuplicateKey if the key exists.
func (s *AccountStore) Insert(ctx context.Context, symbolCode string, account *domain.Account) error {
	query := `
		INSERT INTO accounts (owner, symbol_code, precision, balance, payer)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query,
		string(account.Owner),
		symbolCode,
		account.Balance.Symbol.Precision,
		account.Balance.Amount,
		string(account.Payer),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert balance row: %w", err)
	}
	return nil
}

// Update replaces an existing balance row. Returns ErrNotFound if not exists.
func (s *AccountStore) Update(ctx context.Context, symbolCode string, account *domain.Account) error {
	query := `
		UPDATE accounts
		SET balance = $3, payer = $4
		WHERE owner = $1 AND symbol_code = $2
	`

	tag, err := s.pool.Exec(ctx, query,
		string(account.Owner),
		symbolCode,
		account.Balance.Amount,
		string(account.Payer),
	)
	if err != nil {
		return fmt.Errorf("update balance row: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Delete removes a balance row. Returns ErrNotFound if not exists.
func (s *AccountStore) Delete(ctx context.Context, owner domain.AccountName, symbolCode string) error {
	query := `DELETE FROM accounts WHERE owner = $1 AND symbol_code = $2`

	tag, err := s.pool.Exec(ctx, query, string(owner), symbolCode)
	if err != nil {
		return fmt.Errorf("delete balance row: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListByOwner retrieves all balance rows of an owner, ordered by symbol code ASC.
func (s *AccountStore) ListByOwner(ctx context.Context, owner domain.AccountName) ([]*domain.Account, error) {
	query := `
		SELECT owner, symbol_code, precision, balance, payer
		FROM accounts
		WHERE owner = $1
		ORDER BY symbol_code ASC
	`

	rows, err := s.pool.Query(ctx, query, string(owner))
	if err != nil {
		return nil, fmt.Errorf("list balance rows: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan balance row: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate balance rows: %w", err)
	}
	return accounts, nil
}

// scanAccount scans a single row into an Account.
func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account   domain.Account
		owner     string
		code      string
		precision uint8
		payer     string
	)

	err := row.Scan(
		&owner,
		&code,
		&precision,
		&account.Balance.Amount,
		&payer,
	)
	if err != nil {
		return nil, err
	}

	account.Owner = domain.AccountName(owner)
	account.Balance.Symbol = domain.Symbol{Precision: precision, Code: code}
	account.Payer = domain.AccountName(payer)
	return &account, nil
}
