package clickhouse

import (
	"context"
	"fmt"

	"token-ledger/internal/domain"
	"token-ledger/internal/storage"
)

// JournalStore implements storage.JournalStore using ClickHouse. The journal
// is append-only and read in analytical queries, which is what the columnar
// engine is for.
type JournalStore struct {
	conn *Conn
}

// NewJournalStore creates a new JournalStore.
func NewJournalStore(conn *Conn) *JournalStore {
	return &JournalStore{conn: conn}
}

// Compile-time interface check.
var _ storage.JournalStore = (*JournalStore)(nil)

// Append adds an applied action record. Returns ErrDuplicateKey if the ID exists.
// MergeTree does not enforce uniqueness at insert time, so the ID is checked
// explicitly first; the ledger appends serially, which keeps that race-free.
func (s *JournalStore) Append(ctx context.Context, record *domain.ActionRecord) error {
	exists, err := s.exists(ctx, record.ID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	query := `
		INSERT INTO action_journal (
			id, seq, action, symbol_code, from_account, to_account, quantity, precision, memo, applied_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err = s.conn.Exec(ctx, query,
		record.ID,
		record.Seq,
		record.Action,
		record.SymbolCode,
		string(record.From),
		string(record.To),
		record.Quantity,
		record.Precision,
		record.Memo,
		uint64(record.AppliedAt),
	)
	if err != nil {
		return fmt.Errorf("insert journal record: %w", err)
	}
	return nil
}

// GetBySymbol retrieves all records for a symbol code, ordered by sequence ASC.
func (s *JournalStore) GetBySymbol(ctx context.Context, symbolCode string) ([]*domain.ActionRecord, error) {
	query := `
		SELECT id, seq, action, symbol_code, from_account, to_account, quantity, precision, memo, applied_at
		FROM action_journal
		WHERE symbol_code = ?
		ORDER BY seq ASC
	`

	rows, err := s.conn.Query(ctx, query, symbolCode)
	if err != nil {
		return nil, fmt.Errorf("query by symbol: %w", err)
	}
	defer rows.Close()

	return scanActionRecords(rows)
}

// GetByAccount retrieves all records touching an account (as from or to),
// ordered by sequence ASC.
func (s *JournalStore) GetByAccount(ctx context.Context, owner domain.AccountName) ([]*domain.ActionRecord, error) {
	query := `
		SELECT id, seq, action, symbol_code, from_account, to_account, quantity, precision, memo, applied_at
		FROM action_journal
		WHERE from_account = ? OR to_account = ?
		ORDER BY seq ASC
	`

	rows, err := s.conn.Query(ctx, query, string(owner), string(owner))
	if err != nil {
		return nil, fmt.Errorf("query by account: %w", err)
	}
	defer rows.Close()

	return scanActionRecords(rows)
}

// exists checks if a record with the given ID exists.
func (s *JournalStore) exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT count(*) FROM action_journal WHERE id = ?`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanActionRecords scans multiple rows into a slice.
func scanActionRecords(rows chRows) ([]*domain.ActionRecord, error) {
	var records []*domain.ActionRecord

	for rows.Next() {
		var r domain.ActionRecord
		var from, to string
		var appliedAt uint64

		err := rows.Scan(
			&r.ID, &r.Seq, &r.Action, &r.SymbolCode,
			&from, &to, &r.Quantity, &r.Precision, &r.Memo, &appliedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}

		r.From = domain.AccountName(from)
		r.To = domain.AccountName(to)
		r.AppliedAt = int64(appliedAt)
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal rows: %w", err)
	}

	return records, nil
}
