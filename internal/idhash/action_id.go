// Package idhash computes deterministic identifiers for journal records.
package idhash

import (
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"

	"token-ledger/internal/domain"
)

// ActionID computes a deterministic journal record ID using SHA256.
// Formula: SHA256(seq|action|symbol_code|from|to|quantity|precision|memo)
// Returns the base58-encoded hash (typically 43-44 characters).
func ActionID(record *domain.ActionRecord) string {
	data := fmt.Sprintf("%d|%s|%s|%s|%s|%d|%d|%s",
		record.Seq,
		record.Action,
		record.SymbolCode,
		record.From,
		record.To,
		record.Quantity,
		record.Precision,
		record.Memo,
	)

	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}
