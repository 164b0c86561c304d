package domain

// AccountName is an account identifier: 1-12 chars of a-z, 1-5 and dots.
type AccountName string

// Valid reports whether the name fits the account charset and length rules.
func (n AccountName) Valid() bool {
	if len(n) == 0 || len(n) > 12 {
		return false
	}
	for i := 0; i < len(n); i++ {
		c := n[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '1' && c <= '5':
		case c == '.':
		default:
			return false
		}
	}
	return true
}

// Account is a per-(owner, symbol) balance row.
// Absence of the row means the owner holds no open slot for the symbol,
// which is distinct from an open row with a zero balance.
type Account struct {
	Owner   AccountName // row owner
	Balance Asset       // current balance, never negative
	Payer   AccountName // account charged for the row (open's ram_payer)
}
