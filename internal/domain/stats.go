package domain

// CurrencyStats is the per-symbol currency row.
// Created once per symbol code and never deleted.
type CurrencyStats struct {
	Supply    Asset       // circulating supply, 0 <= supply <= max_supply
	MaxSupply Asset       // issuance ceiling, fixed at creation
	Issuer    AccountName // account allowed to issue and retire
	Paused    bool        // true while transfers of this symbol are blocked
}
