package ledger

import (
	"context"
	"errors"
	"fmt"

	"token-ledger/internal/domain"
	"token-ledger/internal/storage"
)

// Accounts owns the per-(owner, symbol) balance rows and the global
// frozen-account set. Freeze policy is enforced by the caller (Token),
// since which sides of an action the frozen check applies to differs per
// action type; Accounts only serves the membership mutations and query.
type Accounts struct {
	balances storage.AccountStore
	frozen   storage.FrozenStore
}

// NewAccounts creates an account ledger over the given stores.
func NewAccounts(balances storage.AccountStore, frozen storage.FrozenStore) *Accounts {
	return &Accounts{balances: balances, frozen: frozen}
}

// Balance retrieves a balance row. Returns storage.ErrNotFound if the owner
// has no open slot for the symbol (distinct from a zero balance).
func (a *Accounts) Balance(ctx context.Context, owner domain.AccountName, symbolCode string) (*domain.Account, error) {
	return a.balances.Get(ctx, owner, symbolCode)
}

// ListBalances retrieves all balance rows of an owner.
func (a *Accounts) ListBalances(ctx context.Context, owner domain.AccountName) ([]*domain.Account, error) {
	return a.balances.ListByOwner(ctx, owner)
}

// Open creates a zero-balance row for (owner, symbol) charged to payer.
// Opening an existing row is a no-op.
func (a *Accounts) Open(ctx context.Context, owner domain.AccountName, symbol domain.Symbol, payer domain.AccountName) error {
	row := &domain.Account{
		Owner:   owner,
		Balance: domain.Asset{Amount: 0, Symbol: symbol},
		Payer:   payer,
	}
	err := a.balances.Insert(ctx, symbol.Code, row)
	if errors.Is(err, storage.ErrDuplicateKey) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("insert balance row: %w", err)
	}
	return nil
}

// Close removes the (owner, symbol) row. The balance must be exactly zero.
func (a *Accounts) Close(ctx context.Context, owner domain.AccountName, symbolCode string) error {
	row, err := a.balances.Get(ctx, owner, symbolCode)
	if errors.Is(err, storage.ErrNotFound) {
		return errState("Balance row already deleted or never existed. Action won't have any effect.")
	}
	if err != nil {
		return fmt.Errorf("get balance row: %w", err)
	}
	if row.Balance.Amount != 0 {
		return errState("Cannot close because the balance is not zero.")
	}

	if err := a.balances.Delete(ctx, owner, symbolCode); err != nil {
		return fmt.Errorf("delete balance row: %w", err)
	}
	return nil
}

// Credit adds quantity to the owner's balance, opening the row on first
// credit with payer as the row's payer of record. Returns the resulting
// balance.
func (a *Accounts) Credit(ctx context.Context, owner domain.AccountName, quantity domain.Asset, payer domain.AccountName) (domain.Asset, error) {
	row, err := a.balances.Get(ctx, owner, quantity.Symbol.Code)
	if errors.Is(err, storage.ErrNotFound) {
		row = &domain.Account{
			Owner:   owner,
			Balance: quantity,
			Payer:   payer,
		}
		if err := a.balances.Insert(ctx, quantity.Symbol.Code, row); err != nil {
			return domain.Asset{}, fmt.Errorf("insert balance row: %w", err)
		}
		return row.Balance, nil
	}
	if err != nil {
		return domain.Asset{}, fmt.Errorf("get balance row: %w", err)
	}

	newBalance, err := row.Balance.Add(quantity)
	if err != nil {
		return domain.Asset{}, errOverflow(domain.ErrAmountOverflow.Error())
	}
	row.Balance = newBalance
	if err := a.balances.Update(ctx, quantity.Symbol.Code, row); err != nil {
		return domain.Asset{}, fmt.Errorf("update balance row: %w", err)
	}
	return newBalance, nil
}

// Debit subtracts quantity from the owner's balance. Fails if the row is
// absent or the balance would go negative. Returns the resulting balance.
func (a *Accounts) Debit(ctx context.Context, owner domain.AccountName, quantity domain.Asset) (domain.Asset, error) {
	row, err := a.balances.Get(ctx, owner, quantity.Symbol.Code)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.Asset{}, errState("no balance object found")
	}
	if err != nil {
		return domain.Asset{}, fmt.Errorf("get balance row: %w", err)
	}
	if row.Balance.Amount < quantity.Amount {
		return domain.Asset{}, errState("overdrawn balance")
	}

	newBalance, err := row.Balance.Sub(quantity)
	if err != nil {
		return domain.Asset{}, errOverflow(domain.ErrAmountOverflow.Error())
	}
	row.Balance = newBalance
	if err := a.balances.Update(ctx, quantity.Symbol.Code, row); err != nil {
		return domain.Asset{}, fmt.Errorf("update balance row: %w", err)
	}
	return newBalance, nil
}

// Transfer moves quantity from one account to the other. Both precondition
// checks run before either row is written, so a rejected transfer leaves no
// partial effect. Returns the resulting (from, to) balances.
func (a *Accounts) Transfer(ctx context.Context, from, to domain.AccountName, quantity domain.Asset) (domain.Asset, domain.Asset, error) {
	symbolCode := quantity.Symbol.Code

	fromRow, err := a.balances.Get(ctx, from, symbolCode)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.Asset{}, domain.Asset{}, errState("no balance object found")
	}
	if err != nil {
		return domain.Asset{}, domain.Asset{}, fmt.Errorf("get sender balance: %w", err)
	}
	if fromRow.Balance.Amount < quantity.Amount {
		return domain.Asset{}, domain.Asset{}, errState("overdrawn balance")
	}
	newFrom, err := fromRow.Balance.Sub(quantity)
	if err != nil {
		return domain.Asset{}, domain.Asset{}, errOverflow(domain.ErrAmountOverflow.Error())
	}

	toRow, err := a.balances.Get(ctx, to, symbolCode)
	createTo := errors.Is(err, storage.ErrNotFound)
	if err != nil && !createTo {
		return domain.Asset{}, domain.Asset{}, fmt.Errorf("get receiver balance: %w", err)
	}

	newTo := quantity
	if !createTo {
		newTo, err = toRow.Balance.Add(quantity)
		if err != nil {
			return domain.Asset{}, domain.Asset{}, errOverflow(domain.ErrAmountOverflow.Error())
		}
	}

	fromRow.Balance = newFrom
	if err := a.balances.Update(ctx, symbolCode, fromRow); err != nil {
		return domain.Asset{}, domain.Asset{}, fmt.Errorf("update sender balance: %w", err)
	}
	if createTo {
		// New receivers get their row charged to the sender.
		toRow = &domain.Account{Owner: to, Balance: newTo, Payer: from}
		if err := a.balances.Insert(ctx, symbolCode, toRow); err != nil {
			return domain.Asset{}, domain.Asset{}, fmt.Errorf("insert receiver balance: %w", err)
		}
	} else {
		toRow.Balance = newTo
		if err := a.balances.Update(ctx, symbolCode, toRow); err != nil {
			return domain.Asset{}, domain.Asset{}, fmt.Errorf("update receiver balance: %w", err)
		}
	}

	return newFrom, newTo, nil
}

// IsFrozen reports whether the account is in the frozen set.
func (a *Accounts) IsFrozen(ctx context.Context, owner domain.AccountName) (bool, error) {
	return a.frozen.Contains(ctx, owner)
}

// FrozenAccounts retrieves the frozen set, ordered by name.
func (a *Accounts) FrozenAccounts(ctx context.Context) ([]domain.AccountName, error) {
	return a.frozen.List(ctx)
}

// Freeze adds the account to the frozen set.
func (a *Accounts) Freeze(ctx context.Context, owner domain.AccountName) error {
	err := a.frozen.Add(ctx, owner)
	if errors.Is(err, storage.ErrDuplicateKey) {
		return errState("account already freezed")
	}
	if err != nil {
		return fmt.Errorf("add frozen account: %w", err)
	}
	return nil
}

// Unfreeze removes the account from the frozen set.
func (a *Accounts) Unfreeze(ctx context.Context, owner domain.AccountName) error {
	err := a.frozen.Remove(ctx, owner)
	if errors.Is(err, storage.ErrNotFound) {
		return errState("account not freezed")
	}
	if err != nil {
		return fmt.Errorf("remove frozen account: %w", err)
	}
	return nil
}
