package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"token-ledger/internal/authz"
	"token-ledger/internal/domain"
	"token-ledger/internal/idhash"
	"token-ledger/internal/observability"
	"token-ledger/internal/resource"
	"token-ledger/internal/storage"
)

// MaxMemoBytes bounds the caller-supplied memo on issue/retire/transfer.
const MaxMemoBytes = 256

// Params wires a Token facade. Registry, Accounts, Gate and Admin are
// required; the rest are optional deployment concerns.
type Params struct {
	Admin    domain.AccountName     // deployment authority for freeze/unfreeze
	Registry *Registry              // currency rows
	Accounts *Accounts              // balance rows + frozen set
	Gate     authz.Gate             // authority predicate
	Resource *resource.Sync         // backing-token quota sync, optional
	Journal  storage.JournalStore   // applied-action journal, optional
	Metrics  *observability.Metrics // optional
	Notify   func(*domain.ActionRecord)
	Now      func() time.Time // optional, defaults to time.Now
}

// Token is the action surface of the ledger. It validates inputs, consults
// the authorization gate, enforces freeze/pause policy, delegates to the
// registry and account ledger, and finally triggers the resource-quota
// sync when the affected symbol is the backing token.
//
// Actions run strictly serially under an internal mutex; within one action
// every check precedes every write, so a rejected action leaves no partial
// effect.
type Token struct {
	mu       sync.Mutex
	admin    domain.AccountName
	registry *Registry
	accounts *Accounts
	gate     authz.Gate
	resource *resource.Sync
	journal  storage.JournalStore
	metrics  *observability.Metrics
	notify   func(*domain.ActionRecord)
	now      func() time.Time
	seq      uint64
}

// New creates the facade. Returns an error on missing required wiring.
func New(p Params) (*Token, error) {
	if p.Registry == nil || p.Accounts == nil || p.Gate == nil {
		return nil, errors.New("ledger: registry, accounts and gate are required")
	}
	if !p.Admin.Valid() {
		return nil, fmt.Errorf("ledger: invalid admin account %q", p.Admin)
	}
	now := p.Now
	if now == nil {
		now = time.Now
	}
	return &Token{
		admin:    p.Admin,
		registry: p.Registry,
		accounts: p.Accounts,
		gate:     p.Gate,
		resource: p.Resource,
		journal:  p.Journal,
		metrics:  p.Metrics,
		notify:   p.Notify,
		now:      now,
	}, nil
}

// Create registers a new currency. Requires the issuer's authority.
func (t *Token) Create(ctx context.Context, caller, issuer domain.AccountName, maxSupply domain.Asset) (err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.observe(domain.ActionCreate, t.now(), &err)

	if err = t.requireAuth(ctx, caller, issuer); err != nil {
		return err
	}
	if err = t.registry.Create(ctx, issuer, maxSupply); err != nil {
		return err
	}

	if t.metrics != nil {
		t.metrics.SupplyUnits.WithLabelValues(maxSupply.Symbol.Code).Set(0)
	}
	return t.commit(ctx, domain.ActionCreate, maxSupply.Symbol.Code, issuer, "", maxSupply, "")
}

// Issue mints quantity to the receiving account. Requires the currency
// issuer's authority. Blocked when either the issuer or the receiver is
// frozen; not blocked by pause.
func (t *Token) Issue(ctx context.Context, caller, to domain.AccountName, quantity domain.Asset, memo string) (err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.observe(domain.ActionIssue, t.now(), &err)

	stats, err := t.registry.Get(ctx, quantity.Symbol.Code)
	if errors.Is(err, storage.ErrNotFound) {
		return errState("token with symbol does not exist, create token before issue")
	}
	if err != nil {
		return fmt.Errorf("get currency stats: %w", err)
	}

	if err = t.requireAuth(ctx, caller, stats.Issuer); err != nil {
		return err
	}
	if err = validateQuantity(quantity, stats, "must issue positive quantity"); err != nil {
		return err
	}
	if err = validateMemo(memo); err != nil {
		return err
	}
	if err = t.requireNotFrozen(ctx, stats.Issuer, to); err != nil {
		return err
	}

	if err = t.registry.Issue(ctx, stats, quantity); err != nil {
		return err
	}
	balance, err := t.accounts.Credit(ctx, to, quantity, stats.Issuer)
	if err != nil {
		return err
	}
	if err = t.syncQuota(ctx, to, balance); err != nil {
		return err
	}

	if t.metrics != nil {
		t.metrics.SupplyUnits.WithLabelValues(quantity.Symbol.Code).Set(float64(stats.Supply.Amount))
	}
	return t.commit(ctx, domain.ActionIssue, quantity.Symbol.Code, stats.Issuer, to, quantity, memo)
}

// Retire burns quantity from the issuer's own balance and decrements
// supply. Requires the currency issuer's authority.
func (t *Token) Retire(ctx context.Context, caller domain.AccountName, quantity domain.Asset, memo string) (err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.observe(domain.ActionRetire, t.now(), &err)

	stats, err := t.registry.Get(ctx, quantity.Symbol.Code)
	if errors.Is(err, storage.ErrNotFound) {
		return errState("token with symbol does not exist")
	}
	if err != nil {
		return fmt.Errorf("get currency stats: %w", err)
	}

	if err = t.requireAuth(ctx, caller, stats.Issuer); err != nil {
		return err
	}
	if err = validateQuantity(quantity, stats, "must retire positive quantity"); err != nil {
		return err
	}
	if err = validateMemo(memo); err != nil {
		return err
	}
	if err = t.requireNotFrozen(ctx, stats.Issuer); err != nil {
		return err
	}

	// Retire draws from the issuer's own balance, not from an abstract
	// pool; the balance check is the binding one.
	balance, err := t.accounts.Debit(ctx, stats.Issuer, quantity)
	if err != nil {
		return err
	}
	if err = t.registry.Retire(ctx, stats, quantity); err != nil {
		return err
	}
	if err = t.syncQuota(ctx, stats.Issuer, balance); err != nil {
		return err
	}

	if t.metrics != nil {
		t.metrics.SupplyUnits.WithLabelValues(quantity.Symbol.Code).Set(float64(stats.Supply.Amount))
	}
	return t.commit(ctx, domain.ActionRetire, quantity.Symbol.Code, stats.Issuer, "", quantity, memo)
}

// Transfer moves quantity between accounts. Requires the sender's
// authority. Blocked when either side is frozen or the currency is paused.
func (t *Token) Transfer(ctx context.Context, caller, from, to domain.AccountName, quantity domain.Asset, memo string) (err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.observe(domain.ActionTransfer, t.now(), &err)

	if err = t.requireAuth(ctx, caller, from); err != nil {
		return err
	}
	if from == to {
		return errValidation("cannot transfer to self")
	}
	if !to.Valid() {
		return errValidation("invalid account name")
	}

	stats, err := t.registry.Get(ctx, quantity.Symbol.Code)
	if errors.Is(err, storage.ErrNotFound) {
		return errState("token with symbol does not exist")
	}
	if err != nil {
		return fmt.Errorf("get currency stats: %w", err)
	}

	if err = validateQuantity(quantity, stats, "must transfer positive quantity"); err != nil {
		return err
	}
	if err = validateMemo(memo); err != nil {
		return err
	}
	if err = t.requireNotFrozen(ctx, from, to); err != nil {
		return err
	}
	if stats.Paused {
		return errState("token is paused")
	}

	fromBalance, toBalance, err := t.accounts.Transfer(ctx, from, to, quantity)
	if err != nil {
		return err
	}
	if err = t.syncQuota(ctx, from, fromBalance); err != nil {
		return err
	}
	if err = t.syncQuota(ctx, to, toBalance); err != nil {
		return err
	}

	return t.commit(ctx, domain.ActionTransfer, quantity.Symbol.Code, from, to, quantity, memo)
}

// Open creates a zero-balance row for (owner, symbol), charged to payer.
// Requires the payer's authority. Opening an existing row is a no-op.
func (t *Token) Open(ctx context.Context, caller, owner domain.AccountName, symbol domain.Symbol, payer domain.AccountName) (err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.observe(domain.ActionOpen, t.now(), &err)

	if err = t.requireAuth(ctx, caller, payer); err != nil {
		return err
	}
	if !owner.Valid() {
		return errValidation("invalid account name")
	}

	stats, err := t.registry.Get(ctx, symbol.Code)
	if errors.Is(err, storage.ErrNotFound) {
		return errState("symbol does not exist")
	}
	if err != nil {
		return fmt.Errorf("get currency stats: %w", err)
	}
	if !stats.Supply.Symbol.Equal(symbol) {
		return errValidation("symbol precision mismatch")
	}

	if err = t.accounts.Open(ctx, owner, symbol, payer); err != nil {
		return err
	}
	return t.commit(ctx, domain.ActionOpen, symbol.Code, payer, owner, domain.Asset{Symbol: symbol}, "")
}

// Close removes the (owner, symbol) row. Requires the owner's authority
// and a zero balance.
func (t *Token) Close(ctx context.Context, caller, owner domain.AccountName, symbol domain.Symbol) (err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.observe(domain.ActionClose, t.now(), &err)

	if err = t.requireAuth(ctx, caller, owner); err != nil {
		return err
	}
	if err = t.accounts.Close(ctx, owner, symbol.Code); err != nil {
		return err
	}
	return t.commit(ctx, domain.ActionClose, symbol.Code, owner, "", domain.Asset{Symbol: symbol}, "")
}

// Freeze bars the account from transfers and issuance targeting.
// Requires the deployment admin's authority.
func (t *Token) Freeze(ctx context.Context, caller, owner domain.AccountName) (err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.observe(domain.ActionFreeze, t.now(), &err)

	if err = t.requireAuth(ctx, caller, t.admin); err != nil {
		return err
	}
	if err = t.accounts.Freeze(ctx, owner); err != nil {
		return err
	}

	if t.metrics != nil {
		t.metrics.FrozenAccounts.Inc()
	}
	return t.commit(ctx, domain.ActionFreeze, "", t.admin, owner, domain.Asset{}, "")
}

// Unfreeze restores a frozen account. Requires the deployment admin's authority.
func (t *Token) Unfreeze(ctx context.Context, caller, owner domain.AccountName) (err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.observe(domain.ActionUnfreeze, t.now(), &err)

	if err = t.requireAuth(ctx, caller, t.admin); err != nil {
		return err
	}
	if err = t.accounts.Unfreeze(ctx, owner); err != nil {
		return err
	}

	if t.metrics != nil {
		t.metrics.FrozenAccounts.Dec()
	}
	return t.commit(ctx, domain.ActionUnfreeze, "", t.admin, owner, domain.Asset{}, "")
}

// Pause blocks transfers of the currency. Requires the currency issuer's
// authority. Issue and retire stay allowed while paused.
func (t *Token) Pause(ctx context.Context, caller domain.AccountName, symbolCode string) (err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.observe(domain.ActionPause, t.now(), &err)

	stats, err := t.registry.Get(ctx, symbolCode)
	if errors.Is(err, storage.ErrNotFound) {
		return errState("token with symbol does not exist")
	}
	if err != nil {
		return fmt.Errorf("get currency stats: %w", err)
	}

	if err = t.requireAuth(ctx, caller, stats.Issuer); err != nil {
		return err
	}
	if err = t.registry.Pause(ctx, stats); err != nil {
		return err
	}

	if t.metrics != nil {
		t.metrics.PausedTokens.Inc()
	}
	return t.commit(ctx, domain.ActionPause, symbolCode, stats.Issuer, "", domain.Asset{}, "")
}

// Unpause re-enables transfers of the currency. Requires the currency
// issuer's authority.
func (t *Token) Unpause(ctx context.Context, caller domain.AccountName, symbolCode string) (err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.observe(domain.ActionUnpause, t.now(), &err)

	stats, err := t.registry.Get(ctx, symbolCode)
	if errors.Is(err, storage.ErrNotFound) {
		return errState("token with symbol does not exist")
	}
	if err != nil {
		return fmt.Errorf("get currency stats: %w", err)
	}

	if err = t.requireAuth(ctx, caller, stats.Issuer); err != nil {
		return err
	}
	if err = t.registry.Unpause(ctx, stats); err != nil {
		return err
	}

	if t.metrics != nil {
		t.metrics.PausedTokens.Dec()
	}
	return t.commit(ctx, domain.ActionUnpause, symbolCode, stats.Issuer, "", domain.Asset{}, "")
}

// Stats retrieves the currency row for a symbol code.
// Returns storage.ErrNotFound if the currency was never created.
func (t *Token) Stats(ctx context.Context, symbolCode string) (*domain.CurrencyStats, error) {
	return t.registry.Get(ctx, symbolCode)
}

// Balance retrieves the (owner, symbol) balance row. Returns
// storage.ErrNotFound when the owner has no open slot, which is distinct
// from an open row holding zero.
func (t *Token) Balance(ctx context.Context, owner domain.AccountName, symbolCode string) (*domain.Account, error) {
	return t.accounts.Balance(ctx, owner, symbolCode)
}

// Balances retrieves all open balance rows of an owner.
func (t *Token) Balances(ctx context.Context, owner domain.AccountName) ([]*domain.Account, error) {
	return t.accounts.ListBalances(ctx, owner)
}

// FrozenAccounts retrieves the frozen set.
func (t *Token) FrozenAccounts(ctx context.Context) ([]domain.AccountName, error) {
	return t.accounts.FrozenAccounts(ctx)
}

func (t *Token) requireAuth(ctx context.Context, caller, account domain.AccountName) error {
	ok, err := t.gate.Authorized(ctx, caller, account)
	if err != nil {
		return errAuthorization(fmt.Sprintf("authorization error: %v", err))
	}
	if !ok {
		return errAuthorization(fmt.Sprintf("missing authority of %s", account))
	}
	return nil
}

func (t *Token) requireNotFrozen(ctx context.Context, accounts ...domain.AccountName) error {
	for _, account := range accounts {
		frozen, err := t.accounts.IsFrozen(ctx, account)
		if err != nil {
			return fmt.Errorf("query frozen state of %s: %w", account, err)
		}
		if frozen {
			return errState("account is frozen")
		}
	}
	return nil
}

func validateQuantity(quantity domain.Asset, stats *domain.CurrencyStats, signReason string) error {
	if err := quantity.Validate(); err != nil {
		if errors.Is(err, domain.ErrAmountOverflow) {
			return errOverflow(err.Error())
		}
		return errValidation("invalid symbol name")
	}
	if quantity.Amount <= 0 {
		return errValidation(signReason)
	}
	if !quantity.Symbol.Equal(stats.Supply.Symbol) {
		return errValidation("symbol precision mismatch")
	}
	return nil
}

func validateMemo(memo string) error {
	if len(memo) > MaxMemoBytes {
		return errValidation("memo has more than 256 bytes")
	}
	return nil
}

func (t *Token) syncQuota(ctx context.Context, account domain.AccountName, balance domain.Asset) error {
	if t.resource == nil || !t.resource.Applies(balance.Symbol) {
		return nil
	}
	if err := t.resource.Apply(ctx, account, balance); err != nil {
		if t.metrics != nil {
			t.metrics.QuotaSyncErrors.Inc()
		}
		return fmt.Errorf("sync resource quota: %w", err)
	}
	if t.metrics != nil {
		t.metrics.QuotaSyncs.Inc()
	}
	return nil
}

// commit appends the applied action to the journal and notifies observers.
func (t *Token) commit(ctx context.Context, action, symbolCode string, from, to domain.AccountName, quantity domain.Asset, memo string) error {
	if t.journal == nil && t.notify == nil {
		return nil
	}

	t.seq++
	record := &domain.ActionRecord{
		Seq:        t.seq,
		Action:     action,
		SymbolCode: symbolCode,
		From:       from,
		To:         to,
		Quantity:   quantity.Amount,
		Precision:  quantity.Symbol.Precision,
		Memo:       memo,
		AppliedAt:  t.now().UnixMilli(),
	}
	record.ID = idhash.ActionID(record)

	if t.journal != nil {
		if err := t.journal.Append(ctx, record); err != nil {
			return fmt.Errorf("append action journal: %w", err)
		}
	}
	if t.notify != nil {
		t.notify(record)
	}
	return nil
}

func (t *Token) observe(action string, start time.Time, err *error) {
	if t.metrics == nil {
		return
	}
	t.metrics.ActionDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
	if *err != nil {
		t.metrics.ActionsRejected.WithLabelValues(action, KindOf(*err).String()).Inc()
		return
	}
	t.metrics.ActionsApplied.WithLabelValues(action).Inc()
}
