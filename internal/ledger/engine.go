package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/ledger/internal/account"
)

// DisputePolicy decides which accepted money-movement kinds enter the dispute lifecycle.
type DisputePolicy func(Kind) bool

// DepositsOnly makes deposits disputable and withdrawals final. It is the default policy.
func DepositsOnly(k Kind) bool {
	return k == KindDeposit
}

// DepositsAndWithdrawals makes both money-movement kinds disputable. A disputed
// withdrawal holds its amount the same way a disputed deposit does.
func DepositsAndWithdrawals(k Kind) bool {
	return k.MovesFunds()
}

// Option customises an Engine.
type Option func(*Engine)

// WithDisputePolicy overrides which kinds are disputable.
func WithDisputePolicy(p DisputePolicy) Option {
	return func(e *Engine) {
		if p != nil {
			e.disputable = p
		}
	}
}

// Engine applies transaction records to client accounts. It owns the account store and
// transaction history for the lifetime of a run and is not safe for concurrent use.
type Engine struct {
	accounts   *account.Store
	history    *History
	disputable DisputePolicy
}

// NewEngine constructs an engine with empty accounts and history.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		accounts:   account.NewStore(),
		history:    NewHistory(),
		disputable: DepositsOnly,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply folds one record into the ledger. A nil result means the record took effect.
// Otherwise a *RecordError is returned and no state other than the client's account
// being opened has changed; callers skip the record and continue with the next one.
func (e *Engine) Apply(rec Record) error {
	acc := e.accounts.GetOrCreate(rec.Client)

	var err error
	switch rec.Kind {
	case KindDeposit:
		err = e.deposit(acc, rec)
	case KindWithdrawal:
		err = e.withdraw(acc, rec)
	case KindDispute:
		err = e.dispute(acc, rec)
	case KindResolve:
		err = e.resolve(acc, rec)
	case KindChargeback:
		err = e.chargeback(acc, rec)
	default:
		err = ErrUnknownKind
	}
	if err != nil {
		return &RecordError{Kind: rec.Kind, Client: rec.Client, Tx: rec.Tx, Err: err}
	}
	return nil
}

// Accounts returns every account summary ordered by ascending client id.
func (e *Engine) Accounts() []account.Summary {
	return e.accounts.Snapshot()
}

// Account returns the current summary for client.
func (e *Engine) Account(client account.ClientID) (account.Summary, bool) {
	acc, ok := e.accounts.Get(client)
	if !ok {
		return account.Summary{}, false
	}
	return acc.Summary(), true
}

func (e *Engine) deposit(acc *account.Account, rec Record) error {
	amount, err := e.admit(acc, rec)
	if err != nil {
		return err
	}
	if err := e.remember(rec, amount); err != nil {
		return err
	}
	acc.Available = acc.Available.Add(amount)
	return nil
}

func (e *Engine) withdraw(acc *account.Account, rec Record) error {
	amount, err := e.admit(acc, rec)
	if err != nil {
		return err
	}
	if acc.Available.LessThan(amount) {
		return ErrInsufficientFunds
	}
	if err := e.remember(rec, amount); err != nil {
		return err
	}
	acc.Available = acc.Available.Sub(amount)
	return nil
}

func (e *Engine) dispute(acc *account.Account, rec Record) error {
	entry, err := e.referenced(rec, StatusClean)
	if err != nil {
		return err
	}
	if err := e.history.SetStatus(entry.Tx, StatusDisputed); err != nil {
		return err
	}
	acc.Available = acc.Available.Sub(entry.Amount)
	acc.Held = acc.Held.Add(entry.Amount)
	return nil
}

func (e *Engine) resolve(acc *account.Account, rec Record) error {
	entry, err := e.referenced(rec, StatusDisputed)
	if err != nil {
		return err
	}
	if err := e.history.SetStatus(entry.Tx, StatusClean); err != nil {
		return err
	}
	acc.Held = acc.Held.Sub(entry.Amount)
	acc.Available = acc.Available.Add(entry.Amount)
	return nil
}

func (e *Engine) chargeback(acc *account.Account, rec Record) error {
	entry, err := e.referenced(rec, StatusDisputed)
	if err != nil {
		return err
	}
	if err := e.history.SetStatus(entry.Tx, StatusChargedBack); err != nil {
		return err
	}
	acc.Held = acc.Held.Sub(entry.Amount)
	acc.Locked = true
	return nil
}

// admit runs the checks shared by deposits and withdrawals, in order: amount,
// transaction id reuse, account lock.
func (e *Engine) admit(acc *account.Account, rec Record) (decimal.Decimal, error) {
	if rec.Amount == nil {
		return decimal.Decimal{}, ErrMissingAmount
	}
	amount := *rec.Amount
	if !amount.IsPositive() {
		return decimal.Decimal{}, ErrNonPositiveAmount
	}
	if e.history.Used(rec.Tx) {
		return decimal.Decimal{}, ErrDuplicateTransaction
	}
	if acc.Locked {
		return decimal.Decimal{}, ErrAccountLocked
	}
	return amount, nil
}

func (e *Engine) remember(rec Record, amount decimal.Decimal) error {
	switch {
	case !e.disputable(rec.Kind):
		return e.history.Reserve(rec.Tx)
	case rec.Kind == KindDeposit:
		return e.history.RecordDeposit(rec.Tx, rec.Client, amount)
	default:
		return e.history.Record(rec.Tx, rec.Client, rec.Kind, amount)
	}
}

// referenced resolves the disputable entry a dispute, resolve or chargeback points at
// and checks it belongs to the record's client and sits in the wanted status.
func (e *Engine) referenced(rec Record, want Status) (Disputable, error) {
	entry, err := e.history.Lookup(rec.Tx)
	if err != nil {
		return Disputable{}, err
	}
	if entry.Client != rec.Client {
		return Disputable{}, ErrClientMismatch
	}
	if entry.Status != want {
		return Disputable{}, fmt.Errorf("%w: tx %d is %s, want %s", ErrInvalidState, entry.Tx, entry.Status, want)
	}
	return entry, nil
}
