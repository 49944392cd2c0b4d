package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/ledger/internal/account"
)

var (
	// ErrUnknownTransaction occurs when a dispute, resolve or chargeback references a
	// transaction that was never recorded as disputable.
	ErrUnknownTransaction = errors.New("unknown transaction")

	// ErrDuplicateTransaction indicates the transaction identifier was already used by an
	// accepted deposit or withdrawal.
	ErrDuplicateTransaction = errors.New("duplicate transaction")

	// ErrClientMismatch indicates the referenced transaction belongs to another client.
	ErrClientMismatch = errors.New("transaction belongs to another client")

	// ErrAccountLocked rejects deposits and withdrawals on an account frozen by a chargeback.
	ErrAccountLocked = errors.New("account locked")

	// ErrInsufficientFunds occurs when available funds cannot cover a withdrawal.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidState indicates the referenced transaction is not in the dispute status the
	// operation requires.
	ErrInvalidState = errors.New("invalid dispute state")

	ErrMissingAmount     = errors.New("amount is required")
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrUnknownKind       = errors.New("unknown transaction kind")
)

// Kind is the closed set of transaction record types.
type Kind string

const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
	KindDispute    Kind = "dispute"
	KindResolve    Kind = "resolve"
	KindChargeback Kind = "chargeback"
)

// ParseKind maps a decoded type field onto a Kind. Matching ignores case and
// surrounding whitespace.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindDeposit, KindWithdrawal, KindDispute, KindResolve, KindChargeback:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// MovesFunds reports whether records of this kind carry their own amount.
func (k Kind) MovesFunds() bool {
	return k == KindDeposit || k == KindWithdrawal
}

// TxID identifies a transaction. It is unique among accepted deposits and withdrawals.
type TxID uint32

// Record is a single decoded transaction. Amount is nil for dispute, resolve and
// chargeback records, which reference an earlier transaction by Tx.
type Record struct {
	Kind   Kind
	Client account.ClientID
	Tx     TxID
	Amount *decimal.Decimal
}

// RecordError describes why a record was skipped. It unwraps to one of the
// package sentinel errors.
type RecordError struct {
	Kind   Kind
	Client account.ClientID
	Tx     TxID
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s client=%d tx=%d: %v", e.Kind, e.Client, e.Tx, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

var reasonCodes = []struct {
	err  error
	code string
}{
	{ErrUnknownTransaction, "unknown_transaction"},
	{ErrDuplicateTransaction, "duplicate_transaction"},
	{ErrClientMismatch, "client_mismatch"},
	{ErrAccountLocked, "account_locked"},
	{ErrInsufficientFunds, "insufficient_funds"},
	{ErrInvalidState, "invalid_state"},
	{ErrMissingAmount, "missing_amount"},
	{ErrNonPositiveAmount, "non_positive_amount"},
	{ErrUnknownKind, "unknown_kind"},
}

// ReasonCode returns a stable snake_case label for a rejection, suitable for
// counters and log attributes. Errors outside the taxonomy map to "other".
func ReasonCode(err error) string {
	for _, rc := range reasonCodes {
		if errors.Is(err, rc.err) {
			return rc.code
		}
	}
	return "other"
}
