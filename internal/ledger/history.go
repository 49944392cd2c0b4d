package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/congo-pay/ledger/internal/account"
)

// Status tracks where a disputable transaction sits in the dispute lifecycle.
//
//	clean --dispute--> disputed --resolve--> clean
//	disputed --chargeback--> charged_back (terminal)
type Status string

const (
	StatusClean       Status = "clean"
	StatusDisputed    Status = "disputed"
	StatusChargedBack Status = "charged_back"
)

// Disputable is a recorded transaction eligible for the dispute lifecycle.
type Disputable struct {
	Tx     TxID
	Client account.ClientID
	Kind   Kind
	Amount decimal.Decimal
	Status Status
}

// History owns the transaction identifiers consumed during a run and the
// disputable entries among them. It has no knowledge of account balances.
type History struct {
	used    map[TxID]struct{}
	entries map[TxID]*Disputable
}

// NewHistory constructs an empty transaction history.
func NewHistory() *History {
	return &History{
		used:    make(map[TxID]struct{}),
		entries: make(map[TxID]*Disputable),
	}
}

// Used reports whether tx was already consumed by an accepted deposit or withdrawal.
func (h *History) Used(tx TxID) bool {
	_, ok := h.used[tx]
	return ok
}

// Reserve consumes tx without making it disputable.
func (h *History) Reserve(tx TxID) error {
	if h.Used(tx) {
		return ErrDuplicateTransaction
	}
	h.used[tx] = struct{}{}
	return nil
}

// RecordDeposit consumes tx and stores the deposit as a clean disputable entry.
func (h *History) RecordDeposit(tx TxID, client account.ClientID, amount decimal.Decimal) error {
	return h.Record(tx, client, KindDeposit, amount)
}

// Record consumes tx and stores a clean disputable entry of the given kind.
func (h *History) Record(tx TxID, client account.ClientID, kind Kind, amount decimal.Decimal) error {
	if err := h.Reserve(tx); err != nil {
		return err
	}
	h.entries[tx] = &Disputable{
		Tx:     tx,
		Client: client,
		Kind:   kind,
		Amount: amount,
		Status: StatusClean,
	}
	return nil
}

// Lookup returns a copy of the disputable entry for tx.
func (h *History) Lookup(tx TxID) (Disputable, error) {
	entry, ok := h.entries[tx]
	if !ok {
		return Disputable{}, ErrUnknownTransaction
	}
	return *entry, nil
}

// SetStatus moves the entry for tx to status. Transition rules are enforced by the engine.
func (h *History) SetStatus(tx TxID, status Status) error {
	entry, ok := h.entries[tx]
	if !ok {
		return ErrUnknownTransaction
	}
	entry.Status = status
	return nil
}

// Len reports the number of disputable entries.
func (h *History) Len() int {
	return len(h.entries)
}
