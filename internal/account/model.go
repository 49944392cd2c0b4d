package account

import "github.com/shopspring/decimal"

// ClientID identifies the owner of an account.
type ClientID uint32

// Account holds the running balances for a single client.
type Account struct {
	Client    ClientID
	Available decimal.Decimal
	Held      decimal.Decimal
	Locked    bool
}

// Total is the client's overall balance. It is derived on every call and never stored.
func (a *Account) Total() decimal.Decimal {
	return a.Available.Add(a.Held)
}

// Summary is a read-only view of an account at the end of a run.
type Summary struct {
	Client    ClientID
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}

// Summary captures the current state of the account.
func (a *Account) Summary() Summary {
	return Summary{
		Client:    a.Client,
		Available: a.Available,
		Held:      a.Held,
		Total:     a.Total(),
		Locked:    a.Locked,
	}
}
