package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/congo-pay/ledger/internal/account"
)

// SeedAvailable is a test helper that sets the available balance of a client's account,
// opening it if needed, without recording a transaction.
func SeedAvailable(e *Engine, client account.ClientID, amount decimal.Decimal) {
	e.accounts.GetOrCreate(client).Available = amount
}
