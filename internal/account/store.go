package account

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Store owns every account seen during a run, keyed by client.
// It knows nothing about transaction semantics and is not safe for concurrent use.
type Store struct {
	accounts map[ClientID]*Account
}

// NewStore constructs an empty account store.
func NewStore() *Store {
	return &Store{accounts: make(map[ClientID]*Account)}
}

// GetOrCreate returns the account for client, opening it with zero balances
// and unlocked the first time the client is seen.
func (s *Store) GetOrCreate(client ClientID) *Account {
	if acc, ok := s.accounts[client]; ok {
		return acc
	}
	acc := &Account{
		Client:    client,
		Available: decimal.Zero,
		Held:      decimal.Zero,
	}
	s.accounts[client] = acc
	return acc
}

// Get returns the account for client without creating it.
func (s *Store) Get(client ClientID) (*Account, bool) {
	acc, ok := s.accounts[client]
	return acc, ok
}

// Len reports how many accounts have been opened.
func (s *Store) Len() int {
	return len(s.accounts)
}

// Snapshot returns a summary of every account ordered by ascending client id.
func (s *Store) Snapshot() []Summary {
	out := make([]Summary, 0, len(s.accounts))
	for _, acc := range s.accounts {
		out = append(out, acc.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Client < out[j].Client })
	return out
}
