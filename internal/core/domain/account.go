package domain

import "github.com/google/uuid"

// Account is a named balance holder owned by the ledger.
// Values handed out by the ledger are copies; mutating them has no effect on ledger state.
type Account struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Balance Amount    `json:"balance"`
}

// CanDebit reports whether the balance covers amount.
func (a *Account) CanDebit(amount Amount) bool {
	return !a.Balance.LessThan(amount)
}

// Debit subtracts amount. Callers must check CanDebit first.
func (a *Account) Debit(amount Amount) {
	a.Balance = a.Balance.Sub(amount)
}

// Credit adds amount.
func (a *Account) Credit(amount Amount) {
	a.Balance = a.Balance.Add(amount)
}
