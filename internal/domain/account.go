package domain

import (
	"github.com/shopspring/decimal"
)

// AmountPrecision is the fractional precision amounts are reported at.
const AmountPrecision = 4

// Account holds the balances for one client. Total == Available + Held is
// maintained by construction: every adjustment updates both components that
// change, never recomputing one from the others.
type Account struct {
	Client    ClientID
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}

// NewAccount returns a zeroed, unlocked account for the client.
func NewAccount(client ClientID) Account {
	return Account{
		Client:    client,
		Available: decimal.Zero,
		Held:      decimal.Zero,
		Total:     decimal.Zero,
	}
}

// Rescale truncates the balances to AmountPrecision fractional digits.
// Values already at or below that precision are left untouched.
func (a *Account) Rescale() {
	a.Available = truncateToPrecision(a.Available)
	a.Held = truncateToPrecision(a.Held)
	a.Total = truncateToPrecision(a.Total)
}

func truncateToPrecision(amount decimal.Decimal) decimal.Decimal {
	if amount.Exponent() < -AmountPrecision {
		return amount.Truncate(AmountPrecision)
	}
	return amount
}
