// Package core holds the ledger domain: transactions, money, categories.
//
// Money is stored as integer cents so no arithmetic ever loses precision;
// decimal strings from users are parsed exactly with shopspring/decimal and
// only converted to float for display.
package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a currency amount in minor units (cents).
type Money struct {
	Cents int64
}

// ParseAmount converts a user-entered decimal string ("12.34") into cents.
// Amounts must be strictly positive and carry at most two fractional
// digits. Anything else fails with ErrInvalidAmount.
func ParseAmount(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.Exponent() < -2 {
		return Money{}, fmt.Errorf("%w: %q has more than two decimal places", ErrInvalidAmount, s)
	}
	if !d.IsPositive() {
		return Money{}, fmt.Errorf("%w: %q must be positive", ErrInvalidAmount, s)
	}
	return Money{Cents: d.Shift(2).IntPart()}, nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Float returns the amount in major units for chart payloads.
// Use cents for all arithmetic.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

// String renders the amount with two decimal places, e.g. "120.00" or
// "-4.50" for negative balances.
func (m Money) String() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
