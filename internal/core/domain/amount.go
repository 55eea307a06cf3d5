package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is an exact, arbitrary-precision decimal money value.
// The zero value is a valid zero amount. Arithmetic never rounds.
type Amount struct {
	d decimal.Decimal
}

// ZeroAmount is the additive identity.
var ZeroAmount = Amount{d: decimal.Zero}

// NewAmount wraps a decimal value.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{d: d}
}

// NewAmountFromInt builds a whole-unit amount.
func NewAmountFromInt(v int64) Amount {
	return Amount{d: decimal.NewFromInt(v)}
}

// ParseAmount parses a decimal string such as "100", "-3.5" or "0.0001".
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return Amount{d: d}, nil
}

// MustParseAmount is ParseAmount that panics on malformed input. Intended for constants and tests.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) Add(b Amount) Amount { return Amount{d: a.d.Add(b.d)} }

func (a Amount) Sub(b Amount) Amount { return Amount{d: a.d.Sub(b.d)} }

// Cmp returns -1, 0 or +1 when a is less than, equal to or greater than b.
func (a Amount) Cmp(b Amount) int { return a.d.Cmp(b.d) }

// Equal compares numerically, so "1.0" equals "1".
func (a Amount) Equal(b Amount) bool { return a.d.Equal(b.d) }

func (a Amount) LessThan(b Amount) bool { return a.d.LessThan(b.d) }

func (a Amount) IsPositive() bool { return a.d.IsPositive() }

func (a Amount) IsNegative() bool { return a.d.IsNegative() }

func (a Amount) IsZero() bool { return a.d.IsZero() }

// Decimal exposes the underlying value.
func (a Amount) Decimal() decimal.Decimal { return a.d }

// String renders the amount in plain notation with trailing zeros trimmed.
func (a Amount) String() string { return a.d.String() }

// MarshalJSON encodes the amount as a quoted decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.d.String() + `"`), nil
}

// UnmarshalJSON accepts both quoted and bare JSON numbers.
func (a *Amount) UnmarshalJSON(data []byte) error {
	return a.d.UnmarshalJSON(data)
}

// SumAmounts adds all values exactly.
func SumAmounts(values ...Amount) Amount {
	total := ZeroAmount
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
