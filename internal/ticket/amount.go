package ticket

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a money value kept at two fractional digits
type Amount struct {
	d decimal.Decimal
}

// Zero is the zero amount
var Zero = Amount{d: decimal.Zero}

// ParseAmount parses a price token using either '.' or ',' as the decimal
// separator. No locale detection is attempted: a comma is always a decimal
// separator, never a thousands separator.
func ParseAmount(s string) (Amount, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	s = strings.TrimPrefix(s, "+")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, err
	}
	return Amount{d: d.Round(2)}, nil
}

// Add returns a + b
func (a Amount) Add(b Amount) Amount { return Amount{d: a.d.Add(b.d)} }

// Mul returns the amount multiplied by a quantity
func (a Amount) Mul(qty int) Amount { return Amount{d: a.d.Mul(decimal.NewFromInt(int64(qty)))} }

// Round rounds half away from zero to the nearest cent
func (a Amount) Round() Amount { return Amount{d: a.d.Round(2)} }

// IsZero reports whether the amount is exactly zero
func (a Amount) IsZero() bool { return a.d.IsZero() }

// IsPositive reports whether the amount is strictly greater than zero
func (a Amount) IsPositive() bool { return a.d.IsPositive() }

// String formats the amount with exactly two decimals, e.g. "3.80"
func (a Amount) String() string { return a.d.StringFixed(2) }

// MarshalJSON encodes the amount as a bare JSON number with two decimals
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number, a quoted number or null
func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = Zero
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*a = Amount{d: d.Round(2)}
	return nil
}
