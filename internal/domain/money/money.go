// Package money provides a fixed-point currency amount scaled to 2 decimal
// places. Every monetary field in persisted entities and wire responses uses
// this type; raw floats are never used for prices so that line items sum
// without cumulative rounding error.
package money

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Money is a currency amount. The zero value is 0.00.
//
// Arithmetic (Add, Sub, MulInt, Percent) is exact; call Quantize to round a
// result to cents. Amounts handled by this system are never negative, so
// decimal's round-half-away-from-zero is equivalent to half-up.
type Money struct {
	d decimal.Decimal
}

// Zero is the 0.00 amount.
var Zero = Money{}

// FromDecimal wraps a decimal value as Money without rounding.
func FromDecimal(d decimal.Decimal) Money {
	return Money{d: d}
}

// FromString parses a decimal string like "15.90".
func FromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, errors.Wrapf(err, "parse amount %q", s)
	}
	return Money{d: d}, nil
}

// MustFromString is FromString that panics on malformed input. For use with
// literals in seed data and tests.
func MustFromString(s string) Money {
	m, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Add returns m + o exactly.
func (m Money) Add(o Money) Money {
	return Money{d: m.d.Add(o.d)}
}

// Sub returns m - o exactly.
func (m Money) Sub(o Money) Money {
	return Money{d: m.d.Sub(o.d)}
}

// MulInt returns m * n exactly. Used for unit_price * quantity.
func (m Money) MulInt(n int) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(int64(n)))}
}

// Percent returns m * p / 100 exactly, without rounding.
func (m Money) Percent(p int) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(int64(p))).Div(hundred)}
}

// Quantize rounds to 2 decimal places, half-up.
func (m Money) Quantize() Money {
	return Money{d: m.d.Round(2)}
}

// IsNegative reports whether m < 0.
func (m Money) IsNegative() bool {
	return m.d.IsNegative()
}

// IsPositive reports whether m > 0.
func (m Money) IsPositive() bool {
	return m.d.IsPositive()
}

// Equal reports whether two amounts represent the same value.
func (m Money) Equal(o Money) bool {
	return m.d.Equal(o.d)
}

// Decimal returns the underlying decimal value, for storage drivers.
func (m Money) Decimal() decimal.Decimal {
	return m.d
}

// String renders the amount with exactly two decimal places, e.g. "15.90".
func (m Money) String() string {
	return m.d.StringFixed(2)
}

// MarshalJSON renders the amount as a fixed-2-decimal JSON string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON string ("15.90") or a bare number.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return errors.Wrap(err, "unmarshal money")
	}
	m.d = d
	return nil
}
