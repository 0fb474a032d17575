/*
Package money provides the fixed-precision Money primitive.

PURPOSE:
  Every balance and amount in the system is a Money value: a quantity in
  currency minor units (cents) with two-decimal precision. Wallets carry a
  running Money balance, transactions carry a Money magnitude, debts carry a
  Money outstanding amount.

DESIGN PRINCIPLES:
  1. Precision: Values are stored and computed as integer cents. Repeated
     add/subtract over a long transaction history never drifts.
  2. Boundaries: decimal.Decimal is used only at I/O boundaries (parsing,
     storage, JSON). Arithmetic never touches floating point.
  3. Epsilon: Debt settlement treats anything within 0.01 of zero as paid.
     IsEpsilonZero captures that rounding tolerance in one place.

USAGE:
  balance := money.FromFloat(100.00)
  balance = balance.Sub(money.FromFloat(30))   // 70.00
  balance.Format("PEN")                        // "S/ 70.00"

SEE ALSO:
  - ledger/effect.go: Balance effect arithmetic built on Money
*/
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Integer minor-unit quantity
// =============================================================================

// Money is an amount in currency minor units (cents).
// The zero value is zero money.
type Money struct {
	cents int64
}

// epsilonCents is the settlement tolerance: |value| <= 0.01.
const epsilonCents = 1

func FromCents(cents int64) Money {
	return Money{cents: cents}
}

// FromFloat converts a float to Money, rounding to the nearest cent.
func FromFloat(value float64) Money {
	return FromDecimal(decimal.NewFromFloat(value))
}

// FromDecimal converts a decimal to Money, rounding to the nearest cent.
func FromDecimal(d decimal.Decimal) Money {
	return Money{cents: d.Shift(2).Round(0).IntPart()}
}

// Parse converts a decimal string ("12.34") to Money.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid money amount %q: %w", s, err)
	}
	return FromDecimal(d), nil
}

// MustParse is Parse for trusted inputs (tests, constants).
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Cents() int64 { return m.cents }

// Decimal returns the value with two decimal places, for I/O boundaries.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.cents, -2)
}

func (m Money) Add(o Money) Money { return Money{cents: m.cents + o.cents} }
func (m Money) Sub(o Money) Money { return Money{cents: m.cents - o.cents} }
func (m Money) Neg() Money        { return Money{cents: -m.cents} }

func (m Money) IsZero() bool     { return m.cents == 0 }
func (m Money) IsNegative() bool { return m.cents < 0 }
func (m Money) IsPositive() bool { return m.cents > 0 }

// IsEpsilonZero reports whether the value is within the 0.01 settlement
// tolerance of zero.
func (m Money) IsEpsilonZero() bool {
	return m.cents >= -epsilonCents && m.cents <= epsilonCents
}

func (m Money) LessThan(o Money) bool        { return m.cents < o.cents }
func (m Money) GreaterThan(o Money) bool     { return m.cents > o.cents }
func (m Money) LessOrEqual(o Money) bool     { return m.cents <= o.cents }
func (m Money) GreaterOrEqual(o Money) bool  { return m.cents >= o.cents }
func (m Money) Equal(o Money) bool           { return m.cents == o.cents }

func (m Money) Max(o Money) Money {
	if m.GreaterThan(o) {
		return m
	}
	return o
}

// String returns the plain decimal representation ("12.34").
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// =============================================================================
// FORMATTING
// =============================================================================

// currencySymbols maps ISO currency codes to display symbols.
// PEN is the single supported currency today; the table keeps it extensible.
var currencySymbols = map[string]string{
	"PEN": "S/",
	"USD": "$",
	"EUR": "€",
}

// Format renders the amount with its currency symbol, e.g. "S/ 70.00".
// Unknown codes fall back to the code itself.
func Format(m Money, currency string) string {
	symbol, ok := currencySymbols[currency]
	if !ok {
		symbol = currency
	}
	return fmt.Sprintf("%s %s", symbol, m.String())
}

// =============================================================================
// JSON - plain decimal number on the wire
// =============================================================================

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("invalid money amount %s: %w", data, err)
	}
	*m = FromDecimal(d)
	return nil
}
