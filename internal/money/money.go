// Package money represents monetary amounts as integer cents so that
// line subtotals and document totals always add up exactly.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Cents is an amount in hundredths of the store currency.
type Cents int64

// ErrTooPrecise indicates an amount with sub-cent precision.
var ErrTooPrecise = errors.New("money: amounts are limited to two decimal places")

// Parse converts a decimal string such as "25.00" into Cents.
func Parse(s string) (Cents, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("money: parse %q: %w", s, err)
	}
	return FromDecimal(d)
}

// FromDecimal converts a decimal amount into Cents.
func FromDecimal(d decimal.Decimal) (Cents, error) {
	scaled := d.Shift(2)
	if !scaled.IsInteger() {
		return 0, ErrTooPrecise
	}
	return Cents(scaled.IntPart()), nil
}

// Decimal returns the amount as a decimal value.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// Mul multiplies the amount by an integer quantity.
func (c Cents) Mul(qty int64) Cents {
	return Cents(int64(c) * qty)
}

// String renders the amount with two decimal places, e.g. "169.00".
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// MarshalJSON renders the amount as a plain JSON number with two
// decimal places, matching the wire shape of the catalog prices.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.Decimal().StringFixed(2)), nil
}

// UnmarshalJSON accepts 18, 18.5 and "18.50" on input.
func (c *Cents) UnmarshalJSON(data []byte) error {
	d, err := decimal.NewFromString(strings.Trim(string(data), `"`))
	if err != nil {
		return fmt.Errorf("money: unmarshal %s: %w", data, err)
	}
	parsed, err := FromDecimal(d)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
