// Package money converts between decimal currency amounts and the integer
// minor-unit representation used for storage.
//
// Rounding is half away from zero: 0.005 becomes 1 minor unit, -0.005 becomes -1.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// minorUnitExponent is the number of decimal places in one major unit.
const minorUnitExponent = 2

// ErrInvalidAmount is returned when an amount cannot be parsed as a decimal.
var ErrInvalidAmount = errors.New("invalid amount")

// ToMinorUnits converts a decimal amount to minor units, rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(minorUnitExponent).Round(0).IntPart()
}

// ToDisplayAmount converts minor units back to a decimal major-unit amount.
func ToDisplayAmount(minor int64) float64 {
	return decimal.New(minor, -minorUnitExponent).InexactFloat64()
}

// DisplayAmountFromString converts a textual minor-unit amount for display.
// Absent input yields 0. Text that is not a number yields NaN, which callers
// are expected to surface rather than hide.
//
// Codec compatibility only: records store minor units as int64 and the service
// projects them with ToDisplayAmount. This variant is for minor units that
// arrive as text (exports, driver values read as strings) and agrees with
// ToDisplayAmount for every integer input.
func DisplayAmountFromString(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return math.NaN()
	}
	return d.Shift(-minorUnitExponent).InexactFloat64()
}

// ParseAmount parses a decimal major-unit amount. An empty string is zero.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.Trim(strings.TrimSpace(raw), `"`)
	if raw == "" || raw == "null" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	return d, nil
}
