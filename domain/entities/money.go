package entities

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Cents is a monetary amount in the smallest currency unit
type Cents int64

// maxUnitPriceDigits bounds the integer part of a parsed price so that
// price times ticket count cannot overflow int64
const maxUnitPriceDigits = 12

// ParseCents parses a decimal amount such as "5", "5.5" or "5.50".
// More than two fractional digits, signs and exponents are rejected.
func ParseCents(value string) (Cents, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty amount")
	}

	whole, frac, hasFrac := strings.Cut(value, ".")
	if whole == "" {
		whole = "0"
	}
	if hasFrac && (frac == "" || len(frac) > 2) {
		return 0, fmt.Errorf("amount %q must have at most two decimals", value)
	}
	if len(whole) > maxUnitPriceDigits || !isDigits(whole) || !isDigits(frac) {
		return 0, fmt.Errorf("amount %q is not a valid decimal", value)
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("amount %q is not a valid decimal: %w", value, err)
	}

	for len(frac) < 2 {
		frac += "0"
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("amount %q is not a valid decimal: %w", value, err)
	}

	return Cents(units*100 + cents), nil
}

// Multiply returns the amount for n units, failing on overflow
func (c Cents) Multiply(n int) (Cents, error) {
	if n < 0 || c < 0 {
		return 0, fmt.Errorf("cannot multiply negative amounts")
	}
	if n != 0 && int64(c) > math.MaxInt64/int64(n) {
		return 0, fmt.Errorf("amount overflow")
	}
	return c * Cents(n), nil
}

// Decimal renders the amount with exactly two decimals, e.g. "10.00"
func (c Cents) Decimal() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Euro renders the amount for display, e.g. "€10.00"
func (c Cents) Euro() string {
	return "€" + c.Decimal()
}

// MarshalJSON encodes the amount as a JSON number with two decimals
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.Decimal()), nil
}

// UnmarshalJSON accepts a JSON number or numeric string
func (c *Cents) UnmarshalJSON(data []byte) error {
	parsed, err := ParseCents(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
