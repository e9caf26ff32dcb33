package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// coercePrice parses a price, falling back to zero for bad or negative input.
func coercePrice(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// coerceQuantity parses a quantity, truncating fractions. Bad or negative
// input becomes zero.
func coerceQuantity(s string) int {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return 0
	}
	if d.GreaterThan(decimal.NewFromInt(maxQuantity)) {
		return maxQuantity
	}
	return int(d.IntPart())
}

const maxQuantity = 1<<31 - 1
