package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const moneyPrecision = 2

// SafeParse parses a string into a decimal, returning zero for invalid or empty input.
func SafeParse(value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// MoneyFromFloat converts a float into a decimal amount, rejecting NaN and
// infinities before they can reach a ledger write.
func MoneyFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("amount is not a finite number: %v", f)
	}
	return decimal.NewFromFloat(f), nil
}

// Positive reports whether d is present and strictly greater than zero.
// A zero quote is never a usable price.
func Positive(d *decimal.Decimal) bool {
	return d != nil && d.IsPositive()
}

// FormatMoney rounds to cent precision and strips trailing zeros.
func FormatMoney(d decimal.Decimal) string {
	s := d.Round(moneyPrecision).StringFixed(moneyPrecision)
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
