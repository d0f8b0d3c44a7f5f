package currency

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Ref is the reference currency. Graded prices and generic fallback quotes
// are always stored in it.
const Ref = "USD"

// ErrMissingRate indicates that no conversion rate is known for a requested
// currency. Conversion aborts; there is no silent 1:1 fallback.
var ErrMissingRate = errors.New("no conversion rate for currency")

// Table maps currency codes to their rate relative to Ref: one unit of Ref
// buys Rate units of the currency. Tables are built once and read-only.
type Table struct {
	rates map[string]decimal.Decimal
}

// NewTable builds a rate table. The Ref rate is pinned to exactly 1.
func NewTable(rates map[string]decimal.Decimal) Table {
	m := make(map[string]decimal.Decimal, len(rates)+1)
	for code, rate := range rates {
		m[code] = rate
	}
	m[Ref] = decimal.NewFromInt(1)
	return Table{rates: m}
}

// Rate returns the rate for a currency code relative to Ref.
func (t Table) Rate(code string) (decimal.Decimal, error) {
	rate, ok := t.rates[code]
	if !ok || !rate.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrMissingRate, code)
	}
	return rate, nil
}

// Has reports whether a rate is known for the currency code.
func (t Table) Has(code string) bool {
	_, err := t.Rate(code)
	return err == nil
}

// Convert converts an amount between two currencies. Same-currency
// conversion is the identity: the amount is returned untouched, with no
// rounding introduced by a 1.0 multiply.
func (t Table) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}

	fromRate, err := t.Rate(from)
	if err != nil {
		return decimal.Decimal{}, err
	}
	toRate, err := t.Rate(to)
	if err != nil {
		return decimal.Decimal{}, err
	}

	return amount.Mul(toRate).Div(fromRate), nil
}

// FromRef converts an amount from the reference currency.
func (t Table) FromRef(amount decimal.Decimal, to string) (decimal.Decimal, error) {
	return t.Convert(amount, Ref, to)
}
