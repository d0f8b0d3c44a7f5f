package domain

import "github.com/shopspring/decimal"

// TypeTotals sums one transaction-type partition of an owner's ledger.
// Sales have no value-gained concept; their ValueGained stays zero.
type TypeTotals struct {
	Count       int             `json:"count"`
	TotalValue  decimal.Decimal `json:"totalValue"`
	ValueGained decimal.Decimal `json:"valueGained"`
}

// GradedSplit buckets an amount by whether the line items were graded.
type GradedSplit struct {
	Graded   decimal.Decimal `json:"graded"`
	Ungraded decimal.Decimal `json:"ungraded"`
}

// Total returns the combined graded and ungraded amounts.
func (s GradedSplit) Total() decimal.Decimal {
	return s.Graded.Add(s.Ungraded)
}

// OwnerStats is the read-side aggregation over an owner's ledger entries.
type OwnerStats struct {
	Buys   TypeTotals `json:"buys"`
	Trades TypeTotals `json:"trades"`
	Sales  TypeTotals `json:"sales"`

	// AcquiredValue splits the market value of items acquired through buys
	// and trades. SoldValue splits the sale price of items sold. GainedValue
	// splits buy gains after proportional cost allocation.
	AcquiredValue GradedSplit `json:"acquiredValue"`
	SoldValue     GradedSplit `json:"soldValue"`
	GainedValue   GradedSplit `json:"gainedValue"`

	// CashSales counts sale proceeds plus cash legs received on trades.
	// Cash paid out on trades already reduced ValueGained at record time
	// and is not subtracted here.
	CashSales decimal.Decimal `json:"cashSales"`

	EntryCount int `json:"entryCount"`
}
