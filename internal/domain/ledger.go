package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType discriminates ledger entries.
type TransactionType string

const (
	TransactionBuy   TransactionType = "buy"
	TransactionTrade TransactionType = "trade"
	TransactionSale  TransactionType = "sale"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionBuy, TransactionTrade, TransactionSale:
		return true
	}
	return false
}

// CashDirection marks which way the cash leg of a trade flowed.
type CashDirection string

const (
	CashIn  CashDirection = "in"
	CashOut CashDirection = "out"
)

// LineItem is one card position inside a ledger entry.
// UnitPrice and TotalPrice are what was actually paid or received for the
// line; MarketValue is the unscaled market value at confirmation time. The
// two deliberately differ whenever a buy/trade percentage was applied.
type LineItem struct {
	Name           string          `json:"name"`
	Set            string          `json:"set"`
	Number         string          `json:"number"`
	Condition      Condition       `json:"condition,omitempty"`
	IsGraded       bool            `json:"isGraded"`
	GradingCompany string          `json:"gradingCompany,omitempty"`
	Grade          string          `json:"grade,omitempty"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	MarketValue    decimal.Decimal `json:"marketValue"`
}

// LedgerEntry is one immutable record of a completed buy, trade, or sale.
// Once recorded it is never mutated, with the single exception of the
// item-price edit affordance which recomputes TotalValue from ItemsIn.
type LedgerEntry struct {
	ID      int64           `json:"id"`
	OwnerID string          `json:"ownerId"`
	Type    TransactionType `json:"type"`

	ItemsIn  []LineItem `json:"itemsIn"`
	ItemsOut []LineItem `json:"itemsOut,omitempty"`

	// TotalValue is the cash-equivalent value of the transaction in the
	// owner's primary currency. ValueGained is the market-value delta:
	// market value in, minus market value out, adjusted by the cash leg.
	TotalValue  decimal.Decimal `json:"totalValue"`
	ValueGained decimal.Decimal `json:"valueGained"`

	CashAmount    *decimal.Decimal `json:"cashAmount,omitempty"`
	CashDirection CashDirection    `json:"cashDirection,omitempty"`

	Currency      string `json:"currency"`
	InputCurrency string `json:"inputCurrency,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// MarketValueIn sums the unscaled market value of incoming items.
func (e LedgerEntry) MarketValueIn() decimal.Decimal {
	return sumMarketValue(e.ItemsIn)
}

// MarketValueOut sums the unscaled market value of outgoing items.
func (e LedgerEntry) MarketValueOut() decimal.Decimal {
	return sumMarketValue(e.ItemsOut)
}

func sumMarketValue(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.MarketValue)
	}
	return total
}
