package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/cardvault/ledger/internal/domain"
)

// The builders below turn confirmed calculator screens into ledger entries.
// Line items carry two prices on purpose: UnitPrice/TotalPrice is what the
// owner actually pays or receives (the percentage-scaled final value), while
// MarketValue is the unscaled 100% market value. TotalValue sums the former,
// ValueGained derives from the latter — the percentage affects what is paid,
// never the market value gained, so the two totals legitimately differ.

// NewBuy builds a buy entry. ValueGained is the market value acquired minus
// the price paid.
func NewBuy(ownerID string, itemsIn []domain.LineItem, currency, inputCurrency string) domain.LedgerEntry {
	itemsIn = withLineTotals(itemsIn)
	totalValue := sumTotalPrice(itemsIn)

	entry := domain.LedgerEntry{
		OwnerID:       ownerID,
		Type:          domain.TransactionBuy,
		ItemsIn:       itemsIn,
		TotalValue:    totalValue,
		Currency:      currency,
		InputCurrency: inputCurrency,
	}
	entry.ValueGained = entry.MarketValueIn().Sub(totalValue)
	return entry
}

// NewTrade builds a trade entry. The optional cash leg is stored already
// converted to the owner's primary currency; cash received raises
// ValueGained, cash paid lowers it.
func NewTrade(ownerID string, itemsIn, itemsOut []domain.LineItem, cash *decimal.Decimal, direction domain.CashDirection, currency, inputCurrency string) domain.LedgerEntry {
	itemsIn = withLineTotals(itemsIn)
	itemsOut = withLineTotals(itemsOut)

	entry := domain.LedgerEntry{
		OwnerID:       ownerID,
		Type:          domain.TransactionTrade,
		ItemsIn:       itemsIn,
		ItemsOut:      itemsOut,
		TotalValue:    sumTotalPrice(itemsIn),
		CashAmount:    cash,
		Currency:      currency,
		InputCurrency: inputCurrency,
	}

	gained := entry.MarketValueIn().Sub(entry.MarketValueOut())
	if cash != nil {
		entry.CashDirection = direction
		switch direction {
		case domain.CashIn:
			gained = gained.Add(*cash)
		case domain.CashOut:
			gained = gained.Sub(*cash)
		}
	}
	entry.ValueGained = gained
	return entry
}

// NewSale builds a sale entry. Sales have no value-gained concept in this
// model; the field stays zero rather than being computed.
func NewSale(ownerID string, itemsOut []domain.LineItem, currency, inputCurrency string) domain.LedgerEntry {
	itemsOut = withLineTotals(itemsOut)

	return domain.LedgerEntry{
		OwnerID:       ownerID,
		Type:          domain.TransactionSale,
		ItemsOut:      itemsOut,
		TotalValue:    sumTotalPrice(itemsOut),
		Currency:      currency,
		InputCurrency: inputCurrency,
	}
}

// AllocateCost imputes a per-item cost for a multi-item buy by splitting the
// lump TotalValue proportionally to each item's market value. When the
// market values sum to zero every item gets a zero cost: no division by
// zero, no arbitrary remainder distribution.
func AllocateCost(entry domain.LedgerEntry) []decimal.Decimal {
	costs := make([]decimal.Decimal, len(entry.ItemsIn))
	totalMarket := entry.MarketValueIn()
	if !totalMarket.IsPositive() {
		return costs
	}

	for i, it := range entry.ItemsIn {
		costs[i] = entry.TotalValue.Mul(it.MarketValue).Div(totalMarket)
	}
	return costs
}

func withLineTotals(items []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, len(items))
	for i, it := range items {
		it.Quantity = domain.ClampQuantity(it.Quantity)
		it.TotalPrice = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		out[i] = it
	}
	return out
}

func sumTotalPrice(items []domain.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalPrice)
	}
	return total
}
