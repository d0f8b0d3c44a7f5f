package ledger

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/cardvault/ledger/internal/domain"
)

// Stats aggregates an owner's ledger entries into read-side statistics. It
// is a pure fold over the stored records with no side effects; it never
// re-queries price sources.
func Stats(entries []domain.LedgerEntry) domain.OwnerStats {
	stats := domain.OwnerStats{EntryCount: len(entries)}

	byType := lo.GroupBy(entries, func(e domain.LedgerEntry) domain.TransactionType {
		return e.Type
	})

	stats.Buys = typeTotals(byType[domain.TransactionBuy], true)
	stats.Trades = typeTotals(byType[domain.TransactionTrade], true)
	stats.Sales = typeTotals(byType[domain.TransactionSale], false)

	for _, e := range entries {
		switch e.Type {
		case domain.TransactionBuy, domain.TransactionTrade:
			// Acquired-value split over incoming items at market value.
			for _, it := range e.ItemsIn {
				addToSplit(&stats.AcquiredValue, it.IsGraded, it.MarketValue)
			}
		case domain.TransactionSale:
			for _, it := range e.ItemsOut {
				addToSplit(&stats.SoldValue, it.IsGraded, it.TotalPrice)
			}
		}

		// Gained split for buys uses the proportionally allocated cost.
		if e.Type == domain.TransactionBuy {
			costs := AllocateCost(e)
			for i, it := range e.ItemsIn {
				addToSplit(&stats.GainedValue, it.IsGraded, it.MarketValue.Sub(costs[i]))
			}
		}

		// Cash received on a trade counts as a sale; cash paid out already
		// reduced ValueGained at record time and is not subtracted.
		if e.Type == domain.TransactionTrade && e.CashAmount != nil && e.CashDirection == domain.CashIn {
			stats.CashSales = stats.CashSales.Add(*e.CashAmount)
		}
		if e.Type == domain.TransactionSale {
			stats.CashSales = stats.CashSales.Add(e.TotalValue)
		}
	}

	return stats
}

// typeTotals sums one transaction-type partition. Sales report no value
// gained: the field stays zero instead of being derived.
func typeTotals(entries []domain.LedgerEntry, withGained bool) domain.TypeTotals {
	return lo.Reduce(entries, func(acc domain.TypeTotals, e domain.LedgerEntry, _ int) domain.TypeTotals {
		acc.Count++
		acc.TotalValue = acc.TotalValue.Add(e.TotalValue)
		if withGained {
			acc.ValueGained = acc.ValueGained.Add(e.ValueGained)
		}
		return acc
	}, domain.TypeTotals{})
}

func addToSplit(split *domain.GradedSplit, graded bool, amount decimal.Decimal) {
	if graded {
		split.Graded = split.Graded.Add(amount)
	} else {
		split.Ungraded = split.Ungraded.Add(amount)
	}
}
