package ledger

import (
	"testing"

	"github.com/cardvault/ledger/internal/domain"
)

func TestStatsPartitionsByType(t *testing.T) {
	entries := []domain.LedgerEntry{
		NewBuy("o", []domain.LineItem{line("A", 1, "10", "15", false)}, "USD", ""),
		NewBuy("o", []domain.LineItem{line("B", 1, "20", "22", false)}, "USD", ""),
		NewTrade("o", []domain.LineItem{line("C", 1, "5", "8", false)},
			[]domain.LineItem{line("D", 1, "6", "6", false)}, nil, "", "USD", ""),
		NewSale("o", []domain.LineItem{line("E", 1, "30", "28", false)}, "USD", ""),
	}

	stats := Stats(entries)

	if stats.Buys.Count != 2 || !stats.Buys.TotalValue.Equal(dec("30")) {
		t.Errorf("buys = %+v, want count 2 total 30", stats.Buys)
	}
	if !stats.Buys.ValueGained.Equal(dec("7")) {
		t.Errorf("buys gained = %s, want 5+2 = 7", stats.Buys.ValueGained)
	}
	if stats.Trades.Count != 1 || !stats.Trades.ValueGained.Equal(dec("2")) {
		t.Errorf("trades = %+v, want count 1 gained 2", stats.Trades)
	}
	if stats.Sales.Count != 1 || !stats.Sales.TotalValue.Equal(dec("30")) {
		t.Errorf("sales = %+v, want count 1 total 30", stats.Sales)
	}
	if !stats.Sales.ValueGained.IsZero() {
		t.Errorf("sales gained = %s, must stay zero", stats.Sales.ValueGained)
	}
	if stats.EntryCount != 4 {
		t.Errorf("entryCount = %d, want 4", stats.EntryCount)
	}
}

func TestStatsGradedSplit(t *testing.T) {
	entries := []domain.LedgerEntry{
		NewBuy("o", []domain.LineItem{
			line("Slab", 1, "80", "100", true),
			line("Raw", 1, "10", "20", false),
		}, "USD", ""),
		NewSale("o", []domain.LineItem{
			line("Slab out", 1, "60", "55", true),
			line("Raw out", 1, "5", "5", false),
		}, "USD", ""),
	}

	stats := Stats(entries)

	if !stats.AcquiredValue.Graded.Equal(dec("100")) {
		t.Errorf("acquired graded = %s, want 100", stats.AcquiredValue.Graded)
	}
	if !stats.AcquiredValue.Ungraded.Equal(dec("20")) {
		t.Errorf("acquired ungraded = %s, want 20", stats.AcquiredValue.Ungraded)
	}
	if !stats.SoldValue.Graded.Equal(dec("60")) {
		t.Errorf("sold graded = %s, want 60", stats.SoldValue.Graded)
	}
	if !stats.SoldValue.Ungraded.Equal(dec("5")) {
		t.Errorf("sold ungraded = %s, want 5", stats.SoldValue.Ungraded)
	}
}

func TestStatsGainedSplitUsesAllocatedCost(t *testing.T) {
	// One lump buy: graded item at market 80, raw at market 20, paid 50.
	// Allocated costs are 40/10, so gains split 40 graded, 10 ungraded.
	entries := []domain.LedgerEntry{
		NewBuy("o", []domain.LineItem{
			line("Slab", 1, "25", "80", true),
			line("Raw", 1, "25", "20", false),
		}, "USD", ""),
	}

	stats := Stats(entries)

	if !stats.GainedValue.Graded.Equal(dec("40")) {
		t.Errorf("gained graded = %s, want 80-40 = 40", stats.GainedValue.Graded)
	}
	if !stats.GainedValue.Ungraded.Equal(dec("10")) {
		t.Errorf("gained ungraded = %s, want 20-10 = 10", stats.GainedValue.Ungraded)
	}
}

func TestStatsCashLegs(t *testing.T) {
	cashIn := dec("25")
	cashOut := dec("10")

	entries := []domain.LedgerEntry{
		NewSale("o", []domain.LineItem{line("A", 1, "40", "40", false)}, "USD", ""),
		NewTrade("o", []domain.LineItem{line("B", 1, "5", "5", false)},
			[]domain.LineItem{line("C", 1, "30", "30", false)}, &cashIn, domain.CashIn, "USD", ""),
		NewTrade("o", []domain.LineItem{line("D", 1, "50", "50", false)},
			[]domain.LineItem{line("E", 1, "35", "35", false)}, &cashOut, domain.CashOut, "USD", ""),
	}

	stats := Stats(entries)

	// Sale proceeds 40 plus the received trade cash 25. The paid-out 10
	// already reduced that trade's valueGained and must not subtract here.
	if !stats.CashSales.Equal(dec("65")) {
		t.Errorf("cashSales = %s, want 65", stats.CashSales)
	}
}

func TestStatsEmptyLedger(t *testing.T) {
	stats := Stats(nil)
	if stats.EntryCount != 0 {
		t.Errorf("entryCount = %d, want 0", stats.EntryCount)
	}
	if !stats.CashSales.IsZero() || !stats.Buys.TotalValue.IsZero() {
		t.Error("empty ledger should produce zero stats")
	}
}
