package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/cardvault/ledger/internal/domain"
)

func sampleStats() domain.OwnerStats {
	return domain.OwnerStats{
		Buys: domain.TypeTotals{
			Count:       2,
			TotalValue:  decimal.RequireFromString("30"),
			ValueGained: decimal.RequireFromString("7"),
		},
		AcquiredValue: domain.GradedSplit{
			Graded:   decimal.RequireFromString("100"),
			Ungraded: decimal.RequireFromString("20"),
		},
		CashSales:  decimal.RequireFromString("65"),
		EntryCount: 3,
	}
}

func findRow(rows []StatsRow, section, label string) (StatsRow, bool) {
	for _, r := range rows {
		if r.Section == section && r.Label == label {
			return r, true
		}
	}
	return StatsRow{}, false
}

func TestBuildRows(t *testing.T) {
	rows := BuildRows(sampleStats())

	entries, ok := findRow(rows, "Ledger", "Entries")
	if !ok || !entries.Value.Equal(decimal.RequireFromString("3")) {
		t.Errorf("entries row = %+v, want value 3", entries)
	}

	buysTotal, ok := findRow(rows, "Buys", "Total value")
	if !ok || !buysTotal.Value.Equal(decimal.RequireFromString("30")) {
		t.Errorf("buys total row = %+v, want value 30", buysTotal)
	}

	acquiredTotal, ok := findRow(rows, "Acquired value", "Total")
	if !ok || !acquiredTotal.Value.Equal(decimal.RequireFromString("120")) {
		t.Errorf("acquired total row = %+v, want graded+ungraded = 120", acquiredTotal)
	}

	cash, ok := findRow(rows, "Cash", "Sales proceeds")
	if !ok || !cash.Value.Equal(decimal.RequireFromString("65")) {
		t.Errorf("cash row = %+v, want value 65", cash)
	}
}

func TestBuildSheetValuesHasHeader(t *testing.T) {
	values := buildSheetValues(BuildRows(sampleStats()))

	if len(values) < 2 {
		t.Fatalf("expected header plus data rows, got %d rows", len(values))
	}
	if values[0][0] != "Section" || values[0][2] != "Value" {
		t.Errorf("header row = %v, want Section/Metric/Value", values[0])
	}
}

func TestWriteWorkbook(t *testing.T) {
	cash := decimal.RequireFromString("15")
	entries := []domain.LedgerEntry{
		{
			ID:         1,
			Type:       domain.TransactionBuy,
			ItemsIn:    []domain.LineItem{{Name: "Card A", Quantity: 2, Condition: domain.ConditionLP}},
			TotalValue: decimal.RequireFromString("10"),
			Currency:   "USD",
			CreatedAt:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:            2,
			Type:          domain.TransactionTrade,
			ItemsIn:       []domain.LineItem{{Name: "Slab", Quantity: 1, IsGraded: true, GradingCompany: "PSA", Grade: "9"}},
			CashAmount:    &cash,
			CashDirection: domain.CashOut,
			Currency:      "USD",
			CreatedAt:     time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		},
	}

	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := WriteWorkbook(path, "owner-1", entries, sampleStats()); err != nil {
		t.Fatalf("writing workbook: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopening workbook: %v", err)
	}
	defer f.Close()

	owner, err := f.GetCellValue(statsSheet, "B1")
	if err != nil || owner != "owner-1" {
		t.Errorf("stats B1 = %q (err %v), want owner-1", owner, err)
	}

	items, err := f.GetCellValue(ledgerSheet, "D2")
	if err != nil || items != "2x Card A (LP)" {
		t.Errorf("ledger D2 = %q (err %v), want item summary", items, err)
	}

	slab, _ := f.GetCellValue(ledgerSheet, "D3")
	if slab != "1x Slab [PSA 9]" {
		t.Errorf("ledger D3 = %q, want graded summary", slab)
	}

	cashCell, _ := f.GetCellValue(ledgerSheet, "H3")
	if cashCell != "-15" {
		t.Errorf("ledger H3 = %q, want -15 for cash paid out", cashCell)
	}
}
