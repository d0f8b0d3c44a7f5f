package export

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cardvault/ledger/internal/domain"
)

// StatsRow is one labeled value in an exported stats report.
type StatsRow struct {
	Section string
	Label   string
	Value   decimal.Decimal
}

// SheetWriter writes stats rows to a spreadsheet destination.
type SheetWriter interface {
	Write(ctx context.Context, ownerID string, rows []StatsRow) error
}

// Service flattens owner stats into report rows and delegates writing to a
// SheetWriter. Implements worker.AfterSnapshotHook.
type Service struct {
	writer SheetWriter
}

// NewService creates a new export Service.
func NewService(writer SheetWriter) *Service {
	return &Service{writer: writer}
}

// Export writes the owner's aggregated stats to the configured sheet.
func (s *Service) Export(ctx context.Context, ownerID string, stats domain.OwnerStats) error {
	if err := s.writer.Write(ctx, ownerID, BuildRows(stats)); err != nil {
		return fmt.Errorf("writing stats export: %w", err)
	}
	return nil
}

// BuildRows flattens owner stats into the report row layout shared by the
// sheets and xlsx writers.
func BuildRows(stats domain.OwnerStats) []StatsRow {
	rows := []StatsRow{
		{Section: "Ledger", Label: "Entries", Value: decimal.NewFromInt(int64(stats.EntryCount))},
	}

	rows = append(rows, typeRows("Buys", stats.Buys)...)
	rows = append(rows, typeRows("Trades", stats.Trades)...)
	rows = append(rows, typeRows("Sales", stats.Sales)...)

	rows = append(rows, splitRows("Acquired value", stats.AcquiredValue)...)
	rows = append(rows, splitRows("Sold value", stats.SoldValue)...)
	rows = append(rows, splitRows("Gained value", stats.GainedValue)...)

	rows = append(rows, StatsRow{Section: "Cash", Label: "Sales proceeds", Value: stats.CashSales})
	return rows
}

func typeRows(section string, totals domain.TypeTotals) []StatsRow {
	return []StatsRow{
		{Section: section, Label: "Count", Value: decimal.NewFromInt(int64(totals.Count))},
		{Section: section, Label: "Total value", Value: totals.TotalValue},
		{Section: section, Label: "Value gained", Value: totals.ValueGained},
	}
}

func splitRows(section string, split domain.GradedSplit) []StatsRow {
	return []StatsRow{
		{Section: section, Label: "Graded", Value: split.Graded},
		{Section: section, Label: "Ungraded", Value: split.Ungraded},
		{Section: section, Label: "Total", Value: split.Total()},
	}
}
