package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/cardvault/ledger/internal/domain"
)

const (
	statsSheet  = "Stats"
	ledgerSheet = "Ledger"
)

// WriteWorkbook writes an owner's stats and full ledger into an xlsx workbook
// at the given path.
func WriteWorkbook(path, ownerID string, entries []domain.LedgerEntry, stats domain.OwnerStats) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), statsSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(ledgerSheet); err != nil {
		return fmt.Errorf("adding ledger sheet: %w", err)
	}

	if err := writeStatsSheet(f, ownerID, stats); err != nil {
		return err
	}
	if err := writeLedgerSheet(f, entries); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func writeStatsSheet(f *excelize.File, ownerID string, stats domain.OwnerStats) error {
	header, err := boldStyle(f)
	if err != nil {
		return err
	}

	f.SetCellValue(statsSheet, "A1", "Owner")
	f.SetCellValue(statsSheet, "B1", ownerID)
	f.SetCellStyle(statsSheet, "A1", "A1", header)

	f.SetCellValue(statsSheet, "A3", "Section")
	f.SetCellValue(statsSheet, "B3", "Metric")
	f.SetCellValue(statsSheet, "C3", "Value")
	f.SetCellStyle(statsSheet, "A3", "C3", header)

	for i, row := range BuildRows(stats) {
		r := i + 4
		f.SetCellValue(statsSheet, cell("A", r), row.Section)
		f.SetCellValue(statsSheet, cell("B", r), row.Label)
		f.SetCellValue(statsSheet, cell("C", r), toFloat(row.Value))
	}

	f.SetColWidth(statsSheet, "A", "B", 20)
	f.SetColWidth(statsSheet, "C", "C", 14)
	return nil
}

var ledgerHeaders = []string{
	"ID", "Date", "Type", "Items in", "Items out",
	"Total value", "Value gained", "Cash", "Currency",
}

func writeLedgerSheet(f *excelize.File, entries []domain.LedgerEntry) error {
	header, err := boldStyle(f)
	if err != nil {
		return err
	}

	for i, h := range ledgerHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(ledgerSheet, cell(col, 1), h)
	}
	f.SetCellStyle(ledgerSheet, "A1", cell(lastLedgerCol(), 1), header)

	for i, e := range entries {
		r := i + 2
		f.SetCellValue(ledgerSheet, cell("A", r), e.ID)
		f.SetCellValue(ledgerSheet, cell("B", r), e.CreatedAt.UTC().Format("2006-01-02 15:04"))
		f.SetCellValue(ledgerSheet, cell("C", r), string(e.Type))
		f.SetCellValue(ledgerSheet, cell("D", r), summarizeItems(e.ItemsIn))
		f.SetCellValue(ledgerSheet, cell("E", r), summarizeItems(e.ItemsOut))
		f.SetCellValue(ledgerSheet, cell("F", r), toFloat(e.TotalValue))
		f.SetCellValue(ledgerSheet, cell("G", r), toFloat(e.ValueGained))
		if e.CashAmount != nil {
			cash := toFloat(*e.CashAmount)
			if e.CashDirection == domain.CashOut {
				cash = -cash
			}
			f.SetCellValue(ledgerSheet, cell("H", r), cash)
		}
		f.SetCellValue(ledgerSheet, cell("I", r), e.Currency)
	}

	f.SetColWidth(ledgerSheet, "B", "B", 18)
	f.SetColWidth(ledgerSheet, "D", "E", 40)
	return nil
}

// summarizeItems renders line items as "2x Card A (NM), 1x Card B" for the
// compact workbook columns.
func summarizeItems(items []domain.LineItem) string {
	out := ""
	for i, it := range items {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%dx %s", it.Quantity, it.Name)
		if it.IsGraded {
			out += fmt.Sprintf(" [%s %s]", it.GradingCompany, it.Grade)
		} else if it.Condition != "" {
			out += fmt.Sprintf(" (%s)", it.Condition)
		}
	}
	return out
}

func boldStyle(f *excelize.File) (int, error) {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, fmt.Errorf("creating header style: %w", err)
	}
	return style, nil
}

func lastLedgerCol() string {
	col, _ := excelize.ColumnNumberToName(len(ledgerHeaders))
	return col
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
