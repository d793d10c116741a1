// Package export writes the ledger and its expense breakdown to an xlsx
// workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"budgetbook/internal/aggregate"
	"budgetbook/internal/core"
)

// Sheet names
const (
	SheetTransactions = "Transactions"
	SheetBreakdown    = "Breakdown"
)

var (
	transactionHeaders = []string{"ID", "Date", "Description", "Category", "Amount", "Recurring"}
	breakdownHeaders   = []string{"Category", "Amount", "Percent"}
)

// WriteWorkbook writes one sheet with every transaction and one with the
// expense breakdown. Amounts are numeric cells labelled with currencyCode.
func WriteWorkbook(w io.Writer, ledger []core.Transaction, currencyCode string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetTransactions); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeHeaders(f, SheetTransactions, transactionHeaders, currencyCode); err != nil {
		return err
	}
	for i, tx := range ledger {
		row := i + 2
		recurring := ""
		if tx.IsRecurring {
			recurring = "yes"
		}
		values := []any{
			tx.ID,
			tx.Date.UTC().Format(time.DateOnly),
			tx.Description,
			tx.Category,
			tx.Amount.InexactFloat64(),
			recurring,
		}
		if err := setRow(f, SheetTransactions, row, values); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(SheetBreakdown); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := writeHeaders(f, SheetBreakdown, breakdownHeaders, currencyCode); err != nil {
		return err
	}
	b := aggregate.NewBreakdown(ledger)
	for i, share := range b.Shares {
		values := []any{share.Name, share.Amount.InexactFloat64(), share.Percent.InexactFloat64()}
		if err := setRow(f, SheetBreakdown, i+2, values); err != nil {
			return err
		}
	}
	totalRow := len(b.Shares) + 2
	if err := setRow(f, SheetBreakdown, totalRow, []any{"Total", b.Total.InexactFloat64()}); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeHeaders(f *excelize.File, sheet string, headers []string, currencyCode string) error {
	values := make([]any, len(headers))
	for i, h := range headers {
		if h == "Amount" && currencyCode != "" {
			h = fmt.Sprintf("Amount (%s)", currencyCode)
		}
		values[i] = h
	}
	return setRow(f, sheet, 1, values)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
