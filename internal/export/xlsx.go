package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	ExpensesSheet = "Expenses"
	LoansSheet    = "Loans"
)

// XLSX renders the selection as a workbook with one sheet per non-empty
// section. Amounts are written as numbers.
func XLSX(sel Selection) ([]byte, error) {
	if sel.Empty() {
		return nil, ErrNothingSelected
	}

	f := excelize.NewFile()
	defer f.Close()

	first := true
	addSheet := func(name string) error {
		if first {
			first = false
			return f.SetSheetName(f.GetSheetName(0), name)
		}
		_, err := f.NewSheet(name)
		return err
	}

	if len(sel.Expenses) > 0 {
		if err := addSheet(ExpensesSheet); err != nil {
			return nil, fmt.Errorf("create expenses sheet: %w", err)
		}
		rows := make([][]any, 0, len(sel.Expenses))
		for _, e := range sel.Expenses {
			rows = append(rows, []any{e.Date.String(), e.Category, e.Description, e.Amount.Float64()})
		}
		if err := writeSheet(f, ExpensesSheet, ExpenseHeader, rows); err != nil {
			return nil, err
		}
		f.SetColWidth(ExpensesSheet, "A", "A", 12)
		f.SetColWidth(ExpensesSheet, "B", "B", 18)
		f.SetColWidth(ExpensesSheet, "C", "C", 30)
		f.SetColWidth(ExpensesSheet, "D", "D", 12)
	}

	if len(sel.Loans) > 0 {
		if err := addSheet(LoansSheet); err != nil {
			return nil, fmt.Errorf("create loans sheet: %w", err)
		}
		rows := make([][]any, 0, len(sel.Loans))
		for _, l := range sel.Loans {
			rows = append(rows, []any{l.Person, string(l.Type), l.Amount.Float64(), string(l.Status), l.Date.String(), l.Description})
		}
		if err := writeSheet(f, LoansSheet, LoanHeader, rows); err != nil {
			return nil, err
		}
		f.SetColWidth(LoansSheet, "A", "A", 18)
		f.SetColWidth(LoansSheet, "F", "F", 30)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any) error {
	head := make([]any, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
