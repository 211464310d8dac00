package services

import (
	"context"
	"errors"
	"fmt"

	"tracker/internal/amqp"
	"tracker/internal/export"
	"tracker/internal/log"
)

var (
	ErrUnknownFormat  = errors.New("unknown export format")
	ErrSheetsDisabled = errors.New("sheets export not configured")
)

// Format selects the output of a selective export.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatXLSX   Format = "xlsx"
	FormatSheets Format = "sheets"
)

const fileDateLayout = "2006-01-02"

// ParseFormat maps the request value to a Format; empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatXLSX, FormatSheets:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// File is a generated export. Sheets exports carry no content, only the
// range the rows were appended to.
type File struct {
	Name        string
	ContentType string
	Content     []byte
	SheetsRange string
}

// ExportAll renders every expense as CSV and sends the overall summary.
func (s *LedgerService) ExportAll(ctx context.Context) (File, error) {
	snap := s.store.Snapshot()
	now := s.now()

	f := File{
		Name:        "expenses_" + now.Format(fileDateLayout) + ".csv",
		ContentType: "text/csv",
		Content:     export.ExpensesCSV(snap.Expenses),
	}
	s.logger.InfoContext(ctx, "Export generated",
		log.FieldExportFormat, string(FormatCSV),
		log.FieldExpenses, len(snap.Expenses))

	s.notify(ctx, amqp.KindExportSummary, snap.Profile, export.Summary(snap, now))
	return f, nil
}

// ExportSelection renders the chosen records in the requested format and
// sends the selection summary.
func (s *LedgerService) ExportSelection(ctx context.Context, expenseIDs, loanIDs []int64, format Format) (File, error) {
	snap := s.store.Snapshot()
	sel := export.Select(snap, expenseIDs, loanIDs)
	if sel.Empty() {
		return File{}, export.ErrNothingSelected
	}
	now := s.now()
	name := "selected_data_" + now.Format(fileDateLayout)

	var (
		f   File
		err error
	)
	switch format {
	case FormatCSV:
		f = File{Name: name + ".csv", ContentType: "text/csv"}
		f.Content, err = export.CSV(sel)
	case FormatXLSX:
		f = File{Name: name + ".xlsx", ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"}
		f.Content, err = export.XLSX(sel)
	case FormatSheets:
		f, err = s.appendToSheets(ctx, sel)
	default:
		return File{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		s.events.LogError(ctx, "Export failed", err, log.ComponentExport, log.OpExport, nil)
		return File{}, err
	}

	s.logger.InfoContext(ctx, "Export generated",
		log.FieldExportFormat, string(format),
		log.FieldExpenses, len(sel.Expenses),
		log.FieldLoans, len(sel.Loans))

	s.notify(ctx, amqp.KindSelectionSummary, snap.Profile, export.SelectionSummary(sel, snap.Profile, now))
	return f, nil
}

func (s *LedgerService) appendToSheets(ctx context.Context, sel export.Selection) (File, error) {
	if s.sheets == nil {
		return File{}, ErrSheetsDisabled
	}
	rows, err := export.Rows(sel)
	if err != nil {
		return File{}, err
	}
	ref, err := s.sheets.AppendRows(ctx, rows)
	if err != nil {
		return File{}, fmt.Errorf("append to sheets: %w", err)
	}
	s.logger.InfoContext(ctx, "Rows appended to spreadsheet", log.FieldSheetsRef, ref)
	return File{SheetsRange: ref}, nil
}
