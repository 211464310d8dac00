// Package export turns a selection of records into downloadable reports:
// the two-section CSV, an XLSX workbook, and the plain row matrix used by
// the spreadsheet sink. It also renders the summary text sent to the user
// after an export.
package export

import (
	"errors"

	"tracker/internal/core"
	"tracker/internal/store"
)

var ErrNothingSelected = errors.New("nothing selected")

const (
	ExpensesLabel = "EXPENSES"
	LoansLabel    = "LOANS"
)

var (
	ExpenseHeader = []string{"Date", "Category", "Description", "Amount (₹)"}
	LoanHeader    = []string{"Person", "Type", "Amount (₹)", "Status", "Date", "Description"}
)

// Selection is the subset of records chosen for an export.
type Selection struct {
	Expenses []core.Expense
	Loans    []core.Loan
}

func (s Selection) Empty() bool {
	return len(s.Expenses) == 0 && len(s.Loans) == 0
}

// Select picks the records whose ids are listed, in store order. Unknown
// ids are ignored.
func Select(snap store.Snapshot, expenseIDs, loanIDs []int64) Selection {
	want := func(ids []int64) map[int64]bool {
		m := make(map[int64]bool, len(ids))
		for _, id := range ids {
			m[id] = true
		}
		return m
	}

	var sel Selection
	if len(expenseIDs) > 0 {
		ids := want(expenseIDs)
		for _, e := range snap.Expenses {
			if ids[e.ID] {
				sel.Expenses = append(sel.Expenses, e)
			}
		}
	}
	if len(loanIDs) > 0 {
		ids := want(loanIDs)
		for _, l := range snap.Loans {
			if ids[l.ID] {
				sel.Loans = append(sel.Loans, l)
			}
		}
	}
	return sel
}

// All selects every record in the snapshot.
func All(snap store.Snapshot) Selection {
	return Selection{Expenses: snap.Expenses, Loans: snap.Loans}
}

type section struct {
	label  string
	header []string
	rows   [][]string
}

func expenseRow(e core.Expense) []string {
	return []string{e.Date.String(), e.Category, e.Description, e.Amount.String()}
}

func loanRow(l core.Loan) []string {
	return []string{l.Person, string(l.Type), l.Amount.String(), string(l.Status), l.Date.String(), l.Description}
}

// sections lists the non-empty sections of sel, expenses first.
func sections(sel Selection) []section {
	var out []section
	if len(sel.Expenses) > 0 {
		s := section{label: ExpensesLabel, header: ExpenseHeader}
		for _, e := range sel.Expenses {
			s.rows = append(s.rows, expenseRow(e))
		}
		out = append(out, s)
	}
	if len(sel.Loans) > 0 {
		s := section{label: LoansLabel, header: LoanHeader}
		for _, l := range sel.Loans {
			s.rows = append(s.rows, loanRow(l))
		}
		out = append(out, s)
	}
	return out
}

// Rows lays the selection out as a matrix: each section is a label row, a
// header row and its records, with one empty row between sections.
func Rows(sel Selection) ([][]string, error) {
	if sel.Empty() {
		return nil, ErrNothingSelected
	}
	var out [][]string
	for i, s := range sections(sel) {
		if i > 0 {
			out = append(out, []string{})
		}
		out = append(out, []string{s.label}, s.header)
		out = append(out, s.rows...)
	}
	return out, nil
}
