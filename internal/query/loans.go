package query

import (
	"slices"

	"tracker/internal/core"
)

// LoanFilter narrows the loan list by type and status. Empty fields match all.
type LoanFilter struct {
	Type   core.LoanType
	Status core.LoanStatus
}

func (f LoanFilter) Match(l core.Loan) bool {
	return (f.Type == "" || l.Type == f.Type) &&
		(f.Status == "" || l.Status == f.Status)
}

// FilterLoans returns the matching loans, newest first. Loans on the same
// date keep input order.
func FilterLoans(list []core.Loan, f LoanFilter) []core.Loan {
	out := make([]core.Loan, 0, len(list))
	for _, l := range list {
		if f.Match(l) {
			out = append(out, l)
		}
	}
	slices.SortStableFunc(out, func(a, b core.Loan) int {
		return b.Date.Compare(a.Date.Time)
	})
	return out
}
