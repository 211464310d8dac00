package export

import (
	"fmt"
	"strings"
	"time"

	"tracker/internal/core"
	"tracker/internal/stats"
	"tracker/internal/store"
)

// generatedLayout matches the short US date the summaries have always used.
const generatedLayout = "1/2/2006"

func rupees(m core.Money) string {
	return "₹" + m.String()
}

// Summary is the message sent after a full export: overall and current
// month spend, loan counts and what is left of the monthly budget (never
// below zero).
func Summary(snap store.Snapshot, now time.Time) string {
	month := stats.MonthlyExpenses(snap.Expenses, now.Year(), int(now.Month()))
	remaining := stats.Remaining(month, snap.Budget)
	if remaining.Cents < 0 {
		remaining = core.Money{}
	}
	loans := stats.LoanCounts(snap.Loans)

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s! Your Expense Tracker Summary:\n", snap.Profile.Name)
	fmt.Fprintf(&b, "Total Expenses: %s\n", rupees(stats.TotalExpenses(snap.Expenses)))
	fmt.Fprintf(&b, "This Month: %s\n", rupees(month))
	fmt.Fprintf(&b, "Total Loans: %d\n", loans.Total)
	fmt.Fprintf(&b, "Active Loans: %d\n", loans.Active)
	fmt.Fprintf(&b, "Budget Remaining: %s\n", rupees(remaining))
	fmt.Fprintf(&b, "Generated on: %s", now.Format(generatedLayout))
	return b.String()
}

// SelectionSummary is the message sent after a selective export.
func SelectionSummary(sel Selection, profile core.Profile, now time.Time) string {
	expenses := stats.TotalExpenses(sel.Expenses)
	loans := stats.TotalLoans(sel.Loans)

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s! Selected Export Summary:\n", profile.Name)
	fmt.Fprintf(&b, "Selected Expenses: %d (%s)\n", len(sel.Expenses), rupees(expenses))
	fmt.Fprintf(&b, "Selected Loans: %d (%s)\n", len(sel.Loans), rupees(loans))
	fmt.Fprintf(&b, "Total Selected: %s\n", rupees(expenses.Add(loans)))
	fmt.Fprintf(&b, "Generated on: %s", now.Format(generatedLayout))
	return b.String()
}
