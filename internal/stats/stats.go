// Package stats computes the derived figures shown on the dashboard and in
// reports: totals, per-category and per-month sums, budget progress and
// loan balances.
//
// Every function is pure and recomputes from the slices it is given; there
// is no cached state to invalidate.
package stats

import (
	"slices"
	"strings"

	"tracker/internal/core"
)

// DashboardTopCategories is how many categories the dashboard summary lists.
const DashboardTopCategories = 5

// approachingShare is the fraction of the budget past which spend is
// flagged as approaching.
const approachingShare = 0.8

// TotalExpenses sums the amount of every expense.
func TotalExpenses(list []core.Expense) core.Money {
	var total core.Money
	for _, e := range list {
		total = total.Add(e.Amount)
	}
	return total
}

// ExpensesInMonth returns the expenses dated in the given calendar month,
// in input order.
func ExpensesInMonth(list []core.Expense, year, month int) []core.Expense {
	var out []core.Expense
	for _, e := range list {
		if e.Date.InMonth(year, month) {
			out = append(out, e)
		}
	}
	return out
}

// MonthlyExpenses sums the expenses dated in the given calendar month.
func MonthlyExpenses(list []core.Expense, year, month int) core.Money {
	return TotalExpenses(ExpensesInMonth(list, year, month))
}

// CategoryTotals groups expenses by category (case-sensitive) and orders
// the groups by amount descending. Equal amounts keep first-seen order.
func CategoryTotals(list []core.Expense) []core.CategoryAmount {
	index := map[string]int{}
	var out []core.CategoryAmount
	for _, e := range list {
		i, ok := index[e.Category]
		if !ok {
			i = len(out)
			index[e.Category] = i
			out = append(out, core.CategoryAmount{Name: e.Category})
		}
		out[i].Amount = out[i].Amount.Add(e.Amount)
	}
	slices.SortStableFunc(out, func(a, b core.CategoryAmount) int {
		switch {
		case a.Amount.Cents > b.Amount.Cents:
			return -1
		case a.Amount.Cents < b.Amount.Cents:
			return 1
		}
		return 0
	})
	return out
}

// TopCategories is CategoryTotals truncated to the n largest groups.
func TopCategories(list []core.Expense, n int) []core.CategoryAmount {
	all := CategoryTotals(list)
	if n >= 0 && len(all) > n {
		all = all[:n]
	}
	return all
}

// MonthlyTrend sums expenses per "YYYY-MM" key, keys ascending.
func MonthlyTrend(list []core.Expense) []core.MonthAmount {
	sums := map[string]core.Money{}
	for _, e := range list {
		if e.Date.IsEmpty() {
			continue
		}
		k := e.Date.YearMonth()
		sums[k] = sums[k].Add(e.Amount)
	}
	out := make([]core.MonthAmount, 0, len(sums))
	for k, v := range sums {
		out = append(out, core.MonthAmount{Month: k, Amount: v})
	}
	slices.SortFunc(out, func(a, b core.MonthAmount) int {
		return strings.Compare(a.Month, b.Month)
	})
	return out
}

// DailyBreakdown sums the given month's expenses per day of month, days
// ascending. Days without spend are omitted.
func DailyBreakdown(list []core.Expense, year, month int) []core.DayAmount {
	sums := map[int]core.Money{}
	for _, e := range ExpensesInMonth(list, year, month) {
		sums[e.Date.Day()] = sums[e.Date.Day()].Add(e.Amount)
	}
	out := make([]core.DayAmount, 0, len(sums))
	for d, v := range sums {
		out = append(out, core.DayAmount{Day: d, Amount: v})
	}
	slices.SortFunc(out, func(a, b core.DayAmount) int { return a.Day - b.Day })
	return out
}
