package stats

import "tracker/internal/core"

// Dashboard bundles the figures of the main screen for one month.
type Dashboard struct {
	Year          int                   `json:"year"`
	Month         int                   `json:"month"`
	Total         core.Money            `json:"total"`
	MonthSpend    core.Money            `json:"monthSpend"`
	TopCategories []core.CategoryAmount `json:"topCategories"`
	Loans         LoanBalance           `json:"loans"`
	LoanIndicator Indicator             `json:"loanIndicator"`
	Budget        BudgetReport          `json:"budget"`
}

// MonthReport is the reports view: month total against budget, the daily
// spend of that month, the full category breakdown and the monthly trend.
type MonthReport struct {
	Year       int                   `json:"year"`
	Month      int                   `json:"month"`
	Total      core.Money            `json:"total"`
	Remaining  core.Money            `json:"remaining"`
	OverBudget bool                  `json:"overBudget"`
	Daily      []core.DayAmount      `json:"daily"`
	Categories []core.CategoryAmount `json:"categories"`
	Trend      []core.MonthAmount    `json:"trend"`
}

func BuildDashboard(expenses []core.Expense, loans []core.Loan, budget core.Money, year, month int) Dashboard {
	spend := MonthlyExpenses(expenses, year, month)
	balance := LoanBalances(loans)
	return Dashboard{
		Year:          year,
		Month:         month,
		Total:         TotalExpenses(expenses),
		MonthSpend:    spend,
		TopCategories: TopCategories(expenses, DashboardTopCategories),
		Loans:         balance,
		LoanIndicator: balance.Indicator(),
		Budget:        BudgetStatus(spend, budget),
	}
}

// BuildMonthReport uses all expenses for the category breakdown and trend,
// and only the selected month for the total and daily series.
func BuildMonthReport(expenses []core.Expense, budget core.Money, year, month int) MonthReport {
	total := MonthlyExpenses(expenses, year, month)
	remaining := Remaining(total, budget)
	return MonthReport{
		Year:       year,
		Month:      month,
		Total:      total,
		Remaining:  remaining,
		OverBudget: remaining.Cents < 0,
		Daily:      DailyBreakdown(expenses, year, month),
		Categories: CategoryTotals(expenses),
		Trend:      MonthlyTrend(expenses),
	}
}
