package query

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker/internal/core"
)

func mustDate(t *testing.T, s string) core.Date {
	t.Helper()
	d, err := core.ParseDate(s)
	require.NoError(t, err)
	return d
}

func fixtures(t *testing.T) []core.Expense {
	return []core.Expense{
		{ID: 1, Date: mustDate(t, "2024-01-15"), Category: "Groceries", Description: "Weekly shop", Amount: core.Money{Cents: 125050}},
		{ID: 2, Date: mustDate(t, "2024-01-16"), Category: "Transportation", Description: "Taxi to airport", Amount: core.Money{Cents: 45000}},
		{ID: 3, Date: mustDate(t, "2024-01-17"), Category: "Entertainment", Description: "Movie tickets", Amount: core.Money{Cents: 75000}},
		{ID: 4, Date: mustDate(t, "2024-01-16"), Category: "dining", Description: "Lunch with team", Amount: core.Money{Cents: 45000}},
		{ID: 5, Date: mustDate(t, "2023-12-31"), Category: "Groceries", Description: "Party snacks", Amount: core.Money{Cents: 30000}},
	}
}

func ids(list []core.Expense) []int64 {
	out := make([]int64, len(list))
	for i, e := range list {
		out[i] = e.ID
	}
	return out
}

func TestParseSortKey(t *testing.T) {
	k, err := ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortDateDesc, k)

	for _, s := range []string{"date-desc", "date-asc", "amount-desc", "amount-asc", "category"} {
		k, err := ParseSortKey(s)
		require.NoError(t, err, s)
		assert.Equal(t, SortKey(s), k)
	}

	_, err = ParseSortKey("price")
	assert.ErrorIs(t, err, ErrUnknownSortKey)
}

func TestFilterExpenses(t *testing.T) {
	list := fixtures(t)
	cases := []struct {
		name   string
		filter ExpenseFilter
		want   []int64
	}{
		{"empty filter matches all", ExpenseFilter{}, []int64{1, 2, 3, 4, 5}},
		{"category exact", ExpenseFilter{Category: "Groceries"}, []int64{1, 5}},
		{"category is case-sensitive", ExpenseFilter{Category: "groceries"}, []int64{}},
		{"keyword in description", ExpenseFilter{Keyword: "TAXI"}, []int64{2}},
		{"keyword in category", ExpenseFilter{Keyword: "dIn"}, []int64{4}},
		{"date exact", ExpenseFilter{Date: mustDate(t, "2024-01-16")}, []int64{2, 4}},
		{"predicates combine", ExpenseFilter{Date: mustDate(t, "2024-01-16"), Keyword: "lunch"}, []int64{4}},
		{"no match", ExpenseFilter{Category: "Groceries", Keyword: "movie"}, []int64{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(FilterExpenses(list, tc.filter)))
		})
	}
}

func TestFilterExpensesIsIdempotent(t *testing.T) {
	list := fixtures(t)
	f := ExpenseFilter{Keyword: "e"}
	once := FilterExpenses(list, f)
	assert.Equal(t, once, FilterExpenses(once, f))
}

func TestSortExpenses(t *testing.T) {
	list := fixtures(t)
	cases := []struct {
		key  SortKey
		want []int64
	}{
		{SortDateDesc, []int64{3, 2, 4, 1, 5}},
		{SortDateAsc, []int64{5, 1, 2, 4, 3}},
		{SortAmountDesc, []int64{1, 3, 2, 4, 5}},
		{SortAmountAsc, []int64{5, 2, 4, 3, 1}},
		{SortCategory, []int64{4, 3, 1, 5, 2}},
	}
	for _, tc := range cases {
		t.Run(string(tc.key), func(t *testing.T) {
			assert.Equal(t, tc.want, ids(SortExpenses(list, tc.key)))
		})
	}
}

func TestSortExpensesLeavesInputUntouched(t *testing.T) {
	list := fixtures(t)
	before := slices.Clone(list)
	_ = SortExpenses(list, SortAmountAsc)
	assert.Equal(t, before, list)
}

func TestSortDateDescThenAscIsAscending(t *testing.T) {
	list := fixtures(t)
	asc := SortExpenses(list, SortDateAsc)
	assert.Equal(t, ids(asc), ids(SortExpenses(SortExpenses(list, SortDateDesc), SortDateAsc)))

	desc := SortExpenses(list, SortDateDesc)
	for i := 1; i < len(desc); i++ {
		assert.False(t, desc[i].Date.After(desc[i-1].Date.Time))
	}
}

func TestExpensesFiltersThenSorts(t *testing.T) {
	got := Expenses(fixtures(t), ExpenseFilter{Category: "Groceries"}, SortDateAsc)
	assert.Equal(t, []int64{5, 1}, ids(got))
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"Groceries", "Transportation", "Entertainment", "dining"}, Categories(fixtures(t)))
	assert.Empty(t, Categories(nil))
}

func TestFilterLoans(t *testing.T) {
	loans := []core.Loan{
		{ID: 1, Type: core.LoanGiven, Status: core.StatusActive, Date: mustDate(t, "2024-01-10")},
		{ID: 2, Type: core.LoanTaken, Status: core.StatusActive, Date: mustDate(t, "2024-02-01")},
		{ID: 3, Type: core.LoanGiven, Status: core.StatusReturned, Date: mustDate(t, "2024-03-05")},
		{ID: 4, Type: core.LoanGiven, Status: core.StatusActive, Date: mustDate(t, "2024-01-10")},
	}
	loanIDs := func(list []core.Loan) []int64 {
		out := make([]int64, len(list))
		for i, l := range list {
			out[i] = l.ID
		}
		return out
	}

	assert.Equal(t, []int64{3, 2, 1, 4}, loanIDs(FilterLoans(loans, LoanFilter{})))
	assert.Equal(t, []int64{3, 1, 4}, loanIDs(FilterLoans(loans, LoanFilter{Type: core.LoanGiven})))
	assert.Equal(t, []int64{1, 4}, loanIDs(FilterLoans(loans, LoanFilter{Type: core.LoanGiven, Status: core.StatusActive})))
	assert.Empty(t, FilterLoans(loans, LoanFilter{Status: core.StatusPartial}))
	assert.Equal(t, int64(1), loans[0].ID, "input order is preserved")
}
