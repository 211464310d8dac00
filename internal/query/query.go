// Package query filters and orders expense and loan lists for the list
// views. Nothing here mutates its input.
package query

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"tracker/internal/core"
)

var ErrUnknownSortKey = errors.New("unknown sort key")

// SortKey selects the order of the expense list.
type SortKey string

const (
	SortDateDesc   SortKey = "date-desc"
	SortDateAsc    SortKey = "date-asc"
	SortAmountDesc SortKey = "amount-desc"
	SortAmountAsc  SortKey = "amount-asc"
	SortCategory   SortKey = "category"
)

// DefaultSort is the order of the expense list when none is requested.
const DefaultSort = SortDateDesc

// ParseSortKey maps a request value to a SortKey. The empty string is the
// default order.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.TrimSpace(s)); k {
	case "":
		return DefaultSort, nil
	case SortDateDesc, SortDateAsc, SortAmountDesc, SortAmountAsc, SortCategory:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSortKey, s)
}

// ExpenseFilter holds the list view predicates. Zero fields match all.
type ExpenseFilter struct {
	Category string
	Keyword  string
	Date     core.Date
}

// Match reports whether e satisfies every set predicate. Category and date
// are exact; keyword is a case-insensitive substring of the description or
// the category.
func (f ExpenseFilter) Match(e core.Expense) bool {
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if !f.Date.IsEmpty() && !e.Date.Equal(f.Date.Time) {
		return false
	}
	if kw := strings.ToLower(f.Keyword); kw != "" {
		if !strings.Contains(strings.ToLower(e.Description), kw) &&
			!strings.Contains(strings.ToLower(e.Category), kw) {
			return false
		}
	}
	return true
}

// FilterExpenses returns the matching expenses in input order.
func FilterExpenses(list []core.Expense, f ExpenseFilter) []core.Expense {
	out := make([]core.Expense, 0, len(list))
	for _, e := range list {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// SortExpenses returns a stably sorted copy of list.
func SortExpenses(list []core.Expense, key SortKey) []core.Expense {
	out := slices.Clone(list)
	slices.SortStableFunc(out, expenseCmp(key))
	return out
}

func expenseCmp(key SortKey) func(a, b core.Expense) int {
	switch key {
	case SortDateAsc:
		return func(a, b core.Expense) int { return a.Date.Compare(b.Date.Time) }
	case SortAmountDesc:
		return func(a, b core.Expense) int { return cmpCents(b.Amount, a.Amount) }
	case SortAmountAsc:
		return func(a, b core.Expense) int { return cmpCents(a.Amount, b.Amount) }
	case SortCategory:
		// collate.Collator is not safe for concurrent use.
		c := collate.New(language.English)
		return func(a, b core.Expense) int { return c.CompareString(a.Category, b.Category) }
	default:
		return func(a, b core.Expense) int { return b.Date.Compare(a.Date.Time) }
	}
}

func cmpCents(a, b core.Money) int {
	switch {
	case a.Cents < b.Cents:
		return -1
	case a.Cents > b.Cents:
		return 1
	}
	return 0
}

// Expenses applies the filter and then the sort.
func Expenses(list []core.Expense, f ExpenseFilter, key SortKey) []core.Expense {
	return SortExpenses(FilterExpenses(list, f), key)
}

// Categories lists the distinct categories in first-seen order.
func Categories(list []core.Expense) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, e := range list {
		if _, ok := seen[e.Category]; ok {
			continue
		}
		seen[e.Category] = struct{}{}
		out = append(out, e.Category)
	}
	return out
}
