package export

import (
	"strings"

	"tracker/internal/core"
)

// quote wraps a field in double quotes, doubling any embedded quote.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func joinQuoted(fields []string) string {
	q := make([]string, len(fields))
	for i, f := range fields {
		q[i] = quote(f)
	}
	return strings.Join(q, ",")
}

// CSV renders the selection. Label and header rows are written bare, every
// data field is quoted, and sections are separated by a blank line.
func CSV(sel Selection) ([]byte, error) {
	if sel.Empty() {
		return nil, ErrNothingSelected
	}
	var lines []string
	for i, s := range sections(sel) {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, s.label, strings.Join(s.header, ","))
		for _, r := range s.rows {
			lines = append(lines, joinQuoted(r))
		}
	}
	return []byte(strings.Join(lines, "\n")), nil
}

// ExpensesCSV renders every expense under a single quoted header row.
// An empty list yields the header alone.
func ExpensesCSV(list []core.Expense) []byte {
	lines := make([]string, 0, len(list)+1)
	lines = append(lines, joinQuoted(ExpenseHeader))
	for _, e := range list {
		lines = append(lines, joinQuoted(expenseRow(e)))
	}
	return []byte(strings.Join(lines, "\n"))
}
