// Package memory is an in-process spreadsheet sink. Rows accumulate in a
// single grid the way successive appends fill a real sheet. The API tests
// use it in place of the Google Sheets client.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/xuri/excelize/v2"

	ports "tracker/internal/sheets"
)

type Sheet struct {
	mu   sync.Mutex
	name string
	rows [][]string
}

var _ ports.ReportWriter = (*Sheet)(nil)

func New(name string) *Sheet {
	if name == "" {
		name = "Export"
	}
	return &Sheet{name: name}
}

// AppendRows adds rows below the existing ones and returns the A1 range
// they occupy.
func (s *Sheet) AppendRows(_ context.Context, rows [][]string) (string, error) {
	if len(rows) == 0 {
		return "", fmt.Errorf("append to %s: no rows", s.name)
	}
	width := 1
	for _, r := range rows {
		width = max(width, len(r))
	}
	lastCol, err := excelize.ColumnNumberToName(width)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	first := len(s.rows) + 1
	for _, r := range rows {
		s.rows = append(s.rows, slices.Clone(r))
	}
	return fmt.Sprintf("%s!A%d:%s%d", s.name, first, lastCol, len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Sheet) Rows() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.rows))
	for i, r := range s.rows {
		out[i] = slices.Clone(r)
	}
	return out
}
