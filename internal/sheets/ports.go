// Package sheets defines the outbound ports for spreadsheet export sinks.
package sheets

import "context"

// Ports for outbound adapters.
type (
	// ReportWriter appends a block of rows to a spreadsheet and returns a
	// reference to the written range.
	ReportWriter interface {
		AppendRows(ctx context.Context, rows [][]string) (rangeRef string, err error)
	}
)
