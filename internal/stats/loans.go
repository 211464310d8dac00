package stats

import "tracker/internal/core"

// Indicator classifies the net loan position for display.
type Indicator string

const (
	Liability Indicator = "liability"
	Asset     Indicator = "asset"
	Neutral   Indicator = "neutral"
)

// LoanBalance sums outstanding loans. Returned loans are excluded; Active,
// Partial and unrecognised statuses all count as outstanding.
type LoanBalance struct {
	Given core.Money `json:"given"`
	Taken core.Money `json:"taken"`
	Net   core.Money `json:"net"`
}

// Indicator is Liability when the user owes more than is owed to them.
func (b LoanBalance) Indicator() Indicator {
	switch {
	case b.Net.Cents > 0:
		return Liability
	case b.Net.Cents < 0:
		return Asset
	}
	return Neutral
}

// LoanBalances computes outstanding given/taken sums and net = taken - given.
func LoanBalances(list []core.Loan) LoanBalance {
	var b LoanBalance
	for _, l := range list {
		if l.Status == core.StatusReturned {
			continue
		}
		switch l.Type {
		case core.LoanGiven:
			b.Given = b.Given.Add(l.Amount)
		case core.LoanTaken:
			b.Taken = b.Taken.Add(l.Amount)
		}
	}
	b.Net = b.Taken.Sub(b.Given)
	return b
}

// LoanCount is the loan tally used by summary messages.
type LoanCount struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

func LoanCounts(list []core.Loan) LoanCount {
	c := LoanCount{Total: len(list)}
	for _, l := range list {
		if l.Status == core.StatusActive {
			c.Active++
		}
	}
	return c
}

// TotalLoans sums every loan amount regardless of type or status.
func TotalLoans(list []core.Loan) core.Money {
	var total core.Money
	for _, l := range list {
		total = total.Add(l.Amount)
	}
	return total
}
