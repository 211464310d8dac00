package stats

import "tracker/internal/core"

// BudgetLevel is the three-tier classification of monthly spend.
type BudgetLevel string

const (
	UnderBudget BudgetLevel = "underBudget"
	Approaching BudgetLevel = "approaching"
	OverBudget  BudgetLevel = "overBudget"
)

// BudgetReport describes spend against the monthly budget. Percent is the
// capped ratio scaled to 0..100 for progress bars.
type BudgetReport struct {
	Spend     core.Money  `json:"spend"`
	Budget    core.Money  `json:"budget"`
	Remaining core.Money  `json:"remaining"`
	Ratio     float64     `json:"ratio"`
	Percent   float64     `json:"percent"`
	Level     BudgetLevel `json:"level"`
}

// BudgetStatus classifies spend against budget. The ratio is capped at 1.
// A budget of zero or less never divides: the ratio is 1 when anything was
// spent and 0 otherwise.
func BudgetStatus(spend, budget core.Money) BudgetReport {
	r := BudgetReport{
		Spend:     spend,
		Budget:    budget,
		Remaining: Remaining(spend, budget),
	}

	switch {
	case budget.Cents <= 0:
		if spend.Cents > 0 {
			r.Ratio = 1
		}
	default:
		r.Ratio = min(spend.Float64()/budget.Float64(), 1)
	}
	r.Percent = r.Ratio * 100

	switch {
	case spend.Cents > budget.Cents:
		r.Level = OverBudget
	case float64(spend.Cents) > approachingShare*float64(budget.Cents):
		r.Level = Approaching
	default:
		r.Level = UnderBudget
	}
	return r
}

// Remaining is budget minus spend; negative means over budget.
func Remaining(spend, budget core.Money) core.Money {
	return budget.Sub(spend)
}
