package service

import "github.com/fintrack/fintrack/internal/model"

// zeroSliceValue keeps an exactly empty chart bucket visible as a sliver.
// It only ever affects chart proportions, never a numeric total shown to
// the user.
const zeroSliceValue = 0.1

// Summary is a pure view of one budget value and one expense list
type Summary struct {
	TotalSpent       float64
	RemainingBalance float64
	PercentUsed      float64
	NeedsTotal       float64
	WantsTotal       float64
	OverBudget       bool
}

// Summarize derives the dashboard numbers. No state, no side effects;
// callers recompute it on every change of either input.
func Summarize(budget float64, expenses []model.Expense, overThreshold float64) Summary {
	var s Summary
	for _, expense := range expenses {
		s.TotalSpent += expense.Amount
		if expense.IsNeed {
			s.NeedsTotal += expense.Amount
		} else {
			s.WantsTotal += expense.Amount
		}
	}
	// a negative remaining balance is a valid, displayed state
	s.RemainingBalance = budget - s.TotalSpent
	if budget > 0 {
		s.PercentUsed = s.TotalSpent / budget * 100
	}
	s.OverBudget = s.PercentUsed > overThreshold
	return s
}

// ChartValues returns the needs/wants slice sizes for proportional
// rendering only
func (s Summary) ChartValues() (needs, wants float64) {
	needs, wants = s.NeedsTotal, s.WantsTotal
	if needs == 0 {
		needs = zeroSliceValue
	}
	if wants == 0 {
		wants = zeroSliceValue
	}
	return needs, wants
}
