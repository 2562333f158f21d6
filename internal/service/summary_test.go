package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fintrack/fintrack/internal/model"
)

func TestSummarize(t *testing.T) {
	testTable := []struct {
		name     string
		budget   float64
		expenses []model.Expense
		result   Summary
	}{
		{
			name:   "needs and wants within budget",
			budget: 10000,
			expenses: []model.Expense{
				{Amount: 500, Category: "Food", IsNeed: true},
				{Amount: 1500, Category: "Fun", IsNeed: false},
			},
			result: Summary{
				TotalSpent:       2000,
				RemainingBalance: 8000,
				PercentUsed:      20,
				NeedsTotal:       500,
				WantsTotal:       1500,
			},
		},
		{
			name:     "over budget with negative balance",
			budget:   1000,
			expenses: []model.Expense{{Amount: 1200, Category: "Travel", IsNeed: false}},
			result: Summary{
				TotalSpent:       1200,
				RemainingBalance: -200,
				PercentUsed:      120,
				WantsTotal:       1200,
				OverBudget:       true,
			},
		},
		{
			name:   "empty list spends nothing",
			budget: 10000,
			result: Summary{
				RemainingBalance: 10000,
			},
		},
		{
			name:     "zero budget guards the division",
			budget:   0,
			expenses: []model.Expense{{Amount: 100, Category: "Food", IsNeed: true}},
			result: Summary{
				TotalSpent:       100,
				RemainingBalance: -100,
				PercentUsed:      0,
				NeedsTotal:       100,
			},
		},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.result, Summarize(testCase.budget, testCase.expenses, 80))
		})
	}
}

func TestSummarize_OrderIndependent(t *testing.T) {
	expenses := []model.Expense{
		{Amount: 3.6, Category: "Food", IsNeed: true},
		{Amount: 560, Category: "Rent", IsNeed: true},
		{Amount: 20.40, Category: "Fun", IsNeed: false},
	}
	reversed := []model.Expense{expenses[2], expenses[1], expenses[0]}

	require.Equal(t, Summarize(1000, expenses, 80), Summarize(1000, reversed, 80))
}

func TestSummarize_Threshold(t *testing.T) {
	expenses := []model.Expense{{Amount: 850, Category: "Food", IsNeed: true}}

	require.Equal(t, true, Summarize(1000, expenses, 80).OverBudget)
	require.Equal(t, false, Summarize(1000, expenses, 90).OverBudget)
	// exactly at the threshold is not over it
	require.Equal(t, false, Summarize(1000, expenses, 85).OverBudget)
}

func TestSummary_ChartValues(t *testing.T) {
	s := Summarize(10000, []model.Expense{{Amount: 500, Category: "Fun", IsNeed: false}}, 80)

	needs, wants := s.ChartValues()
	require.Equal(t, zeroSliceValue, needs)
	require.Equal(t, 500.0, wants)

	// the placeholder never leaks into the numeric totals
	require.Equal(t, 0.0, s.NeedsTotal)
	require.Equal(t, 500.0, s.TotalSpent)
	require.Equal(t, 9500.0, s.RemainingBalance)
}
