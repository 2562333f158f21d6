package consumer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fintrack/fintrack/internal/config"
	"github.com/fintrack/fintrack/internal/model"
)

func Test_parseEntry(t *testing.T) {
	testTable := []struct {
		name     string
		text     string
		expected *model.ExpenseInput
		wantErr  bool
	}{
		{
			name: "amount and category default to need",
			text: "500 Food",
			expected: &model.ExpenseInput{
				Amount:   500,
				Category: "Food",
				IsNeed:   true,
			},
		},
		{
			name: "explicit want",
			text: "1500 Fun want",
			expected: &model.ExpenseInput{
				Amount:   1500,
				Category: "Fun",
				IsNeed:   false,
			},
		},
		{
			name: "explicit need with fractional amount",
			text: "12.5 Travel need",
			expected: &model.ExpenseInput{
				Amount:   12.5,
				Category: "Travel",
				IsNeed:   true,
			},
		},
		{
			name: "necessity word is case insensitive",
			text: "200 Study WANT",
			expected: &model.ExpenseInput{
				Amount:   200,
				Category: "Study",
				IsNeed:   false,
			},
		},
		{
			name:    "amount and category swapped",
			text:    "Food 500",
			wantErr: true,
		},
		{
			name:    "amount alone",
			text:    "500",
			wantErr: true,
		},
		{
			name:    "unknown necessity word",
			text:    "500 Food maybe",
			wantErr: true,
		},
		{
			name:    "too many words",
			text:    "500 Food need today",
			wantErr: true,
		},
		{
			name:    "empty message",
			text:    "",
			wantErr: true,
		},
	}
	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			in, err := parseEntry(testCase.text)
			if testCase.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, testCase.expected, in)
		})
	}
}

func TestTracker_knownCategory(t *testing.T) {
	tracker := NewTracker(nil, nil, nil, nil, nil, config.Budget{}, nil)

	require.True(t, tracker.knownCategory("Food"))
	require.True(t, tracker.knownCategory("food"))
	require.False(t, tracker.knownCategory("Rent"))

	tracker.categories = append(tracker.categories, "Rent")
	require.True(t, tracker.knownCategory("Rent"))
}
