package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fintrack/fintrack/internal/model"
)

func receiveBudget(t *testing.T, ch <-chan *model.Budget) *model.Budget {
	t.Helper()
	select {
	case budget := <-ch:
		return budget
	case <-time.After(time.Second):
		t.Fatal("no budget snapshot arrived")
	}
	return nil
}

func receiveExpenses(t *testing.T, ch <-chan []model.Expense) []model.Expense {
	t.Helper()
	select {
	case expenses := <-ch:
		return expenses
	case <-time.After(time.Second):
		t.Fatal("no expenses snapshot arrived")
	}
	return nil
}

func TestMemory_WatchBudget(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := NewMemory()

	ch, err := s.WatchBudget(ctx, "Dima")
	if err != nil {
		t.Fatal(err)
	}

	// the document doesn't exist yet
	require.Nil(t, receiveBudget(t, ch))

	err = s.SetBudget(ctx, "Dima", 12000)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 12000.0, receiveBudget(t, ch).Amount)

	// zero is a valid, if degenerate, budget
	err = s.SetBudget(ctx, "Dima", 0)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 0.0, receiveBudget(t, ch).Amount)
}

func TestMemory_WatchExpensesWholesaleSnapshots(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := NewMemory()

	ch, err := s.WatchExpenses(ctx, "Dima")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 0, len(receiveExpenses(t, ch)))

	first, err := s.CreateExpense(ctx, "Dima", &model.ExpenseInput{Amount: 500, Category: "Food", IsNeed: true})
	if err != nil {
		t.Fatal(err)
	}
	expenses := receiveExpenses(t, ch)
	require.Equal(t, 1, len(expenses))
	require.Equal(t, first, expenses[0].ID)

	second, err := s.CreateExpense(ctx, "Dima", &model.ExpenseInput{Amount: 1500, Category: "Fun", IsNeed: false})
	if err != nil {
		t.Fatal(err)
	}
	expenses = receiveExpenses(t, ch)
	require.Equal(t, 2, len(expenses))
	// newest first
	require.Equal(t, second, expenses[0].ID)
	require.Equal(t, first, expenses[1].ID)

	err = s.UpdateExpense(ctx, first, &model.ExpenseInput{Amount: 750, Category: "Travel", IsNeed: false})
	if err != nil {
		t.Fatal(err)
	}
	expenses = receiveExpenses(t, ch)
	require.Equal(t, 750.0, expenses[1].Amount)
	require.Equal(t, "Travel", expenses[1].Category)

	err = s.DeleteExpense(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	expenses = receiveExpenses(t, ch)
	require.Equal(t, 1, len(expenses))
	require.Equal(t, second, expenses[0].ID)
}

func TestMemory_WatchScopedToOwner(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := NewMemory()

	ch, err := s.WatchExpenses(ctx, "Dima")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 0, len(receiveExpenses(t, ch)))

	_, err = s.CreateExpense(ctx, "Pasha", &model.ExpenseInput{Amount: 500, Category: "Food", IsNeed: true})
	if err != nil {
		t.Fatal(err)
	}

	select {
	case expenses := <-ch:
		t.Fatalf("received someone else's snapshot: %v", expenses)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemory_LatestSnapshotWins(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := NewMemory()

	ch, err := s.WatchExpenses(ctx, "Dima")
	if err != nil {
		t.Fatal(err)
	}

	// a slow consumer skips intermediate snapshots and only observes the newest
	for i := 0; i < 5; i++ {
		_, err = s.CreateExpense(ctx, "Dima", &model.ExpenseInput{Amount: 100, Category: "Food", IsNeed: true})
		if err != nil {
			t.Fatal(err)
		}
	}
	require.Equal(t, 5, len(receiveExpenses(t, ch)))
}

func TestMemory_CancelClosesStreams(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewMemory()

	budgetCh, err := s.WatchBudget(ctx, "Dima")
	if err != nil {
		t.Fatal(err)
	}
	expensesCh, err := s.WatchExpenses(ctx, "Dima")
	if err != nil {
		t.Fatal(err)
	}
	receiveBudget(t, budgetCh)
	receiveExpenses(t, expensesCh)

	cancel()

	select {
	case _, ok := <-budgetCh:
		require.Equal(t, false, ok)
	case <-time.After(time.Second):
		t.Fatal("budget stream didn't close")
	}
	select {
	case _, ok := <-expensesCh:
		require.Equal(t, false, ok)
	case <-time.After(time.Second):
		t.Fatal("expenses stream didn't close")
	}
}

func TestMemory_DeleteIdempotent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := NewMemory()

	id, err := s.CreateExpense(ctx, "Dima", &model.ExpenseInput{Amount: 500, Category: "Food", IsNeed: true})
	if err != nil {
		t.Fatal(err)
	}
	require.NoError(t, s.DeleteExpense(ctx, id))
	require.NoError(t, s.DeleteExpense(ctx, id))
	require.NoError(t, s.DeleteExpense(ctx, "never-existed"))
}
