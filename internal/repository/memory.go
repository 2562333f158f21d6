package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fintrack/fintrack/internal/model"
)

// Memory is an in-process Store used in tests and local runs
type Memory struct {
	mu        sync.Mutex
	budgets   map[string]float64
	expenses  map[string]model.Expense
	lastStamp time.Time

	nextSub     int
	budgetSubs  map[int]budgetSubscription
	expenseSubs map[int]expenseSubscription
}

type budgetSubscription struct {
	uid string
	ch  chan *model.Budget
}

type expenseSubscription struct {
	uid string
	ch  chan []model.Expense
}

func NewMemory() *Memory {
	return &Memory{
		budgets:     make(map[string]float64),
		expenses:    make(map[string]model.Expense),
		budgetSubs:  make(map[int]budgetSubscription),
		expenseSubs: make(map[int]expenseSubscription),
	}
}

func (s *Memory) SetBudget(_ context.Context, uid string, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[uid] = amount
	s.notifyBudget(uid)
	return nil
}

func (s *Memory) CreateExpense(_ context.Context, uid string, in *model.ExpenseInput) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.expenses[id] = model.Expense{
		ID:        id,
		UID:       uid,
		Amount:    in.Amount,
		Category:  in.Category,
		IsNeed:    in.IsNeed,
		CreatedAt: s.stamp(),
	}
	s.notifyExpenses(uid)
	return id, nil
}

func (s *Memory) UpdateExpense(_ context.Context, id string, in *model.ExpenseInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	expense, ok := s.expenses[id]
	if !ok {
		return ExpenseNotFoundErr
	}
	expense.Amount = in.Amount
	expense.Category = in.Category
	expense.IsNeed = in.IsNeed
	s.expenses[id] = expense
	s.notifyExpenses(expense.UID)
	return nil
}

func (s *Memory) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	expense, ok := s.expenses[id]
	if !ok {
		// already gone
		return nil
	}
	delete(s.expenses, id)
	s.notifyExpenses(expense.UID)
	return nil
}

func (s *Memory) WatchBudget(ctx context.Context, uid string) (<-chan *model.Budget, error) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan *model.Budget, 1)
	s.budgetSubs[id] = budgetSubscription{uid: uid, ch: ch}
	latest(ch, s.budgetSnapshot(uid))
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.budgetSubs, id)
		close(ch)
		s.mu.Unlock()
	}()
	return ch, nil
}

func (s *Memory) WatchExpenses(ctx context.Context, uid string) (<-chan []model.Expense, error) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan []model.Expense, 1)
	s.expenseSubs[id] = expenseSubscription{uid: uid, ch: ch}
	latest(ch, s.expensesSnapshot(uid))
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.expenseSubs, id)
		close(ch)
		s.mu.Unlock()
	}()
	return ch, nil
}

func (s *Memory) notifyBudget(uid string) {
	for _, sub := range s.budgetSubs {
		if sub.uid == uid {
			latest(sub.ch, s.budgetSnapshot(uid))
		}
	}
}

func (s *Memory) notifyExpenses(uid string) {
	for _, sub := range s.expenseSubs {
		if sub.uid == uid {
			latest(sub.ch, s.expensesSnapshot(uid))
		}
	}
}

func (s *Memory) budgetSnapshot(uid string) *model.Budget {
	amount, ok := s.budgets[uid]
	if !ok {
		return nil
	}
	return &model.Budget{Amount: amount}
}

func (s *Memory) expensesSnapshot(uid string) []model.Expense {
	snapshot := make([]model.Expense, 0)
	for _, expense := range s.expenses {
		if expense.UID == uid {
			snapshot = append(snapshot, expense)
		}
	}
	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].CreatedAt.After(snapshot[j].CreatedAt)
	})
	return snapshot
}

// stamp stands in for the server clock and never goes backwards
func (s *Memory) stamp() time.Time {
	now := time.Now().UTC()
	if !now.After(s.lastStamp) {
		now = s.lastStamp.Add(time.Millisecond)
	}
	s.lastStamp = now
	return now
}
