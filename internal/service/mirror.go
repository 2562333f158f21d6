package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/fintrack/fintrack/internal/model"
	"github.com/fintrack/fintrack/internal/repository"
)

// Mirror keeps a local copy of one identity's remote state. Every incoming
// snapshot replaces the previous state wholesale, so the local copy is
// always "whatever the last snapshot said". The mirror never writes to the
// store.
type Mirror struct {
	store         repository.Watcher
	defaultBudget float64

	mu         sync.RWMutex
	generation int
	identity   *model.Identity
	budget     float64
	expenses   []model.Expense
	cancel     context.CancelFunc

	updates chan struct{}
}

func NewMirror(store repository.Watcher, defaultBudget float64) *Mirror {
	return &Mirror{
		store:         store,
		defaultBudget: defaultBudget,
		budget:        defaultBudget,
		expenses:      make([]model.Expense, 0),
		updates:       make(chan struct{}, 1),
	}
}

// Start opens both subscriptions for identity. Subscriptions of any
// previous identity are torn down first, so a snapshot still in flight for
// it can never reach the new identity's state.
func (m *Mirror) Start(ctx context.Context, identity *model.Identity) error {
	if identity == nil {
		return fmt.Errorf("mirror can't start without an identity")
	}
	m.Stop()

	watchCtx, cancel := context.WithCancel(ctx)

	m.mu.Lock()
	m.generation++
	generation := m.generation
	m.identity = identity
	m.budget = m.defaultBudget
	m.expenses = make([]model.Expense, 0)
	m.cancel = cancel
	m.mu.Unlock()

	budgetCh, err := m.store.WatchBudget(watchCtx, identity.UID)
	if err != nil {
		cancel()
		return fmt.Errorf("mirror couldn't open budget subscription: %v", err)
	}
	expensesCh, err := m.store.WatchExpenses(watchCtx, identity.UID)
	if err != nil {
		cancel()
		return fmt.Errorf("mirror couldn't open expenses subscription: %v", err)
	}

	go m.consumeBudget(watchCtx, generation, identity.UID, budgetCh)
	go m.consumeExpenses(watchCtx, generation, identity.UID, expensesCh)

	logrus.Infof("mirror started for %s", identity.UID)
	m.notify()
	return nil
}

// Stop tears down the active subscriptions and resets the mirror to its
// logged-out state
func (m *Mirror) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.generation++
	m.identity = nil
	m.budget = m.defaultBudget
	m.expenses = make([]model.Expense, 0)
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.notify()
}

func (m *Mirror) Budget() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.budget
}

func (m *Mirror) Expenses() []model.Expense {
	m.mu.RLock()
	defer m.mu.RUnlock()
	expenses := make([]model.Expense, len(m.expenses))
	copy(expenses, m.expenses)
	return expenses
}

func (m *Mirror) Identity() *model.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity
}

// Updates signals, coalesced, that the mirrored state changed
func (m *Mirror) Updates() <-chan struct{} {
	return m.updates
}

func (m *Mirror) consumeBudget(ctx context.Context, generation int, uid string, ch <-chan *model.Budget) {
	logrus.Debugf("budget mirror for %s started", uid)
	for {
		select {
		case <-ctx.Done():
			logrus.Debugf("budget mirror for %s stopped: %v", uid, ctx.Err())
			return
		case budget, ok := <-ch:
			if !ok {
				if ctx.Err() == nil {
					// no reconnection; the mirror keeps the last known value
					logrus.Errorf("budget subscription for %s failed, keeping last known state", uid)
				}
				return
			}
			if !m.applyBudget(generation, budget) {
				logrus.Debugf("discarded budget snapshot for %s from a torn down subscription", uid)
				return
			}
			m.notify()
		}
	}
}

func (m *Mirror) consumeExpenses(ctx context.Context, generation int, uid string, ch <-chan []model.Expense) {
	logrus.Debugf("expenses mirror for %s started", uid)
	for {
		select {
		case <-ctx.Done():
			logrus.Debugf("expenses mirror for %s stopped: %v", uid, ctx.Err())
			return
		case expenses, ok := <-ch:
			if !ok {
				if ctx.Err() == nil {
					logrus.Errorf("expenses subscription for %s failed, keeping last known state", uid)
				}
				return
			}
			if !m.applyExpenses(generation, expenses) {
				logrus.Debugf("discarded expenses snapshot for %s from a torn down subscription", uid)
				return
			}
			m.notify()
		}
	}
}

// applyBudget reports whether the snapshot still belongs to the active
// subscription. A nil budget means the document doesn't exist yet and the
// default stays in effect.
func (m *Mirror) applyBudget(generation int, budget *model.Budget) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if generation != m.generation {
		return false
	}
	if budget == nil {
		m.budget = m.defaultBudget
		return true
	}
	m.budget = budget.Amount
	return true
}

func (m *Mirror) applyExpenses(generation int, expenses []model.Expense) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if generation != m.generation {
		return false
	}
	m.expenses = expenses
	return true
}

func (m *Mirror) notify() {
	select {
	case m.updates <- struct{}{}:
	default:
	}
}
