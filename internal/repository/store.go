package repository

import (
	"context"
	"errors"

	"github.com/fintrack/fintrack/internal/model"
)

var ExpenseNotFoundErr = errors.New("expense with this id doesn't exist")

//go:generate mockery --name=Writer

// Watcher is the live side of the document store. Every channel carries
// whole snapshots: a later value completely supersedes an earlier one,
// nothing is ever patched incrementally. The channel is closed when ctx
// is cancelled or the subscription itself fails.
type Watcher interface {
	// WatchBudget subscribes to the single budget document keyed by uid.
	// A nil value means the document doesn't exist yet.
	WatchBudget(ctx context.Context, uid string) (<-chan *model.Budget, error)
	// WatchExpenses subscribes to all expenses owned by uid, ordered by
	// createdAt descending.
	WatchExpenses(ctx context.Context, uid string) (<-chan []model.Expense, error)
}

// Writer is the write side of the document store. Writers don't report the
// resulting state back: the authoritative value always arrives through the
// Watcher streams.
type Writer interface {
	// SetBudget upserts only the budget field of the user's document,
	// leaving unrelated fields untouched.
	SetBudget(ctx context.Context, uid string, amount float64) error
	// CreateExpense stores a new expense with a server-assigned createdAt
	// and returns its durable id.
	CreateExpense(ctx context.Context, uid string, in *model.ExpenseInput) (string, error)
	// UpdateExpense replaces amount, category and isNeed of an existing
	// expense. Owner and createdAt are immutable.
	UpdateExpense(ctx context.Context, id string, in *model.ExpenseInput) error
	// DeleteExpense removes an expense. Deleting an id that is already
	// gone is a success.
	DeleteExpense(ctx context.Context, id string) error
}

// Store is the full document store capability
type Store interface {
	Watcher
	Writer
}

// latest makes ch always hold the newest snapshot. A slow consumer never
// sees an outdated value, it only skips intermediate ones.
func latest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
