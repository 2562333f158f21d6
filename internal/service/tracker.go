package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/fintrack/fintrack/internal/model"
	"github.com/fintrack/fintrack/internal/repository"
)

var (
	InvalidAmountErr   = errors.New("amount must be a positive number")
	InvalidCategoryErr = errors.New("category must not be empty")
)

// Tracker validates user intents and forwards them to the store. It never
// touches the mirror: the authoritative result of every write comes back
// through the subscriptions.
type Tracker struct {
	store     repository.Writer
	validator *validator.Validate
}

func NewTracker(store repository.Writer, validator *validator.Validate) *Tracker {
	return &Tracker{
		store:     store,
		validator: validator,
	}
}

func (t *Tracker) SetBudget(ctx context.Context, uid string, amount float64) error {
	// zero is a valid, if degenerate, budget; negative is not
	if amount < 0 {
		return InvalidAmountErr
	}
	return t.store.SetBudget(ctx, uid, amount)
}

func (t *Tracker) AddExpense(ctx context.Context, uid string, in *model.ExpenseInput) (string, error) {
	if err := t.validateInput(in); err != nil {
		return "", err
	}
	return t.store.CreateExpense(ctx, uid, in)
}

func (t *Tracker) EditExpense(ctx context.Context, id string, in *model.ExpenseInput) error {
	if err := t.validateInput(in); err != nil {
		return err
	}
	return t.store.UpdateExpense(ctx, id, in)
}

// RemoveExpense expects the caller to have confirmed the deletion with the
// user already
func (t *Tracker) RemoveExpense(ctx context.Context, id string) error {
	return t.store.DeleteExpense(ctx, id)
}

func (t *Tracker) validateInput(in *model.ExpenseInput) error {
	if err := t.validator.StructPartial(in, "Amount"); err != nil {
		return InvalidAmountErr
	}
	if err := t.validator.StructPartial(in, "Category"); err != nil {
		return InvalidCategoryErr
	}
	return nil
}
