package model

import "time"

// Expense is one record of a single spending event
type Expense struct {
	ID        string    `bson:"_id"`
	UID       string    `bson:"uid"`
	Amount    float64   `bson:"amount"`
	Category  string    `bson:"category"`
	IsNeed    bool      `bson:"isNeed"`
	CreatedAt time.Time `bson:"createdAt"`
}

// ExpenseInput is the editable part of an expense. UID and CreatedAt are
// immutable after creation and never travel through it.
type ExpenseInput struct {
	Amount   float64 `validate:"required,gt=0"`
	Category string  `validate:"required"`
	IsNeed   bool
}
