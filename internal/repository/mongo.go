package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fintrack/fintrack/internal/model"
)

const (
	databaseName       = "fintrack"
	usersCollection    = "users"
	expensesCollection = "expenses"
)

type Mongo struct {
	cli *mongo.Client
}

func NewMongo(cli *mongo.Client) *Mongo {
	return &Mongo{
		cli: cli,
	}
}

func (m *Mongo) users() *mongo.Collection {
	return m.cli.Database(databaseName).Collection(usersCollection)
}

func (m *Mongo) expenses() *mongo.Collection {
	return m.cli.Database(databaseName).Collection(expensesCollection)
}

func (m *Mongo) SetBudget(ctx context.Context, uid string, amount float64) error {
	_, err := m.users().UpdateOne(ctx,
		bson.D{{Key: "_id", Value: uid}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "budget", Value: amount}}}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo couldn't UpdateOne in SetBudget method: %v", err)
	}
	return nil
}

func (m *Mongo) CreateExpense(ctx context.Context, uid string, in *model.ExpenseInput) (string, error) {
	id := uuid.NewString()
	// upsert instead of insert so that $currentDate can assign createdAt on
	// the server, never from the client clock
	_, err := m.expenses().UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{
			{Key: "$set", Value: bson.D{
				{Key: "uid", Value: uid},
				{Key: "amount", Value: in.Amount},
				{Key: "category", Value: in.Category},
				{Key: "isNeed", Value: in.IsNeed},
			}},
			{Key: "$currentDate", Value: bson.D{{Key: "createdAt", Value: true}}},
		},
		options.Update().SetUpsert(true))
	if err != nil {
		return "", fmt.Errorf("mongo couldn't UpdateOne in CreateExpense method: %v", err)
	}
	return id, nil
}

func (m *Mongo) UpdateExpense(ctx context.Context, id string, in *model.ExpenseInput) error {
	res, err := m.expenses().UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "amount", Value: in.Amount},
			{Key: "category", Value: in.Category},
			{Key: "isNeed", Value: in.IsNeed},
		}}})
	if err != nil {
		return fmt.Errorf("mongo couldn't UpdateOne in UpdateExpense method: %v", err)
	}
	if res.MatchedCount == 0 {
		return ExpenseNotFoundErr
	}
	return nil
}

func (m *Mongo) DeleteExpense(ctx context.Context, id string) error {
	// an id that matches nothing was already deleted, which is a success
	_, err := m.expenses().DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("mongo couldn't DeleteOne in DeleteExpense method: %v", err)
	}
	return nil
}

func (m *Mongo) WatchBudget(ctx context.Context, uid string) (<-chan *model.Budget, error) {
	stream, err := m.users().Watch(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "documentKey._id", Value: uid}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("mongo couldn't Watch in WatchBudget method: %v", err)
	}

	out := make(chan *model.Budget, 1)
	go func() {
		defer close(out)
		defer func() {
			if err := stream.Close(context.Background()); err != nil {
				logrus.Errorf("mongo couldn't close budget change stream for %s: %v", uid, err)
			}
		}()

		budget, err := m.readBudget(ctx, uid)
		if err != nil {
			logrus.Errorf("budget subscription for %s failed: %v", uid, err)
			return
		}
		latest(out, budget)

		for stream.Next(ctx) {
			budget, err = m.readBudget(ctx, uid)
			if err != nil {
				logrus.Errorf("budget subscription for %s failed: %v", uid, err)
				return
			}
			latest(out, budget)
		}
		if err = stream.Err(); err != nil && ctx.Err() == nil {
			logrus.Errorf("budget subscription for %s failed: %v", uid, err)
		}
	}()
	return out, nil
}

func (m *Mongo) WatchExpenses(ctx context.Context, uid string) (<-chan []model.Expense, error) {
	// delete events don't carry the document, so the stream can't be
	// filtered by uid; every event triggers a requery scoped to the user
	stream, err := m.expenses().Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, fmt.Errorf("mongo couldn't Watch in WatchExpenses method: %v", err)
	}

	out := make(chan []model.Expense, 1)
	go func() {
		defer close(out)
		defer func() {
			if err := stream.Close(context.Background()); err != nil {
				logrus.Errorf("mongo couldn't close expenses change stream for %s: %v", uid, err)
			}
		}()

		expenses, err := m.readExpenses(ctx, uid)
		if err != nil {
			logrus.Errorf("expenses subscription for %s failed: %v", uid, err)
			return
		}
		latest(out, expenses)

		for stream.Next(ctx) {
			expenses, err = m.readExpenses(ctx, uid)
			if err != nil {
				logrus.Errorf("expenses subscription for %s failed: %v", uid, err)
				return
			}
			latest(out, expenses)
		}
		if err = stream.Err(); err != nil && ctx.Err() == nil {
			logrus.Errorf("expenses subscription for %s failed: %v", uid, err)
		}
	}()
	return out, nil
}

func (m *Mongo) readBudget(ctx context.Context, uid string) (*model.Budget, error) {
	result := m.users().FindOne(ctx, bson.D{{Key: "_id", Value: uid}})
	if err := result.Err(); err != nil && err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("mongo couldn't FindOne in readBudget method: %v", err)
	} else if err == mongo.ErrNoDocuments {
		return nil, nil
	}

	var budget model.Budget
	if err := result.Decode(&budget); err != nil {
		return nil, fmt.Errorf("mongo couldn't Decode in readBudget method: %v", err)
	}
	return &budget, nil
}

func (m *Mongo) readExpenses(ctx context.Context, uid string) ([]model.Expense, error) {
	cursor, err := m.expenses().Find(ctx,
		bson.D{{Key: "uid", Value: uid}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo couldn't Find in readExpenses method: %v", err)
	}
	defer func(cursor *mongo.Cursor, ctx context.Context) {
		err = cursor.Close(ctx)
		if err != nil {
			logrus.Errorf("mongo couldn't close cursor in readExpenses method")
		}
	}(cursor, ctx)

	expenses := make([]model.Expense, 0)
	for cursor.Next(ctx) {
		var expense model.Expense
		if err = cursor.Decode(&expense); err != nil {
			return nil, fmt.Errorf("mongo couldn't Decode in readExpenses method: %v", err)
		}
		expenses = append(expenses, expense)
	}
	if err = cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor err in readExpenses method: %v", err)
	}
	return expenses, nil
}
