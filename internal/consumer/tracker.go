package consumer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/fintrack/fintrack/internal/config"
	"github.com/fintrack/fintrack/internal/model"
	"github.com/fintrack/fintrack/internal/producer"
	"github.com/fintrack/fintrack/internal/service"
)

const (
	budgetCommand     = "budget"
	editCommand       = "edit"
	deleteCommand     = "delete"
	categoryCommand   = "category"
	categoriesCommand = "categories"
	dashboardCommand  = "dashboard"
	logoutCommand     = "logout"
)

const (
	needWord = "need"
	wantWord = "want"
)

var defaultCategories = []string{"Food", "Travel", "Study", "Fun"}

// Tracker serves the signed-in view of one chat: expense entries, budget
// and category commands, delete confirmations and logout. Every write goes
// to the store and comes back through the mirror; nothing here mutates
// local state with a write result.
type Tracker struct {
	bot         *tgbotapi.BotAPI
	updatesChan chan tgbotapi.Update
	session     *service.Session
	mirror      *service.Mirror
	tracker     *service.Tracker
	budgetCfg   config.Budget
	logout      chan<- int64

	// categories live and die with the conversation, only the defaults
	// survive a restart
	categories      []string
	pendingDeleteID string
}

func NewTracker(bot *tgbotapi.BotAPI, updatesChan chan tgbotapi.Update, session *service.Session,
	mirror *service.Mirror, tracker *service.Tracker, budgetCfg config.Budget, logout chan<- int64) *Tracker {
	return &Tracker{
		bot:         bot,
		updatesChan: updatesChan,
		session:     session,
		mirror:      mirror,
		tracker:     tracker,
		budgetCfg:   budgetCfg,
		logout:      logout,
		categories:  append([]string{}, defaultCategories...),
	}
}

func (t *Tracker) Consume(ctx context.Context) {
	logrus.Info("tracker consumer started consuming")
	for {
		select {
		case <-ctx.Done():
			logrus.Infof("tracker consumer stopped: %v", ctx.Err())
			return
		case update := <-t.updatesChan:
			identity := t.session.Identity()
			if identity == nil {
				logrus.Errorf("tracker consumer for chat %d received an update without an identity", update.Message.Chat.ID)
				continue
			}

			if update.Message.IsCommand() {
				t.pendingDeleteID = ""
				switch update.Message.Command() {
				case budgetCommand:
					t.handleBudget(ctx, identity.UID, update.Message)
				case editCommand:
					t.handleEdit(ctx, update.Message)
				case deleteCommand:
					t.handleDelete(update.Message)
				case categoryCommand:
					t.handleCategory(update.Message)
				case categoriesCommand:
					t.reply(update.Message, fmt.Sprintf("Your categories: %s", strings.Join(t.categories, ", ")))
				case dashboardCommand:
					t.handleDashboard(update.Message)
				case logoutCommand:
					if t.handleLogout(ctx, update.Message) {
						t.logout <- update.Message.Chat.ID
						return
					}
				default:
					t.reply(update.Message, fmt.Sprintf("I don't know the command /%s", update.Message.Command()))
				}
				continue
			}

			if t.pendingDeleteID != "" {
				t.handleDeleteAnswer(ctx, update.Message)
				continue
			}

			t.handleEntry(ctx, identity.UID, update.Message)
		}
	}
}

func (t *Tracker) handleEntry(ctx context.Context, uid string, message *tgbotapi.Message) {
	in, err := parseEntry(message.Text)
	if err != nil {
		t.reply(message, fmt.Sprintf("%v. Send an amount and a category, for example: 500 Food want", err))
		return
	}
	if !t.knownCategory(in.Category) {
		t.reply(message, fmt.Sprintf("I don't know the category %s. Your categories: %s", in.Category, strings.Join(t.categories, ", ")))
		return
	}

	newCtx, cancelFunc := context.WithTimeout(ctx, 10*time.Second)
	defer cancelFunc()
	id, err := t.tracker.AddExpense(newCtx, uid, in)
	if err != nil {
		t.reply(message, err.Error())
		return
	}
	logrus.Debugf("user %s recorded expense %s", uid, id)
	t.reply(message, fmt.Sprintf("Recorded %s %.2f, id %s", in.Category, in.Amount, id))
}

func (t *Tracker) handleBudget(ctx context.Context, uid string, message *tgbotapi.Message) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(message.CommandArguments()), 64)
	if err != nil {
		t.reply(message, "Send the new budget as a number, for example: /budget 12000")
		return
	}

	newCtx, cancelFunc := context.WithTimeout(ctx, 10*time.Second)
	defer cancelFunc()
	if err = t.tracker.SetBudget(newCtx, uid, amount); err != nil {
		t.reply(message, err.Error())
		return
	}
	t.reply(message, fmt.Sprintf("Budget set to %.2f", amount))
}

func (t *Tracker) handleEdit(ctx context.Context, message *tgbotapi.Message) {
	fields := strings.Fields(message.CommandArguments())
	if len(fields) < 3 {
		t.reply(message, "Send /edit <id> <amount> <category> and optionally need or want")
		return
	}
	id := fields[0]
	in, err := parseEntry(strings.Join(fields[1:], " "))
	if err != nil {
		t.reply(message, fmt.Sprintf("%v. Send /edit <id> <amount> <category> and optionally need or want", err))
		return
	}
	if !t.knownCategory(in.Category) {
		t.reply(message, fmt.Sprintf("I don't know the category %s. Your categories: %s", in.Category, strings.Join(t.categories, ", ")))
		return
	}

	newCtx, cancelFunc := context.WithTimeout(ctx, 10*time.Second)
	defer cancelFunc()
	if err = t.tracker.EditExpense(newCtx, id, in); err != nil {
		t.reply(message, err.Error())
		return
	}
	t.reply(message, fmt.Sprintf("Expense %s updated", id))
}

func (t *Tracker) handleDelete(message *tgbotapi.Message) {
	id := strings.TrimSpace(message.CommandArguments())
	if id == "" {
		t.reply(message, "Send /delete <id>; the ids are on the dashboard")
		return
	}
	t.pendingDeleteID = id
	t.reply(message, fmt.Sprintf("Delete expense %s? Reply yes to confirm", id))
}

func (t *Tracker) handleDeleteAnswer(ctx context.Context, message *tgbotapi.Message) {
	id := t.pendingDeleteID
	t.pendingDeleteID = ""
	if !strings.EqualFold(strings.TrimSpace(message.Text), "yes") {
		t.reply(message, fmt.Sprintf("Expense %s kept", id))
		return
	}

	newCtx, cancelFunc := context.WithTimeout(ctx, 10*time.Second)
	defer cancelFunc()
	if err := t.tracker.RemoveExpense(newCtx, id); err != nil {
		t.reply(message, err.Error())
		return
	}
	t.reply(message, fmt.Sprintf("Expense %s deleted", id))
}

func (t *Tracker) handleCategory(message *tgbotapi.Message) {
	name := strings.TrimSpace(message.CommandArguments())
	if name == "" {
		t.reply(message, "Send /category <name> to add a category")
		return
	}
	if t.knownCategory(name) {
		t.reply(message, fmt.Sprintf("You already have the category %s", name))
		return
	}
	t.categories = append(t.categories, name)
	t.reply(message, fmt.Sprintf("Added the category %s. Your categories: %s", name, strings.Join(t.categories, ", ")))
}

func (t *Tracker) handleDashboard(message *tgbotapi.Message) {
	summary := service.Summarize(t.mirror.Budget(), t.mirror.Expenses(), t.budgetCfg.OverThreshold)
	t.reply(message, producer.RenderDashboard(t.mirror.Budget(), t.mirror.Expenses(), summary))
}

// handleLogout reports whether the chat actually signed out. On failure
// the consumer keeps running, so the hub's routing table stays truthful.
func (t *Tracker) handleLogout(ctx context.Context, message *tgbotapi.Message) bool {
	newCtx, cancelFunc := context.WithTimeout(ctx, 10*time.Second)
	defer cancelFunc()
	if err := t.session.Logout(newCtx); err != nil {
		t.reply(message, err.Error())
		return false
	}
	t.reply(message, "You are signed out. Send /login whenever you want to continue")
	logrus.Infof("tracker consumer for chat %d stopped after logout", message.Chat.ID)
	return true
}

func (t *Tracker) knownCategory(name string) bool {
	for _, category := range t.categories {
		if strings.EqualFold(category, name) {
			return true
		}
	}
	return false
}

func (t *Tracker) reply(message *tgbotapi.Message, text string) {
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyToMessageID = message.MessageID

	if _, err := t.bot.Send(msg); err != nil {
		logrus.Errorf("tracker consumer couldn't send message: %v", err)
	}
}

// parseEntry understands "<amount> <category>" with an optional trailing
// need or want. Necessity defaults to need.
func parseEntry(text string) (*model.ExpenseInput, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 || len(fields) > 3 {
		return nil, fmt.Errorf("couldn't understand the message")
	}

	amount, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return nil, fmt.Errorf("%s isn't a number", fields[0])
	}

	in := &model.ExpenseInput{
		Amount:   amount,
		Category: fields[1],
		IsNeed:   true,
	}
	if len(fields) == 3 {
		switch strings.ToLower(fields[2]) {
		case needWord:
		case wantWord:
			in.IsNeed = false
		default:
			return nil, fmt.Errorf("the last word must be need or want, not %s", fields[2])
		}
	}
	return in, nil
}
