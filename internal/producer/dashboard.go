package producer

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/fintrack/fintrack/internal/config"
	"github.com/fintrack/fintrack/internal/model"
	"github.com/fintrack/fintrack/internal/service"
)

const (
	progressBarWidth = 20
	recentExpenses   = 10
)

// Dashboard pushes a fresh rendering of one chat's financial state on
// every mirror change. It only ever reads the mirror; the numbers it shows
// are always derived from the last snapshot, never from a pending write.
type Dashboard struct {
	bot       *tgbotapi.BotAPI
	chatID    int64
	mirror    *service.Mirror
	budgetCfg config.Budget
}

func NewDashboard(bot *tgbotapi.BotAPI, chatID int64, mirror *service.Mirror, budgetCfg config.Budget) *Dashboard {
	return &Dashboard{
		bot:       bot,
		chatID:    chatID,
		mirror:    mirror,
		budgetCfg: budgetCfg,
	}
}

func (d *Dashboard) Produce(ctx context.Context) {
	logrus.Infof("dashboard producer for chat %d started produce", d.chatID)
	for {
		select {
		case <-ctx.Done():
			logrus.Infof("dashboard producer for chat %d stopped: %v", d.chatID, ctx.Err())
			return
		case <-d.mirror.Updates():
			if d.mirror.Identity() == nil {
				continue
			}
			budget := d.mirror.Budget()
			expenses := d.mirror.Expenses()
			summary := service.Summarize(budget, expenses, d.budgetCfg.OverThreshold)

			message := tgbotapi.NewMessage(d.chatID, RenderDashboard(budget, expenses, summary))
			if _, err := d.bot.Send(message); err != nil {
				logrus.Errorf("dashboard producer couldn't send message to chat %d: %v", d.chatID, err)
			}
		}
	}
}

// RenderDashboard is a pure rendering of one budget, one expense list and
// their summary
func RenderDashboard(budget float64, expenses []model.Expense, summary service.Summary) string {
	arrow := "↓"
	if summary.OverBudget {
		arrow = "↑"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Budget: %.2f\n", budget))
	b.WriteString(fmt.Sprintf("Spent: %.2f %s (%.0f%%)\n", summary.TotalSpent, arrow, summary.PercentUsed))
	b.WriteString(fmt.Sprintf("Remaining: %.2f\n", summary.RemainingBalance))
	b.WriteString(progressBar(summary.PercentUsed))
	b.WriteString("\n\n")

	needs, wants := summary.ChartValues()
	needsShare := needs / (needs + wants) * 100
	b.WriteString(fmt.Sprintf("Needs %.0f%% - %.2f\n", needsShare, summary.NeedsTotal))
	b.WriteString(fmt.Sprintf("Wants %.0f%% - %.2f\n", 100-needsShare, summary.WantsTotal))

	if len(expenses) == 0 {
		b.WriteString("\nNo expenses yet")
		return b.String()
	}

	b.WriteString("\nRecent expenses:\n")
	for i, expense := range expenses {
		if i == recentExpenses {
			b.WriteString(fmt.Sprintf("and %d more\n", len(expenses)-recentExpenses))
			break
		}
		necessity := "need"
		if !expense.IsNeed {
			necessity = "want"
		}
		b.WriteString(fmt.Sprintf("%s - %.2f (%s), id %s\n", expense.Category, expense.Amount, necessity, expense.ID))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func progressBar(percentUsed float64) string {
	filled := int(percentUsed / 100 * progressBarWidth)
	if filled > progressBarWidth {
		filled = progressBarWidth
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled)
}
