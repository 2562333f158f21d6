package consumer

import (
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	"github.com/fintrack/fintrack/internal/config"
	"github.com/fintrack/fintrack/internal/repository"
)

func TestHub_teardown(t *testing.T) {
	hub := NewHub(nil, nil, nil, nil, nil, nil, repository.NewSessionsLocalStorage(), config.Budget{})

	const chatID = int64(125)
	hub.trackerChannels[chatID] = make(chan tgbotapi.Update, chatBufferSize)
	tornDown := false
	hub.teardowns[chatID] = func() {
		tornDown = true
	}

	hub.teardown(chatID)

	require.True(t, tornDown)
	require.NotContains(t, hub.trackerChannels, chatID)
	require.NotContains(t, hub.teardowns, chatID)

	// tearing the same chat down again, as happens when an update for the
	// chat is routed before its logout signal is drained, is a no-op
	hub.teardown(chatID)
}

func TestHub_deliverNeverBlocks(t *testing.T) {
	hub := NewHub(nil, nil, nil, nil, nil, nil, repository.NewSessionsLocalStorage(), config.Budget{})

	ch := make(chan tgbotapi.Update, 1)
	update := tgbotapi.Update{Message: &tgbotapi.Message{MessageID: 1}}
	hub.deliver(125, ch, update)
	require.Len(t, ch, 1)

	// the channel is full and nothing is receiving, as after a consumer
	// exited; the update must be dropped, not block the hub loop
	done := make(chan struct{})
	go func() {
		hub.deliver(125, ch, update)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("deliver blocked on a channel without a receiver")
	}
	require.Len(t, ch, 1)
}
