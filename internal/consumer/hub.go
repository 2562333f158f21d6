package consumer

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/fintrack/fintrack/internal/config"
	"github.com/fintrack/fintrack/internal/model"
	"github.com/fintrack/fintrack/internal/producer"
	"github.com/fintrack/fintrack/internal/repository"
	"github.com/fintrack/fintrack/internal/service"
)

const chatBufferSize = 8

type Hub struct {
	bot         *tgbotapi.BotAPI
	updatesChan tgbotapi.UpdatesChannel
	validator   *validator.Validate
	authService service.Authorization
	tracker     *service.Tracker
	store       repository.Watcher
	sessions    repository.Sessions
	budgetCfg   config.Budget

	// consumer lifecycle events come back through these channels, so every
	// map below is only ever touched by the Consume goroutine
	finish chan *finishData
	logout chan int64

	chatSessions    map[int64]*service.Session
	authChannels    map[int64]chan tgbotapi.Update
	trackerChannels map[int64]chan tgbotapi.Update
	teardowns       map[int64]func()
}

func NewHub(bot *tgbotapi.BotAPI, updatesChan tgbotapi.UpdatesChannel, validator *validator.Validate,
	authService service.Authorization, tracker *service.Tracker, store repository.Watcher,
	sessions repository.Sessions, budgetCfg config.Budget) *Hub {
	return &Hub{
		bot:             bot,
		updatesChan:     updatesChan,
		validator:       validator,
		authService:     authService,
		tracker:         tracker,
		store:           store,
		sessions:        sessions,
		budgetCfg:       budgetCfg,
		finish:          make(chan *finishData),
		logout:          make(chan int64),
		chatSessions:    make(map[int64]*service.Session),
		authChannels:    make(map[int64]chan tgbotapi.Update),
		trackerChannels: make(map[int64]chan tgbotapi.Update),
		teardowns:       make(map[int64]func()),
	}
}

func (h *Hub) Consume(ctx context.Context) {
	logrus.Info("hub consumer started")
	for {
		select {
		case <-ctx.Done():
			logrus.Infof("hub consumer stopped: %v", ctx.Err())
			return

		case data := <-h.finish:
			logrus.Infof("hub received message in finish chat with chat id %d", data.chatID)
			delete(h.authChannels, data.chatID)
			if !data.loggedIn {
				// abandoned login, nothing changes
				continue
			}
			h.startTrackerConsumer(ctx, data.chatID, h.chatSessions[data.chatID])

		case chatID := <-h.logout:
			logrus.Infof("hub tears down the signed-in view of chat %d", chatID)
			h.teardown(chatID)

		case update := <-h.updatesChan:
			if update.Message == nil {
				continue
			}
			chatID := update.Message.Chat.ID

			session := h.session(ctx, chatID)
			if session.State() == service.StateUnknown {
				// the session check failed; without it we can't know which
				// view this chat should see, so don't route anywhere
				logrus.Errorf("chat %d is stuck in unknown session state", chatID)
				continue
			}

			if trackerCh, ok := h.trackerChannels[chatID]; ok {
				if session.State() == service.StateLoggedIn {
					h.deliver(chatID, trackerCh, update)
					continue
				}
				// the chat signed out but its logout signal hasn't been
				// drained yet; tear the view down now and fall through to
				// the logged-out handling
				h.teardown(chatID)
			}

			if session.State() == service.StateLoggedIn {
				// restored from a previous run of the conversation
				h.startTrackerConsumer(ctx, chatID, session)
				h.deliver(chatID, h.trackerChannels[chatID], update)
				continue
			}

			if update.Message.IsCommand() {
				switch update.Message.Command() {
				case register, login:
					logrus.Infof("received message in hub consumer to register or login from chat %d", chatID)

					ch, ok := h.authChannels[chatID]
					if !ok {
						// first touch with the user
						logrus.Infof("first touch with the user with chat id %d", chatID)
						ch = h.startAuthConsumer(ctx, chatID, session)
					}
					h.deliver(chatID, ch, update)
					continue
				default:
					logrus.Infof("unknown command: %s", update.Message.Text)
					continue
				}
			}

			if authCh, ok := h.authChannels[chatID]; ok {
				h.deliver(chatID, authCh, update)
				continue
			}

			if err := h.sendMessage(update.Message, "You are not signed in. Send /login or /register to continue"); err != nil {
				logrus.Errorf("hub consumer couldn't prompt chat %d: %v", chatID, err)
			}
		}
	}
}

// session returns the chat's session manager, resolving its initial
// Unknown state on first touch. No data subscription is started while the
// state is still Unknown.
func (h *Hub) session(ctx context.Context, chatID int64) *service.Session {
	session, ok := h.chatSessions[chatID]
	if !ok {
		session = service.NewSession(h.sessions, chatID)
		h.chatSessions[chatID] = session
	}
	if session.State() == service.StateUnknown {
		if err := session.Restore(ctx); err != nil {
			logrus.Errorf("hub consumer couldn't restore session for chat %d: %v", chatID, err)
		}
	}
	return session
}

// deliver never blocks the hub: a consumer that fell behind loses the
// update instead of wedging every other chat
func (h *Hub) deliver(chatID int64, ch chan tgbotapi.Update, update tgbotapi.Update) {
	select {
	case ch <- update:
	default:
		logrus.Warnf("hub dropped an update for chat %d, its consumer isn't keeping up", chatID)
	}
}

func (h *Hub) startAuthConsumer(ctx context.Context, chatID int64, session *service.Session) chan tgbotapi.Update {
	newUpdatesChan := make(chan tgbotapi.Update, chatBufferSize)
	h.authChannels[chatID] = newUpdatesChan
	authConsumer := NewAuth(h.bot, newUpdatesChan, h.validator, h.authService, session, h.finish)
	go authConsumer.Consume(ctx)
	return newUpdatesChan
}

// startTrackerConsumer wires the signed-in view of one chat: the mirror,
// the dashboard producer that re-renders on every mirror change, and the
// command consumer. The session-change callback owns the mirror teardown.
func (h *Hub) startTrackerConsumer(ctx context.Context, chatID int64, session *service.Session) {
	chatCtx, cancel := context.WithCancel(ctx)

	mirror := service.NewMirror(h.store, h.budgetCfg.Default)
	unregister := session.OnChange(func(identity *model.Identity) {
		if chatCtx.Err() != nil {
			// the chat's view was already torn down
			return
		}
		if identity == nil {
			mirror.Stop()
			return
		}
		if err := mirror.Start(chatCtx, identity); err != nil {
			logrus.Errorf("couldn't start mirror for chat %d: %v", chatID, err)
		}
	})
	h.teardowns[chatID] = func() {
		unregister()
		cancel()
	}
	if identity := session.Identity(); identity != nil {
		if err := mirror.Start(chatCtx, identity); err != nil {
			logrus.Errorf("couldn't start mirror for chat %d: %v", chatID, err)
		}
	}

	go producer.NewDashboard(h.bot, chatID, mirror, h.budgetCfg).Produce(chatCtx)

	trackerChan := make(chan tgbotapi.Update, chatBufferSize)
	h.trackerChannels[chatID] = trackerChan
	go NewTracker(h.bot, trackerChan, session, mirror, h.tracker, h.budgetCfg, h.logout).Consume(chatCtx)
}

// teardown dismantles a chat's signed-in view. Calling it again for the
// same chat is a no-op.
func (h *Hub) teardown(chatID int64) {
	delete(h.trackerChannels, chatID)
	if cleanup, ok := h.teardowns[chatID]; ok {
		cleanup()
		delete(h.teardowns, chatID)
	}
}

func (h *Hub) sendMessage(message *tgbotapi.Message, text string) error {
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyToMessageID = message.MessageID

	_, err := h.bot.Send(msg)
	if err != nil {
		return fmt.Errorf("sendMessage, telegram bot couldn't send message: %v", err)
	}
	return nil
}
