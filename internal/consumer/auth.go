package consumer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/fintrack/fintrack/internal/model"
	"github.com/fintrack/fintrack/internal/repository"
	"github.com/fintrack/fintrack/internal/service"
)

const (
	register = "register"
	login    = "login"
	cancel   = "cancel"
)

const (
	usernameMinLength = 3
	usernameMaxLength = 15
	passwordMaxLength = 15
)

var welcomeMessage = "You can now track your expenses. Send a message in the format\n\n" +
	"500 Food\n\n" +
	"an amount and a category. Add \"want\" at the end if it isn't a necessity.\n" +
	"Send /dashboard at any time to see where you stand."

type finishData struct {
	chatID   int64
	loggedIn bool
}

type Auth struct {
	bot         *tgbotapi.BotAPI
	updatesChan chan tgbotapi.Update
	validator   *validator.Validate
	auth        service.Authorization
	session     *service.Session
	finish      chan<- *finishData

	waitRegisterMessageWithUsername int
	waitRegisterMessageWithPassword int
	waitLoginMessageWithUsername    int
	waitLoginMessageWithPassword    int
	username                        string
	password                        string
}

func NewAuth(bot *tgbotapi.BotAPI, updatesChan chan tgbotapi.Update, validator *validator.Validate,
	auth service.Authorization, session *service.Session, finish chan<- *finishData) *Auth {
	return &Auth{
		bot:         bot,
		updatesChan: updatesChan,
		validator:   validator,
		auth:        auth,
		session:     session,
		finish:      finish,
	}
}

func (a *Auth) Consume(ctx context.Context) {
	logrus.Infof("auth consumer started consuming")

	for {
		select {
		case <-ctx.Done():
			logrus.Infof("auth consumer for user %s stopped: %v", a.username, ctx.Err())
			return

		case update := <-a.updatesChan:
			if update.Message.IsCommand() && update.Message.Command() == cancel {
				// the user abandoned the flow, absorb it without a reply
				logrus.Debugf("auth consumer for chat %d cancelled", update.Message.Chat.ID)
				a.finish <- &finishData{
					chatID:   update.Message.Chat.ID,
					loggedIn: false,
				}
				return
			}

			if !update.Message.IsCommand() && update.Message.MessageID == a.waitRegisterMessageWithUsername {
				success, err := a.handleUsername(register, update.Message)
				if err != nil {
					logrus.Errorf("register error: %v", err)
					continue
				}
				if !success {
					continue
				}

				if err = a.requestForPassword(register, update.Message,
					fmt.Sprintf("Enter a password, %d characters at most", passwordMaxLength)); err != nil {
					logrus.Errorf("register error: %v", err)
					continue
				}
				continue
			}

			if !update.Message.IsCommand() && update.Message.MessageID == a.waitRegisterMessageWithPassword {
				success, err := a.handlePassword(register, update.Message)
				if err != nil {
					logrus.Errorf("register error: %v", err)
					continue
				}
				if !success {
					continue
				}

				newCtx, cancelFunc := context.WithTimeout(ctx, 10*time.Second)
				identity, err := a.auth.Register(newCtx, &model.User{
					Username: a.username,
					Password: a.password,
				})
				if err != nil && err != repository.DuplicateUserErr {
					logrus.Errorf("register error: %v", err)
					cancelFunc()
					continue
				} else if err == repository.DuplicateUserErr {
					logrus.Debugf("user %s already exists", a.username)
					if err = a.requestForUsername(register, update.Message,
						fmt.Sprintf("The username %s is already taken. Try again! Enter your username", a.username)); err != nil {
						logrus.Errorf("register error: %v", err)
						cancelFunc()
						continue
					}
					cancelFunc()
					continue
				}
				cancelFunc()

				if err = a.login(ctx, update.Message, identity); err != nil {
					logrus.Errorf("register error: %v", err)
					continue
				}

				if err = a.sendMessage(update.Message, fmt.Sprintf("Thank you, %s! You are registered", a.username)); err != nil {
					logrus.Errorf("register error: %v", err)
					continue
				}

				if err = a.sendMessage(update.Message, welcomeMessage); err != nil {
					logrus.Errorf("register error: couldn't send welcome message: %v", err)
				}

				logrus.Debugf("user %s successfully registered", a.username)
				logrus.Debugf("auth consumer for user %s stopped", a.username)
				a.finish <- &finishData{
					chatID:   update.Message.Chat.ID,
					loggedIn: true,
				}
				return
			}

			if !update.Message.IsCommand() && update.Message.MessageID == a.waitLoginMessageWithUsername {
				success, err := a.handleUsername(login, update.Message)
				if err != nil {
					logrus.Errorf("login error: %v", err)
					continue
				}
				if !success {
					continue
				}

				if err := a.requestForPassword(login, update.Message, "Enter your password"); err != nil {
					logrus.Errorf("login error: %v", err)
					continue
				}
				continue
			}

			if !update.Message.IsCommand() && update.Message.MessageID == a.waitLoginMessageWithPassword {
				success, err := a.handlePassword(login, update.Message)
				if err != nil {
					logrus.Errorf("login error: %v", err)
					continue
				}
				if !success {
					continue
				}

				newCtx, cancelFunc := context.WithTimeout(ctx, 10*time.Second)
				identity, err := a.auth.Login(newCtx, a.username, a.password)
				if err != nil && err != service.UserNotFoundErr && err != service.WrongPasswordErr {
					logrus.Errorf("login error: %v", err)
					cancelFunc()
					continue
				} else if err == service.UserNotFoundErr {
					logrus.Debugf("user %s doesn't exist", a.username)
					if err = a.requestForUsername(login, update.Message, "There is no user with that name. Try again! Enter your username"); err != nil {
						logrus.Errorf("login error: %v", err)
						cancelFunc()
						continue
					}
					cancelFunc()
					continue
				} else if err == service.WrongPasswordErr {
					logrus.Debugf("user %s entered the wrong password", a.username)
					if err = a.requestForUsername(login, update.Message, "Wrong username or password. Try again! Enter your username"); err != nil {
						logrus.Errorf("login error: %v", err)
						cancelFunc()
						continue
					}
					cancelFunc()
					continue
				}
				cancelFunc()

				if err = a.login(ctx, update.Message, identity); err != nil {
					logrus.Errorf("login error: %v", err)
					continue
				}

				if err = a.sendMessage(update.Message, fmt.Sprintf("%s, you are signed in!", a.username)); err != nil {
					logrus.Errorf("login error: %v", err)
					continue
				}

				if err = a.sendMessage(update.Message, welcomeMessage); err != nil {
					logrus.Errorf("login error: couldn't send welcome message: %v", err)
				}

				logrus.Debugf("user %s is authorized", a.username)
				logrus.Debugf("auth consumer for user %s stopped", a.username)
				a.finish <- &finishData{
					chatID:   update.Message.Chat.ID,
					loggedIn: true,
				}
				return
			}

			if update.Message.IsCommand() {
				switch update.Message.Command() {
				case register:
					logrus.Debug("register command started executing")
					if err := a.requestForUsername(register, update.Message,
						fmt.Sprintf("Enter a username, between %d and %d characters", usernameMinLength, usernameMaxLength)); err != nil {
						logrus.Errorf("register error: %v", err)
						continue
					}
					continue
				case login:
					logrus.Debug("login command started executing")
					if err := a.requestForUsername(login, update.Message, "Enter your username"); err != nil {
						logrus.Errorf("login error: %v", err)
						continue
					}
					continue
				}
			}
		}
	}
}

func (a *Auth) login(ctx context.Context, message *tgbotapi.Message, identity *model.Identity) error {
	newCtx, cancelFunc := context.WithTimeout(ctx, 10*time.Second)
	defer cancelFunc()
	if err := a.session.Login(newCtx, identity); err != nil {
		return fmt.Errorf("couldn't persist session for chat %d: %v", message.Chat.ID, err)
	}
	return nil
}

func (a *Auth) handleUsername(action string, message *tgbotapi.Message) (bool, error) {
	a.username = message.Text
	if !a.validate(a.username, fmt.Sprintf("min=%d,max=%d", usernameMinLength, usernameMaxLength)) {
		err := a.requestForUsername(action, message, "That username isn't valid. Try again!")
		if err != nil {
			return false, err
		}
		logrus.Debugf("%s, user entered the wrong username: %s", action, a.username)
		return false, nil
	}
	logrus.Debugf("%s, user entered username: %s", action, a.username)
	return true, nil
}

func (a *Auth) handlePassword(action string, message *tgbotapi.Message) (bool, error) {
	a.password = message.Text
	if !a.validate(a.password, fmt.Sprintf("max=%d", passwordMaxLength)) {
		err := a.requestForPassword(action, message, fmt.Sprintf("%s, that password isn't valid. Try again!", a.username))
		if err != nil {
			return false, err
		}
		logrus.Debugf("%s, user %s entered the wrong password", action, a.username)
		return false, nil
	}
	logrus.Debugf("%s, user %s entered a password", action, a.username)
	return true, nil
}

func (a *Auth) requestForUsername(action string, message *tgbotapi.Message, text string) error {
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyToMessageID = message.MessageID

	switch action {
	case register:
		a.waitRegisterMessageWithUsername = msg.ReplyToMessageID + 2
	case login:
		a.waitLoginMessageWithUsername = msg.ReplyToMessageID + 2
	}

	_, err := a.bot.Send(msg)
	if err != nil {
		return fmt.Errorf("requestForUsername, telegram bot couldn't send message: %v", err)
	}
	return nil
}

func (a *Auth) requestForPassword(action string, message *tgbotapi.Message, text string) error {
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyToMessageID = message.MessageID

	switch action {
	case register:
		a.waitRegisterMessageWithPassword = msg.ReplyToMessageID + 2
	case login:
		a.waitLoginMessageWithPassword = msg.ReplyToMessageID + 2
	}

	_, err := a.bot.Send(msg)
	if err != nil {
		return fmt.Errorf("requestForPassword, telegram bot couldn't send message: %v", err)
	}
	return nil
}

func (a *Auth) sendMessage(message *tgbotapi.Message, text string) error {
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyToMessageID = message.MessageID

	_, err := a.bot.Send(msg)
	if err != nil {
		return fmt.Errorf("sendMessage, telegram bot couldn't send message: %v", err)
	}
	return nil
}

func (a *Auth) validate(value string, tags string) bool {
	err := a.validator.Var(value, tags)
	if err != nil {
		return false
	}
	return true
}
