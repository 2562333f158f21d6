package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v8"
	"github.com/go-playground/validator/v10"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fintrack/fintrack/internal/config"
	"github.com/fintrack/fintrack/internal/consumer"
	"github.com/fintrack/fintrack/internal/repository"
	"github.com/fintrack/fintrack/internal/service"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found")
	}

	cfg := config.Config{}
	if err := env.Parse(&cfg); err != nil {
		logrus.Fatalf("couldn't parse config: %v", err)
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoEndpoint))
	if err != nil {
		logrus.Fatalf("couldn't connect to mongo: %v", err)
	}
	defer func() {
		if err = mongoClient.Disconnect(ctx); err != nil {
			logrus.Errorf("couldn't disconnect from mongo: %v", err)
		}
	}()

	pool, err := pgxpool.Connect(ctx, cfg.PostgresEndpoint)
	if err != nil {
		logrus.Fatalf("couldn't connect to postgres: %v", err)
	}
	defer pool.Close()

	bot, err := tgbotapi.NewBotAPI(os.Getenv("TG_TOKEN"))
	if err != nil {
		logrus.Fatal(err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = cfg.Telegram.Timeout
	updatesChan := bot.GetUpdatesChan(u)

	validate := validator.New()

	store := repository.NewMongo(mongoClient)
	users := repository.NewPostgres(pool)
	sessions := repository.NewSessionsLocalStorage()

	auth := service.NewAuth(users, cfg.AuthSalt)
	tracker := service.NewTracker(store, validate)

	hub := consumer.NewHub(bot, updatesChan, validate, auth, tracker, store, sessions, cfg.Budget)
	go hub.Consume(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, os.Interrupt)
	<-quit
	cancel()
	<-time.After(2 * time.Second)
}
