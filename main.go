package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v9"
	"github.com/go-telegram/bot"
	"github.com/joho/godotenv"

	"github.com/dskvich/yandexgpt-telegram-bot/pkg/logger"
	"github.com/dskvich/yandexgpt-telegram-bot/pkg/telegram/handlers"
	"github.com/dskvich/yandexgpt-telegram-bot/pkg/telegram/middleware"
	"github.com/dskvich/yandexgpt-telegram-bot/pkg/workers"
	"github.com/dskvich/yandexgpt-telegram-bot/pkg/yandexgpt"
)

type Config struct {
	TelegramBotToken string `env:"BOT_TOKEN,required"`
	YandexAPIKey     string `env:"YANDEX_API_KEY,required"`
	YandexFolderID   string `env:"YANDEX_FOLDER_ID,required"`
	YandexModel      string `env:"YANDEX_MODEL" envDefault:"yandexgpt/latest"`
}

func main() {
	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, logger.DefaultOptions)))

	if err := runMain(); err != nil {
		slog.Error("shutting down due to error", logger.Err(err))
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}

func runMain() error {
	workerGroup, err := setupWorkers()
	if err != nil {
		return err
	}

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGHUP)
		select {
		case s := <-sigCh:
			slog.Info("shutting down due to signal", "signal", s.String())
			cancelFn()
		case <-ctx.Done():
		}
	}()

	return workerGroup.Start(ctx)
}

func setupWorkers() (workers.Group, error) {
	// A .env file is optional, real environment variables win.
	_ = godotenv.Load()

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing env config: %w", err)
	}

	gptClient := yandexgpt.NewClient(cfg.YandexAPIKey, cfg.YandexFolderID, cfg.YandexModel)

	b, err := bot.New(cfg.TelegramBotToken,
		bot.WithMiddlewares(middleware.RequestID, middleware.Typing),
		bot.WithDefaultHandler(handlers.GenerateResponse(gptClient)),
	)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}

	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, handlers.Start())
	b.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, handlers.Help())

	var workerGroup workers.Group

	worker, err := workers.NewTelegramBot(b)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot worker: %w", err)
	}
	workerGroup = append(workerGroup, worker)

	return workerGroup, nil
}
