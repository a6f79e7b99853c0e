package middleware

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/dskvich/yandexgpt-telegram-bot/pkg/logger"
)

func RequestID(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		ctx = logger.ContextWithRequestID(ctx, update.ID)

		next(ctx, b, update)
	}
}
