package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/dskvich/yandexgpt-telegram-bot/pkg/domain"
)

func Help() bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   domain.HelpMessage,
		})
	}
}
