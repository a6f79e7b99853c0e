package handlers

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/dskvich/yandexgpt-telegram-bot/pkg/domain"
	"github.com/dskvich/yandexgpt-telegram-bot/pkg/logger"
)

type generateResponseCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// GenerateResponse forwards a text message to the model and relays the
// completion back verbatim. A failed completion turns into a fixed user
// notice, never into a crash.
func GenerateResponse(completer generateResponseCompleter) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message == nil {
			slog.WarnContext(ctx, "Received unknown update type", "update", update)
			return
		}

		msg := domain.ChatMessage{
			ChatID: update.Message.Chat.ID,
			Text:   update.Message.Text,
		}
		if update.Message.From != nil {
			msg.UserID = update.Message.From.ID
		}

		if msg.Text == "" {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: msg.ChatID,
				Text:   domain.TextOnlyMessage,
			})
			return
		}

		slog.InfoContext(ctx, "Forwarding message to Yandex GPT",
			"chatID", msg.ChatID,
			"userID", msg.UserID,
			"length", len(msg.Text),
		)

		completion, err := completer.Complete(ctx, msg.Text)
		if err != nil {
			slog.ErrorContext(ctx, "Completion failed", "chatID", msg.ChatID, logger.Err(err))
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: msg.ChatID,
				Text:   domain.CompletionFailedMessage,
			})
			return
		}

		// No parse mode: the reply goes out exactly as the model produced it.
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: msg.ChatID,
			Text:   completion,
		})
	}
}
