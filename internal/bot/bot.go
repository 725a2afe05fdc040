package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/meal-ledger/internal/bot/handlers"
	"github.com/vladimiradmaev/meal-ledger/internal/bot/session"
	"github.com/vladimiradmaev/meal-ledger/internal/bot/state"
	apperrors "github.com/vladimiradmaev/meal-ledger/internal/errors"
	"github.com/vladimiradmaev/meal-ledger/internal/logger"
)

type Bot struct {
	api     *tgbotapi.BotAPI
	handler *handlers.UpdateHandler
	errors  *apperrors.Handler
}

func NewBot(token string, sessions *session.Registry, deps handlers.Dependencies, stateManager state.StateManager) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Bot authorized", "account", api.Self.UserName)
	return &Bot{
		api:     api,
		handler: handlers.NewUpdateHandler(api, sessions, deps, stateManager),
		errors:  apperrors.NewHandler(logger.GetLogger()),
	}, nil
}

// commands is the menu shown by telegram clients
var commands = []tgbotapi.BotCommand{
	{Command: "today", Description: "Сегодняшний день"},
	{Command: "prev", Description: "Предыдущий день"},
	{Command: "next", Description: "Следующий день"},
	{Command: "day", Description: "Перейти к дате"},
	{Command: "search", Description: "Найти продукт"},
	{Command: "history", Description: "Калории по дням"},
	{Command: "help", Description: "Помощь"},
}

// Start polls for updates until ctx is cancelled. Updates are handled one
// at a time in arrival order.
func (b *Bot) Start(ctx context.Context) error {
	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		logger.Warn("Failed to register bot commands", "error", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	logger.Info("Bot is now listening for updates")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Bot is shutting down")
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update := <-updates:
			if update.Message != nil && update.Message.From != nil {
				logger.Debug("Received message", "telegram_id", update.Message.From.ID, "text", update.Message.Text)
			}
			b.errors.Handle(ctx, b.handler.Handle(ctx, update))
		}
	}
}
