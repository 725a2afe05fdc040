package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/meal-ledger/internal/bot/menus"
	"github.com/vladimiradmaev/meal-ledger/internal/bot/session"
	"github.com/vladimiradmaev/meal-ledger/internal/bot/state"
	"github.com/vladimiradmaev/meal-ledger/internal/logger"
)

// UpdateHandler handles telegram updates and coordinates other handlers
type UpdateHandler struct {
	api             menus.Sender
	sessions        *session.Registry
	stateManager    state.StateManager
	callbackHandler *CallbackHandler
	commandHandler  *CommandHandler
	textHandler     *TextHandler
}

// NewUpdateHandler creates a new update handler
func NewUpdateHandler(
	api menus.Sender,
	sessions *session.Registry,
	deps Dependencies,
	stateManager state.StateManager,
) *UpdateHandler {
	return &UpdateHandler{
		api:             api,
		sessions:        sessions,
		stateManager:    stateManager,
		callbackHandler: NewCallbackHandler(api, deps, stateManager),
		commandHandler:  NewCommandHandler(api, deps, stateManager),
		textHandler:     NewTextHandler(api, deps, stateManager),
	}
}

// Handle processes a telegram update
func (h *UpdateHandler) Handle(ctx context.Context, update tgbotapi.Update) error {
	var from *tgbotapi.User
	var chatID int64

	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		from = update.CallbackQuery.From
		chatID = update.CallbackQuery.Message.Chat.ID
	case update.Message != nil:
		from = update.Message.From
		chatID = update.Message.Chat.ID
	}
	if from == nil {
		return nil
	}

	sess, isNew, err := h.sessions.Get(ctx, from.ID, from.UserName)
	if err != nil {
		logger.Error("Failed to open session", "telegram_id", from.ID, "error", err)
		_ = menus.SendText(h.api, chatID, userMessage(err), nil)
		return fmt.Errorf("failed to open session: %w", err)
	}
	if isNew {
		if _, err := sess.Navigator.Today(ctx); err != nil {
			// showDay retries while the ledger is still empty
			logger.Warn("Initial load failed", "telegram_id", from.ID, "error", err)
		}
	}

	req := Request{Session: sess, TelegramID: from.ID, ChatID: chatID}

	if update.CallbackQuery != nil {
		return h.callbackHandler.Handle(ctx, update.CallbackQuery, req)
	}

	if update.Message.IsCommand() {
		return h.commandHandler.Handle(ctx, update.Message, req)
	}

	if update.Message.Text != "" {
		return h.textHandler.Handle(ctx, update.Message, req)
	}

	return nil
}
