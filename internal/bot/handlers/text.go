package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/meal-ledger/internal/bot/menus"
	"github.com/vladimiradmaev/meal-ledger/internal/bot/state"
)

// TextHandler handles text messages
type TextHandler struct {
	actions
}

// NewTextHandler creates a new text handler
func NewTextHandler(api menus.Sender, deps Dependencies, stateManager state.StateManager) *TextHandler {
	return &TextHandler{actions{api: api, deps: deps, stateManager: stateManager}}
}

// Handle processes a text message according to the user's dialog state
func (h *TextHandler) Handle(ctx context.Context, message *tgbotapi.Message, req Request) error {
	switch h.stateManager.GetUserState(req.TelegramID) {
	case state.WaitingForSearchTerm:
		return h.search(ctx, req, message.Text)
	case state.WaitingForAddQuantity:
		return h.addQuantity(ctx, req, message.Text)
	case state.WaitingForEditQuantity:
		return h.editQuantity(ctx, req, message.Text)
	case state.WaitingForDate:
		return h.setDate(ctx, req, message.Text)
	default:
		// plain text outside a dialog is treated as a search
		return h.search(ctx, req, message.Text)
	}
}
