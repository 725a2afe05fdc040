package handlers

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/meal-ledger/internal/bot/keyboards"
	"github.com/vladimiradmaev/meal-ledger/internal/bot/menus"
	"github.com/vladimiradmaev/meal-ledger/internal/bot/state"
	"github.com/vladimiradmaev/meal-ledger/internal/logger"
)

// CallbackHandler handles callback query messages
type CallbackHandler struct {
	actions
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(api menus.Sender, deps Dependencies, stateManager state.StateManager) *CallbackHandler {
	return &CallbackHandler{actions{api: api, deps: deps, stateManager: stateManager}}
}

// Handle processes a callback query
func (h *CallbackHandler) Handle(ctx context.Context, query *tgbotapi.CallbackQuery, req Request) error {
	// Answer the callback query first
	callback := tgbotapi.NewCallback(query.ID, "")
	if _, err := h.api.Request(callback); err != nil {
		logger.Warn("Failed to answer callback", "telegram_id", req.TelegramID, "error", err)
	}

	switch query.Data {
	case keyboards.DayShow:
		return h.cancel(ctx, req)
	case keyboards.DayPrev:
		return h.shift(ctx, req, -1)
	case keyboards.DayNext:
		return h.shift(ctx, req, 1)
	case keyboards.DayToday:
		return h.today(ctx, req)
	case keyboards.DayPick:
		return h.promptDate(req)
	case keyboards.Search:
		return h.promptSearch(req)
	case keyboards.History:
		return h.showHistory(ctx, req)
	case keyboards.PagePrev:
		return h.page(req, false)
	case keyboards.PageNext:
		return h.page(req, true)
	case keyboards.PageNoop:
		return nil
	case keyboards.Cancel:
		return h.cancel(ctx, req)
	}

	switch {
	case strings.HasPrefix(query.Data, keyboards.PrefixPick):
		return h.pick(ctx, req, strings.TrimPrefix(query.Data, keyboards.PrefixPick))
	case strings.HasPrefix(query.Data, keyboards.PrefixSection):
		return h.pickSection(ctx, req, strings.TrimPrefix(query.Data, keyboards.PrefixSection))
	case strings.HasPrefix(query.Data, keyboards.PrefixEdit):
		return h.startEdit(ctx, req, strings.TrimPrefix(query.Data, keyboards.PrefixEdit))
	case strings.HasPrefix(query.Data, keyboards.PrefixDelete):
		return h.deleteEntry(ctx, req, strings.TrimPrefix(query.Data, keyboards.PrefixDelete))
	}

	logger.Warn("Unknown callback data", "data", query.Data, "telegram_id", req.TelegramID)
	return nil
}
