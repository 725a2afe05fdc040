package handlers

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/meal-ledger/internal/bot/menus"
	"github.com/vladimiradmaev/meal-ledger/internal/bot/state"
	"github.com/vladimiradmaev/meal-ledger/internal/logger"
)

// CommandHandler handles bot commands
type CommandHandler struct {
	actions
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(api menus.Sender, deps Dependencies, stateManager state.StateManager) *CommandHandler {
	return &CommandHandler{actions{api: api, deps: deps, stateManager: stateManager}}
}

// Handle processes a command message
func (h *CommandHandler) Handle(ctx context.Context, message *tgbotapi.Message, req Request) error {
	logger.Info("Handling command", "command", message.Command(), "telegram_id", req.TelegramID)

	args := strings.TrimSpace(message.CommandArguments())
	switch message.Command() {
	case "start":
		h.resetDialog(req)
		return h.showDay(ctx, req, "👋 Привет! Это ваш дневник питания.")
	case "help":
		return h.send(req.ChatID, menus.HelpText, nil)
	case "today":
		return h.today(ctx, req)
	case "prev":
		return h.shift(ctx, req, -1)
	case "next":
		return h.shift(ctx, req, 1)
	case "day":
		if args == "" {
			return h.promptDate(req)
		}
		h.resetDialog(req)
		return h.setDate(ctx, req, args)
	case "search":
		if args == "" {
			return h.promptSearch(req)
		}
		return h.search(ctx, req, args)
	case "history":
		h.resetDialog(req)
		return h.showHistory(ctx, req)
	default:
		return h.send(req.ChatID, "Неизвестная команда. Используйте /help для просмотра доступных команд.", nil)
	}
}
