package handlers

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/meal-ledger/internal/bot/keyboards"
	"github.com/vladimiradmaev/meal-ledger/internal/bot/menus"
	"github.com/vladimiradmaev/meal-ledger/internal/bot/state"
	"github.com/vladimiradmaev/meal-ledger/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-ledger/internal/errors"
	"github.com/vladimiradmaev/meal-ledger/internal/foodsearch"
	"github.com/vladimiradmaev/meal-ledger/internal/history"
	"github.com/vladimiradmaev/meal-ledger/internal/logger"
	"github.com/vladimiradmaev/meal-ledger/internal/navigator"
	"github.com/vladimiradmaev/meal-ledger/internal/utils"
)

// historyDays is how many recent days /history shows
const historyDays = 14

// actions holds the flows shared by commands, buttons and typed replies
type actions struct {
	api          menus.Sender
	deps         Dependencies
	stateManager state.StateManager
}

func (a *actions) send(chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	return menus.SendText(a.api, chatID, text, markup)
}

func (a *actions) sendError(chatID int64, err error, markup *tgbotapi.InlineKeyboardMarkup) error {
	return a.send(chatID, userMessage(err), markup)
}

func (a *actions) resetDialog(req Request) {
	a.stateManager.SetUserState(req.TelegramID, state.None)
	a.stateManager.ClearTempData(req.TelegramID)
}

// showDay renders the current day, loading today first for a fresh session
func (a *actions) showDay(ctx context.Context, req Request, notice string) error {
	if !req.Session.Ledger.Loaded() {
		if _, err := req.Session.Navigator.Today(ctx); err != nil {
			logger.Warn("Initial load failed", "telegram_id", req.TelegramID, "error", err)
			return a.sendError(req.ChatID, err, nil)
		}
	}
	s := req.Session
	return menus.SendDay(a.api, req.ChatID, menus.ViewOf(s.Ledger, s.Navigator.AtFloor()), notice)
}

// navigate moves the cursor and shows the resulting day. A failed load
// keeps the previous day on screen together with the error.
func (a *actions) navigate(ctx context.Context, req Request, move func(ctx context.Context) (navigator.Move, error)) error {
	a.resetDialog(req)
	m, err := move(ctx)

	notice := ""
	if m.Notice != nil {
		notice = userMessage(m.Notice)
	}
	if err != nil {
		if apperrors.TypeOf(err) == apperrors.ErrorTypeCancelled {
			return nil
		}
		logger.Warn("Navigation load failed", "telegram_id", req.TelegramID, "date", utils.FormatDate(m.Date), "error", err)
		notice = strings.TrimSpace(notice + "\n" + userMessage(err))
	}
	return a.showDay(ctx, req, notice)
}

func (a *actions) shift(ctx context.Context, req Request, days int) error {
	return a.navigate(ctx, req, func(ctx context.Context) (navigator.Move, error) {
		return req.Session.Navigator.Shift(ctx, days)
	})
}

func (a *actions) today(ctx context.Context, req Request) error {
	return a.navigate(ctx, req, req.Session.Navigator.Today)
}

func (a *actions) promptDate(req Request) error {
	a.stateManager.SetUserState(req.TelegramID, state.WaitingForDate)
	markup := keyboards.CancelOnly()
	return a.send(req.ChatID, "Введите дату в формате ГГГГ-ММ-ДД (например, 2024-03-01):", &markup)
}

func (a *actions) setDate(ctx context.Context, req Request, text string) error {
	date, err := utils.ParseDate(strings.TrimSpace(text))
	if err != nil {
		markup := keyboards.CancelOnly()
		return a.send(req.ChatID, "Неверный формат даты. Используйте ГГГГ-ММ-ДД", &markup)
	}
	return a.navigate(ctx, req, func(ctx context.Context) (navigator.Move, error) {
		return req.Session.Navigator.SetDate(ctx, date)
	})
}

func (a *actions) promptSearch(req Request) error {
	a.stateManager.SetUserState(req.TelegramID, state.WaitingForSearchTerm)
	a.stateManager.ClearTempData(req.TelegramID)
	markup := keyboards.CancelOnly()
	return a.send(req.ChatID, "🔍 Введите название продукта (например: apple, oatmeal):", &markup)
}

func (a *actions) search(ctx context.Context, req Request, term string) error {
	results, err := a.deps.Searcher.Search(ctx, term)
	if err != nil {
		logger.Info("Food search failed", "telegram_id", req.TelegramID, "term", term, "error", err)
		markup := keyboards.CancelOnly()
		if apperrors.TypeOf(err) == apperrors.ErrorTypeValidation {
			// stay in search mode so the user can retype
			a.stateManager.SetUserState(req.TelegramID, state.WaitingForSearchTerm)
		}
		return a.sendError(req.ChatID, err, &markup)
	}

	a.resetDialog(req)
	req.Session.SetResults(strings.TrimSpace(term), results)
	return a.sendResults(req)
}

func (a *actions) sendResults(req Request) error {
	var text string
	var markup tgbotapi.InlineKeyboardMarkup
	req.Session.WithPager(func(term string, p *foodsearch.Pager) {
		text = menus.FormatResults(term, p.Page(), p.TotalPages(), p.Len())
		markup = keyboards.SearchResults(p.Items(), p.Page(), p.TotalPages())
	})
	return a.send(req.ChatID, text, &markup)
}

func (a *actions) page(req Request, forward bool) error {
	req.Session.WithPager(func(_ string, p *foodsearch.Pager) {
		if forward {
			p.Next()
		} else {
			p.Prev()
		}
	})
	return a.sendResults(req)
}

func (a *actions) pick(ctx context.Context, req Request, index string) error {
	i, err := strconv.Atoi(index)
	if err != nil {
		return a.send(req.ChatID, "Продукт не найден, повторите поиск", nil)
	}

	var candidate domain.FoodCandidate
	var ok bool
	req.Session.WithPager(func(_ string, p *foodsearch.Pager) {
		candidate, ok = p.Item(i)
	})
	if !ok {
		return a.send(req.ChatID, "Продукт не найден, повторите поиск", nil)
	}

	data, err := json.Marshal(candidate)
	if err != nil {
		return err
	}
	a.stateManager.ClearTempData(req.TelegramID)
	a.stateManager.SetTempData(req.TelegramID, state.KeyCandidate, string(data))

	markup := keyboards.Sections()
	return a.send(req.ChatID, "🍽️ "+candidate.Label+"\nВ какой прием пищи добавить?", &markup)
}

func (a *actions) pendingCandidate(req Request) (domain.FoodCandidate, bool) {
	raw, ok := a.stateManager.GetTempData(req.TelegramID, state.KeyCandidate)
	if !ok {
		return domain.FoodCandidate{}, false
	}
	var c domain.FoodCandidate
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return domain.FoodCandidate{}, false
	}
	return c, true
}

func (a *actions) pickSection(ctx context.Context, req Request, name string) error {
	section, ok := domain.ParseSection(name)
	if !ok {
		return a.sendError(req.ChatID, apperrors.NewInvalidSectionError(name), nil)
	}
	candidate, ok := a.pendingCandidate(req)
	if !ok {
		return a.send(req.ChatID, "Сначала выберите продукт через поиск", nil)
	}

	a.stateManager.SetTempData(req.TelegramID, state.KeySection, string(section))
	a.stateManager.SetUserState(req.TelegramID, state.WaitingForAddQuantity)

	limit := req.Session.Ledger.AddLimit(candidate)
	markup := keyboards.CancelOnly()
	return a.send(req.ChatID, menus.FormatCandidate(candidate, section, limit), &markup)
}

func (a *actions) addQuantity(ctx context.Context, req Request, text string) error {
	candidate, ok := a.pendingCandidate(req)
	sectionName, hasSection := a.stateManager.GetTempData(req.TelegramID, state.KeySection)
	if !ok || !hasSection {
		a.resetDialog(req)
		return a.send(req.ChatID, "Сначала выберите продукт через поиск", nil)
	}

	servings, ok := parseQuantity(text)
	if !ok {
		markup := keyboards.CancelOnly()
		return a.send(req.ChatID, "Введите число порций, например: 1 или 1.5", &markup)
	}

	created, err := req.Session.Ledger.AddToSection(ctx, domain.Section(sectionName), candidate, servings)
	return a.afterMutation(ctx, req, created != nil, err, "✅ Добавлено: "+candidate.Label)
}

func (a *actions) startEdit(ctx context.Context, req Request, entryID string) error {
	entry, ok := req.Session.Ledger.Entry(entryID)
	if !ok {
		return a.sendError(req.ChatID, apperrors.NewEntryNotFoundError(entryID), nil)
	}
	limit, _ := req.Session.Ledger.EditLimit(entryID)

	a.stateManager.ClearTempData(req.TelegramID)
	a.stateManager.SetTempData(req.TelegramID, state.KeyEntryID, entryID)
	a.stateManager.SetUserState(req.TelegramID, state.WaitingForEditQuantity)

	markup := keyboards.CancelOnly()
	return a.send(req.ChatID, menus.FormatEditPrompt(entry, limit), &markup)
}

func (a *actions) editQuantity(ctx context.Context, req Request, text string) error {
	entryID, ok := a.stateManager.GetTempData(req.TelegramID, state.KeyEntryID)
	if !ok {
		a.resetDialog(req)
		return a.showDay(ctx, req, "")
	}

	servings, ok := parseQuantity(text)
	if !ok {
		markup := keyboards.CancelOnly()
		return a.send(req.ChatID, "Введите число порций, например: 1 или 1.5", &markup)
	}

	saved, err := req.Session.Ledger.AdjustQuantity(ctx, entryID, servings)
	done := "✅ Количество обновлено"
	if servings == 0 {
		done = "🗑️ Запись удалена"
	}
	return a.afterMutation(ctx, req, saved != nil, err, done)
}

func (a *actions) deleteEntry(ctx context.Context, req Request, entryID string) error {
	a.resetDialog(req)
	saved, err := req.Session.Ledger.AdjustQuantity(ctx, entryID, 0)
	return a.afterMutation(ctx, req, saved != nil, err, "🗑️ Запись удалена")
}

// afterMutation reports the result of an add or adjust. Validation errors
// keep the dialog open so the user can type another quantity.
func (a *actions) afterMutation(ctx context.Context, req Request, stored bool, err error, done string) error {
	if err == nil {
		a.resetDialog(req)
		return a.showDay(ctx, req, done)
	}
	if stored {
		// saved remotely, only the refresh failed
		a.resetDialog(req)
		logger.Warn("Meal saved but reload failed", "telegram_id", req.TelegramID, "error", err)
		return a.showDay(ctx, req, done+"\n"+userMessage(err))
	}
	if apperrors.TypeOf(err) == apperrors.ErrorTypeValidation {
		markup := keyboards.CancelOnly()
		return a.sendError(req.ChatID, err, &markup)
	}

	a.resetDialog(req)
	logger.Warn("Meal change failed", "telegram_id", req.TelegramID, "error", err)
	markup := keyboards.BackToDay()
	return a.sendError(req.ChatID, err, &markup)
}

func (a *actions) showHistory(ctx context.Context, req Request) error {
	days, err := a.deps.History.Days(ctx, req.Session.Account.UserID)
	markup := keyboards.BackToDay()
	if err != nil {
		logger.Warn("History load failed", "telegram_id", req.TelegramID, "error", err)
		return a.sendError(req.ChatID, err, &markup)
	}
	text := menus.FormatHistory(history.Last(days, historyDays), req.Session.Ledger.Budget().CalorieGoal)
	return a.send(req.ChatID, text, &markup)
}

// cancel returns to the day view, retrying the requested day if the last
// navigation failed
func (a *actions) cancel(ctx context.Context, req Request) error {
	a.resetDialog(req)
	notice := ""
	if l := req.Session.Ledger; l.Stale() {
		if err := l.Reload(ctx); err != nil && apperrors.TypeOf(err) != apperrors.ErrorTypeCancelled {
			logger.Warn("Retrying day load failed", "telegram_id", req.TelegramID, "error", err)
			notice = userMessage(err)
		}
	}
	return a.showDay(ctx, req, notice)
}

func parseQuantity(text string) (float64, bool) {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	q, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return q, true
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
