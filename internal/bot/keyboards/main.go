package keyboards

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/meal-ledger/internal/domain"
)

// Callback data. Prefixed values carry an argument after the colon.
const (
	DayShow  = "day:show"
	DayPrev  = "day:prev"
	DayNext  = "day:next"
	DayToday = "day:today"
	DayPick  = "day:pick"
	Search   = "search"
	History  = "history"
	PagePrev = "page:prev"
	PageNext = "page:next"
	PageNoop = "page:noop"
	Cancel   = "cancel"

	PrefixPick    = "pick:"
	PrefixSection = "section:"
	PrefixEdit    = "edit:"
	PrefixDelete  = "del:"
)

// DayMenu lists the day's entries with edit and delete buttons, then the
// navigation rows. The back button is hidden on the account's first day.
func DayMenu(entries []domain.MealEntry, atFloor bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, e := range entries {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✏️ %s (%g)", truncate(e.Label, 28), e.Quantity), PrefixEdit+e.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑️", PrefixDelete+e.ID),
		))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if !atFloor {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("◀️", DayPrev))
	}
	nav = append(nav,
		tgbotapi.NewInlineKeyboardButtonData("📅 Сегодня", DayToday),
		tgbotapi.NewInlineKeyboardButtonData("🗓️ Дата", DayPick),
		tgbotapi.NewInlineKeyboardButtonData("▶️", DayNext),
	)
	rows = append(rows, nav, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔍 Добавить еду", Search),
		tgbotapi.NewInlineKeyboardButtonData("📈 История", History),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// SearchResults shows one page of candidates and the page controls
func SearchResults(items []domain.FoodCandidate, page, totalPages int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, c := range items {
		label := c.Label
		if c.Brand != "" {
			label += " · " + c.Brand
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s, %.0f ккал", truncate(label, 40), c.CaloriesPerServing), fmt.Sprintf("%s%d", PrefixPick, i)),
		))
	}
	if totalPages < 1 {
		totalPages = 1
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️", PagePrev),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d из %d", page, totalPages), PageNoop),
			tgbotapi.NewInlineKeyboardButtonData("▶️", PageNext),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ К дню", DayShow),
		),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// Sections asks which meal slot to log into
func Sections() tgbotapi.InlineKeyboardMarkup {
	names := map[domain.Section]string{
		domain.Breakfast: "🍳 Завтрак",
		domain.Lunch:     "🍲 Обед",
		domain.Dinner:    "🍝 Ужин",
		domain.Snacks:    "🍎 Перекус",
	}
	row1 := tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(names[domain.Breakfast], PrefixSection+string(domain.Breakfast)),
		tgbotapi.NewInlineKeyboardButtonData(names[domain.Lunch], PrefixSection+string(domain.Lunch)),
	)
	row2 := tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(names[domain.Dinner], PrefixSection+string(domain.Dinner)),
		tgbotapi.NewInlineKeyboardButtonData(names[domain.Snacks], PrefixSection+string(domain.Snacks)),
	)
	return tgbotapi.NewInlineKeyboardMarkup(row1, row2, CancelRow())
}

// CancelOnly is shown while waiting for typed input
func CancelOnly() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(CancelRow())
}

func CancelRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Отмена", Cancel),
	)
}

// BackToDay is a single button returning to the day view
func BackToDay() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ К дню", DayShow),
	))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
