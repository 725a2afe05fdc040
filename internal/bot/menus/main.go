package menus

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/meal-ledger/internal/bot/keyboards"
	"github.com/vladimiradmaev/meal-ledger/internal/domain"
	"github.com/vladimiradmaev/meal-ledger/internal/history"
	"github.com/vladimiradmaev/meal-ledger/internal/ledger"
	"github.com/vladimiradmaev/meal-ledger/internal/macros"
	"github.com/vladimiradmaev/meal-ledger/internal/utils"
)

// Sender is the part of *tgbotapi.BotAPI the bot uses
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

var sectionTitles = map[domain.Section]string{
	domain.Breakfast: "🍳 Завтрак",
	domain.Lunch:     "🍲 Обед",
	domain.Dinner:    "🍝 Ужин",
	domain.Snacks:    "🍎 Перекус",
}

// SectionTitle is the display name of a section
func SectionTitle(s domain.Section) string {
	if t, ok := sectionTitles[s]; ok {
		return t
	}
	return string(s)
}

const HelpText = `Доступные команды:
/start - Показать текущий день
/today - Перейти к сегодняшнему дню
/prev, /next - Предыдущий / следующий день
/day ГГГГ-ММ-ДД - Перейти к дате
/search <продукт> - Найти продукт и добавить его
/history - Калории по дням
/help - Показать это сообщение

Количество указывается в порциях с шагом 0.5 (например: 1, 1.5, 2).
Чтобы удалить запись, укажите количество 0 или нажмите 🗑️.`

// DayView is a snapshot of the ledger for rendering
type DayView struct {
	Date     time.Time
	Entries  []domain.MealEntry
	Sections map[domain.Section][]domain.MealEntry
	Totals   map[domain.Section]macros.Totals
	Day      macros.Totals
	Progress macros.Progress
	Goal     float64
	AtFloor  bool
}

// ViewOf takes a snapshot of l
func ViewOf(l *ledger.Ledger, atFloor bool) DayView {
	v := DayView{
		Date:     l.Date(),
		Entries:  l.Entries(),
		Sections: make(map[domain.Section][]domain.MealEntry, len(domain.Sections)),
		Totals:   l.SectionTotals(),
		Day:      l.Totals(),
		Progress: l.Progress(),
		Goal:     l.Budget().CalorieGoal,
		AtFloor:  atFloor,
	}
	for _, s := range domain.Sections {
		v.Sections[s] = l.SectionItems(s)
	}
	return v
}

// EntryLine renders one entry with its contribution to the day
func EntryLine(e domain.MealEntry) string {
	c := macros.Contribution(e)
	return fmt.Sprintf("%s (%g): %g б | %g ж | %g у | %g ккал",
		e.Label, e.Quantity, c.Protein, c.Fat, c.Carbohydrates, c.Calories)
}

// FormatDay renders the day view text
func FormatDay(v DayView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 %s\n", utils.FormatDate(v.Date))
	fmt.Fprintf(&b, "🔥 %g / %g ккал (%.0f%%)", v.Day.Calories, v.Goal, v.Progress.Percent)
	if v.Progress.Over {
		b.WriteString(" ⚠️ превышение")
	}
	fmt.Fprintf(&b, "\nБ %g г | Ж %g г | У %g г\n", v.Day.Protein, v.Day.Fat, v.Day.Carbohydrates)

	for _, s := range domain.Sections {
		fmt.Fprintf(&b, "\n%s: %g ккал\n", SectionTitle(s), v.Totals[s].Calories)
		items := v.Sections[s]
		if len(items) == 0 {
			b.WriteString("  пусто\n")
			continue
		}
		for _, e := range items {
			b.WriteString("  • " + EntryLine(e) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatResults renders the header of a search results page
func FormatResults(term string, page, totalPages, count int) string {
	if totalPages < 1 {
		totalPages = 1
	}
	return fmt.Sprintf("🔍 «%s»: найдено %d, страница %d из %d\nВыберите продукт:", term, count, page, totalPages)
}

// FormatCandidate describes a picked food and asks for the servings
func FormatCandidate(c domain.FoodCandidate, section domain.Section, limit float64) string {
	var b strings.Builder
	b.WriteString("🍽️ " + c.Label)
	if c.Brand != "" {
		b.WriteString(" (" + c.Brand + ")")
	}
	fmt.Fprintf(&b, "\nНа порцию: %g ккал | Б %g | Ж %g | У %g",
		c.CaloriesPerServing, c.Nutrients.Protein, c.Nutrients.Fat, c.Nutrients.Carbohydrates)
	if c.ServingLabel != "" {
		fmt.Fprintf(&b, "\nПорция: %s, %g г", c.ServingLabel, c.ServingWeight)
	}
	fmt.Fprintf(&b, "\n\nРаздел: %s\nСколько порций? От 0.5 до %g, шаг 0.5", SectionTitle(section), limit)
	return b.String()
}

// FormatEditPrompt asks for the new servings of an entry
func FormatEditPrompt(e domain.MealEntry, limit float64) string {
	return fmt.Sprintf("✏️ %s\nСейчас: %g порц.\nВведите новое количество от 0 до %g (0 удалит запись)",
		EntryLine(e), e.Quantity, limit)
}

// FormatHistory renders per-day calories, newest last
func FormatHistory(days []history.DayTotals, goal float64) string {
	if len(days) == 0 {
		return "📈 История пуста"
	}
	var b strings.Builder
	b.WriteString("📈 Калории по дням:\n")
	for _, d := range days {
		mark := "✅"
		if d.Totals.Calories > goal {
			mark = "⚠️"
		}
		fmt.Fprintf(&b, "\n%s %s: %g ккал (Б %g | Ж %g | У %g)", mark, utils.FormatDate(d.Date),
			d.Totals.Calories, d.Totals.Protein, d.Totals.Fat, d.Totals.Carbohydrates)
	}
	return b.String()
}

// SendDay sends the day view, prefixed with notice if given
func SendDay(api Sender, chatID int64, v DayView, notice string) error {
	text := FormatDay(v)
	if notice != "" {
		text = notice + "\n\n" + text
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboards.DayMenu(v.Entries, v.AtFloor)
	_, err := api.Send(msg)
	return err
}

// SendText sends plain text with an optional keyboard
func SendText(api Sender, chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	_, err := api.Send(msg)
	return err
}
