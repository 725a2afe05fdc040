// Package ledger keeps one day's meal entries in sync with the remote store.
//
// The store is the source of truth: every successful add or adjust is
// followed by a full reload of the day. Loads are tagged with an epoch and a
// result is applied only if no newer load was started meanwhile, so the
// ledger always ends up showing the last requested date.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/vladimiradmaev/meal-ledger/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-ledger/internal/errors"
	"github.com/vladimiradmaev/meal-ledger/internal/logger"
	"github.com/vladimiradmaev/meal-ledger/internal/macros"
	"github.com/vladimiradmaev/meal-ledger/internal/quantity"
	"github.com/vladimiradmaev/meal-ledger/internal/utils"
)

// Ledger is the active, date-scoped collection of a user's meal entries
type Ledger struct {
	gateway domain.SyncGateway
	userID  string
	budget  domain.Budget

	mu         sync.Mutex
	date       time.Time // day the entries belong to
	requested  time.Time // day of the latest Load call
	entries    []domain.MealEntry
	loaded     bool
	epoch      uint64
	cancelLoad context.CancelFunc
	pending    map[string]struct{}
}

// New creates an empty ledger for userID
func New(gateway domain.SyncGateway, userID string, budget domain.Budget) *Ledger {
	return &Ledger{
		gateway: gateway,
		userID:  userID,
		budget:  budget,
		pending: make(map[string]struct{}),
	}
}

// Load fetches the entries for date and replaces the ledger contents.
// On failure the previous contents are kept. If another Load starts before
// this one completes, this one is cancelled, its result is discarded and
// ErrLoadSuperseded is returned.
func (l *Ledger) Load(ctx context.Context, date time.Time) error {
	date = utils.Day(date)

	l.mu.Lock()
	l.epoch++
	epoch := l.epoch
	l.requested = date
	if l.cancelLoad != nil {
		l.cancelLoad()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	l.cancelLoad = cancel
	l.mu.Unlock()
	defer cancel()

	logger.Debug("Loading meals", "user_id", l.userID, "date", utils.FormatDate(date), "epoch", epoch)
	entries, err := l.gateway.FetchMeals(loadCtx, l.userID, date)

	l.mu.Lock()
	defer l.mu.Unlock()

	if epoch != l.epoch {
		logger.Debug("Discarding superseded load", "date", utils.FormatDate(date), "epoch", epoch, "current_epoch", l.epoch)
		return apperrors.NewLoadSupersededError(utils.FormatDate(date))
	}
	l.cancelLoad = nil

	if err != nil {
		logger.Warn("Failed to load meals", "user_id", l.userID, "date", utils.FormatDate(date), "error", err)
		return asTransport(err, "load meals")
	}

	l.date = date
	l.entries = activeEntries(entries)
	l.loaded = true
	return nil
}

// Reload refreshes the most recently requested date
func (l *Ledger) Reload(ctx context.Context) error {
	l.mu.Lock()
	date := l.requested
	l.mu.Unlock()
	if date.IsZero() {
		return apperrors.NewInternalError(fmt.Errorf("ledger has no date to reload"))
	}
	return l.Load(ctx, date)
}

// AddToSection logs quantity servings of candidate in section on the
// ledger's current day. The quantity must be positive, on a 0.5 step and
// within quantity.AddLimit for the day's totals before the add.
//
// If the store accepts the entry but the follow-up reload fails, the created
// entry is returned together with the reload error. While the shown day is
// not the last requested one (a load failed or is in flight) the add is
// refused with ErrDayStale.
func (l *Ledger) AddToSection(ctx context.Context, section domain.Section, candidate domain.FoodCandidate, servings float64) (*domain.MealEntry, error) {
	if !section.Valid() {
		return nil, apperrors.NewInvalidSectionError(string(section))
	}
	if err := checkQuantity(servings); err != nil {
		return nil, err
	}
	if servings == 0 {
		return nil, apperrors.NewInvalidQuantityError(servings, "must be greater than zero")
	}

	l.mu.Lock()
	if err := l.checkCurrent(); err != nil {
		l.mu.Unlock()
		return nil, err
	}
	date := l.date
	consumed := macros.Sum(l.entries).Calories
	l.mu.Unlock()

	limit := quantity.AddLimit(candidate.CaloriesPerServing, consumed, l.budget.CalorieGoal)
	if servings > limit {
		return nil, apperrors.NewInvalidQuantityError(servings, fmt.Sprintf("exceeds the limit of %g servings", limit)).
			WithContext("limit", limit)
	}

	entry := EntryFromCandidate(section, candidate, servings, date)
	created, err := l.gateway.CreateMeal(ctx, l.userID, date, entry)
	if err != nil {
		logger.Warn("Failed to create meal", "user_id", l.userID, "label", entry.Label, "error", err)
		return nil, asTransport(err, "create meal")
	}
	logger.Info("Meal logged", "user_id", l.userID, "date", utils.FormatDate(date), "section", section, "label", entry.Label, "quantity", servings)

	return created, l.refresh(ctx)
}

// AdjustQuantity changes the servings of an existing entry. Zero deletes
// the entry; negative values are rejected before any remote call. Only one
// change per entry may be in flight; a concurrent one gets ErrEntryBusy.
// Like AddToSection it is refused with ErrDayStale on a stale day.
func (l *Ledger) AdjustQuantity(ctx context.Context, entryID string, servings float64) (*domain.MealEntry, error) {
	if err := checkQuantity(servings); err != nil {
		return nil, err
	}

	l.mu.Lock()
	if err := l.checkCurrent(); err != nil {
		l.mu.Unlock()
		return nil, err
	}
	current, ok := l.find(entryID)
	if !ok {
		l.mu.Unlock()
		return nil, apperrors.NewEntryNotFoundError(entryID)
	}
	if _, busy := l.pending[entryID]; busy {
		l.mu.Unlock()
		return nil, apperrors.NewEntryBusyError(entryID)
	}
	consumed := macros.Sum(l.entries).Calories
	l.pending[entryID] = struct{}{}
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		delete(l.pending, entryID)
		l.mu.Unlock()
	}()

	if servings > 0 {
		limit := quantity.EditLimit(current.Calories, consumed, l.budget.CalorieGoal, current.Quantity)
		if servings > limit {
			return nil, apperrors.NewInvalidQuantityError(servings, fmt.Sprintf("exceeds the limit of %g servings", limit)).
				WithContext("limit", limit)
		}
	}

	updated := current
	updated.Quantity = servings
	saved, err := l.gateway.UpdateMeal(ctx, entryID, updated)
	if err != nil {
		logger.Warn("Failed to update meal", "user_id", l.userID, "entry_id", entryID, "error", err)
		return nil, asTransport(err, "update meal")
	}
	if servings == 0 {
		logger.Info("Meal deleted", "user_id", l.userID, "entry_id", entryID)
	} else {
		logger.Info("Meal quantity changed", "user_id", l.userID, "entry_id", entryID, "from", current.Quantity, "to", servings)
	}

	return saved, l.refresh(ctx)
}

// refresh reloads after a write. A superseded reload is fine: the newer
// load will bring the change in.
func (l *Ledger) refresh(ctx context.Context) error {
	err := l.Reload(ctx)
	if err == nil || apperrors.TypeOf(err) == apperrors.ErrorTypeCancelled {
		return nil
	}
	return fmt.Errorf("meal saved but refreshing the day failed: %w", err)
}

// checkCurrent requires the shown day to be the requested one, so the
// reload after a write refreshes the day that was written. Callers hold l.mu.
func (l *Ledger) checkCurrent() error {
	if !l.loaded {
		return apperrors.NewInternalError(fmt.Errorf("ledger has not been loaded"))
	}
	if !l.date.Equal(l.requested) {
		return apperrors.NewDayStaleError(utils.FormatDate(l.date), utils.FormatDate(l.requested))
	}
	return nil
}

// Stale reports whether the shown day differs from the last requested one
func (l *Ledger) Stale() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded && !l.date.Equal(l.requested)
}

func (l *Ledger) find(entryID string) (domain.MealEntry, bool) {
	for _, e := range l.entries {
		if e.ID == entryID {
			return e, true
		}
	}
	return domain.MealEntry{}, false
}

// Entry returns the active entry with entryID
func (l *Ledger) Entry(entryID string) (domain.MealEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.find(entryID)
}

// Date is the day the current entries belong to
func (l *Ledger) Date() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.date
}

// Loaded reports whether any load has succeeded
func (l *Ledger) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

// Budget returns the calorie budget the ledger enforces
func (l *Ledger) Budget() domain.Budget {
	return l.budget
}

// Entries returns a copy of all active entries in store order
func (l *Ledger) Entries() []domain.MealEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.MealEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// SectionItems returns the active entries of section in store order
func (l *Ledger) SectionItems(section domain.Section) []domain.MealEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.MealEntry
	for _, e := range l.entries {
		if e.Section == section {
			out = append(out, e)
		}
	}
	return out
}

// TotalCalories sums floor(calories) * quantity over active entries
func (l *Ledger) TotalCalories() float64 {
	return l.Totals().Calories
}

// Totals sums calories and macros over the day
func (l *Ledger) Totals() macros.Totals {
	l.mu.Lock()
	defer l.mu.Unlock()
	return macros.Sum(l.entries)
}

// SectionTotals sums calories and macros per section
func (l *Ledger) SectionTotals() map[domain.Section]macros.Totals {
	l.mu.Lock()
	defer l.mu.Unlock()
	return macros.BySection(l.entries)
}

// Progress is the day's calorie consumption against the budget
func (l *Ledger) Progress() macros.Progress {
	return macros.ProgressOf(l.Totals(), l.budget.CalorieGoal)
}

// AddLimit is the maximum servings of candidate that can be added now
func (l *Ledger) AddLimit(candidate domain.FoodCandidate) float64 {
	return quantity.AddLimit(candidate.CaloriesPerServing, l.TotalCalories(), l.budget.CalorieGoal)
}

// EditLimit is the maximum servings entryID can be changed to now
func (l *Ledger) EditLimit(entryID string) (float64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.find(entryID)
	if !ok {
		return 0, false
	}
	return quantity.EditLimit(e.Calories, macros.Sum(l.entries).Calories, l.budget.CalorieGoal, e.Quantity), true
}

// EntryFromCandidate builds the entry stored for servings of candidate.
// Calories and macros are the per-serving values scaled by servings and
// rounded up.
func EntryFromCandidate(section domain.Section, candidate domain.FoodCandidate, servings float64, date time.Time) domain.MealEntry {
	return domain.MealEntry{
		Section:  section,
		Label:    candidate.Label,
		Calories: math.Ceil(candidate.CaloriesPerServing * servings),
		Nutrients: domain.Nutrients{
			Protein:       math.Ceil(candidate.Nutrients.Protein * servings),
			Fat:           math.Ceil(candidate.Nutrients.Fat * servings),
			Carbohydrates: math.Ceil(candidate.Nutrients.Carbohydrates * servings),
		},
		Quantity: servings,
		Date:     utils.Day(date),
	}
}

func checkQuantity(servings float64) error {
	switch {
	case math.IsNaN(servings) || math.IsInf(servings, 0):
		return apperrors.NewInvalidQuantityError(servings, "must be a number")
	case servings < 0:
		return apperrors.NewInvalidQuantityError(servings, "must not be negative")
	case !quantity.OnStep(servings):
		return apperrors.NewInvalidQuantityError(servings, fmt.Sprintf("must be a multiple of %g", quantity.Step))
	}
	return nil
}

func activeEntries(entries []domain.MealEntry) []domain.MealEntry {
	out := make([]domain.MealEntry, 0, len(entries))
	for _, e := range entries {
		if e.Active() {
			out = append(out, e)
		}
	}
	return out
}

func asTransport(err error, operation string) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.NewTransportError(err, operation)
}
