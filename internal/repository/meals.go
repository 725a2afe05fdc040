package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/meal-ledger/internal/database"
	"github.com/vladimiradmaev/meal-ledger/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-ledger/internal/errors"
	"github.com/vladimiradmaev/meal-ledger/internal/utils"
	"gorm.io/gorm"
)

// MealRepository stores meal entries in postgres and implements
// domain.SyncGateway directly
type MealRepository struct {
	db *gorm.DB
}

// NewMealRepository creates a new meal repository
func NewMealRepository(db *gorm.DB) *MealRepository {
	return &MealRepository{db: db}
}

// FetchMeals returns the active entries of userID on date in insertion order
func (r *MealRepository) FetchMeals(ctx context.Context, userID string, date time.Time) ([]domain.MealEntry, error) {
	var records []database.MealRecord
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ? AND quantity > 0", userID, utils.Day(date)).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, apperrors.NewTransportError(fmt.Errorf("failed to get meals: %w", err), "fetch meals")
	}
	return toEntries(records), nil
}

// CreateMeal stores entry under a new uuid
func (r *MealRepository) CreateMeal(ctx context.Context, userID string, date time.Time, entry domain.MealEntry) (*domain.MealEntry, error) {
	if err := validate(entry); err != nil {
		return nil, err
	}

	record := toRecord(entry)
	record.ID = uuid.New().String()
	record.UserID = userID
	record.Date = utils.Day(date)

	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, apperrors.NewTransportError(fmt.Errorf("failed to create meal: %w", err), "create meal")
	}
	created := toEntry(record)
	return &created, nil
}

// UpdateMeal overwrites the stored entry. The owner and date are kept;
// quantity 0 marks the entry deleted.
func (r *MealRepository) UpdateMeal(ctx context.Context, entryID string, entry domain.MealEntry) (*domain.MealEntry, error) {
	if err := validate(entry); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(entryID); err != nil {
		return nil, apperrors.NewEntryNotFoundError(entryID)
	}

	var record database.MealRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", entryID).First(&record).Error; err != nil {
			return err
		}
		record.Section = string(entry.Section)
		record.Label = entry.Label
		record.Calories = entry.Calories
		record.Protein = entry.Nutrients.Protein
		record.Fat = entry.Nutrients.Fat
		record.Carbohydrates = entry.Nutrients.Carbohydrates
		record.Quantity = entry.Quantity

		// map so that a zero quantity is written too
		return tx.Model(&database.MealRecord{}).Where("id = ?", entryID).Updates(map[string]interface{}{
			"section":       string(entry.Section),
			"label":         entry.Label,
			"calories":      entry.Calories,
			"protein":       entry.Nutrients.Protein,
			"fat":           entry.Nutrients.Fat,
			"carbohydrates": entry.Nutrients.Carbohydrates,
			"quantity":      entry.Quantity,
		}).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewEntryNotFoundError(entryID)
	}
	if err != nil {
		return nil, apperrors.NewTransportError(fmt.Errorf("failed to update meal: %w", err), "update meal")
	}

	saved := toEntry(record)
	return &saved, nil
}

// FetchAllMeals returns every active entry of userID, oldest day first
func (r *MealRepository) FetchAllMeals(ctx context.Context, userID string) ([]domain.MealEntry, error) {
	var records []database.MealRecord
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND quantity > 0", userID).
		Order("date ASC, created_at ASC").
		Find(&records).Error; err != nil {
		return nil, apperrors.NewTransportError(fmt.Errorf("failed to get meal history: %w", err), "fetch all meals")
	}
	return toEntries(records), nil
}

// Owner returns the user the entry belongs to
func (r *MealRepository) Owner(ctx context.Context, entryID string) (string, error) {
	if _, err := uuid.Parse(entryID); err != nil {
		return "", apperrors.NewEntryNotFoundError(entryID)
	}
	var record database.MealRecord
	err := r.db.WithContext(ctx).Select("user_id").Where("id = ?", entryID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperrors.NewEntryNotFoundError(entryID)
	}
	if err != nil {
		return "", apperrors.NewTransportError(fmt.Errorf("failed to get meal owner: %w", err), "fetch meal owner")
	}
	return record.UserID, nil
}

func validate(entry domain.MealEntry) error {
	if !entry.Section.Valid() {
		return apperrors.NewInvalidSectionError(string(entry.Section))
	}
	if entry.Quantity < 0 {
		return apperrors.NewInvalidQuantityError(entry.Quantity, "must not be negative")
	}
	return nil
}

func toRecord(e domain.MealEntry) database.MealRecord {
	return database.MealRecord{
		ID:            e.ID,
		Date:          utils.Day(e.Date),
		Section:       string(e.Section),
		Label:         e.Label,
		Calories:      e.Calories,
		Protein:       e.Nutrients.Protein,
		Fat:           e.Nutrients.Fat,
		Carbohydrates: e.Nutrients.Carbohydrates,
		Quantity:      e.Quantity,
	}
}

func toEntry(r database.MealRecord) domain.MealEntry {
	return domain.MealEntry{
		ID:       r.ID,
		Section:  domain.Section(r.Section),
		Label:    r.Label,
		Calories: r.Calories,
		Nutrients: domain.Nutrients{
			Protein:       r.Protein,
			Fat:           r.Fat,
			Carbohydrates: r.Carbohydrates,
		},
		Quantity: r.Quantity,
		Date:     utils.Day(r.Date),
	}
}

func toEntries(records []database.MealRecord) []domain.MealEntry {
	out := make([]domain.MealEntry, 0, len(records))
	for _, r := range records {
		out = append(out, toEntry(r))
	}
	return out
}
