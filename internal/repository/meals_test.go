package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/vladimiradmaev/meal-ledger/internal/config"
	"github.com/vladimiradmaev/meal-ledger/internal/database"
	"github.com/vladimiradmaev/meal-ledger/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-ledger/internal/errors"
	"github.com/vladimiradmaev/meal-ledger/internal/utils"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := utils.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func TestCreateMeal_RejectsBeforeStorage(t *testing.T) {
	repo := NewMealRepository(nil)

	_, err := repo.CreateMeal(context.Background(), "u1", mustDate(t, "2024-03-01"),
		domain.MealEntry{Section: domain.Lunch, Label: "Soup", Quantity: -1})
	if !errors.Is(err, apperrors.ErrInvalidQuantity) {
		t.Fatalf("err = %v, want InvalidQuantity", err)
	}

	_, err = repo.CreateMeal(context.Background(), "u1", mustDate(t, "2024-03-01"),
		domain.MealEntry{Section: "Brunch", Label: "Soup", Quantity: 1})
	if !errors.Is(err, apperrors.ErrInvalidSection) {
		t.Fatalf("err = %v, want InvalidSection", err)
	}
}

func TestUpdateMeal_MalformedIDIsNotFound(t *testing.T) {
	repo := NewMealRepository(nil)
	_, err := repo.UpdateMeal(context.Background(), "not-a-uuid", domain.MealEntry{Section: domain.Lunch, Quantity: 1})
	if !errors.Is(err, apperrors.ErrEntryNotFound) {
		t.Fatalf("err = %v, want EntryNotFound", err)
	}
}

func TestRecordConversionKeepsDay(t *testing.T) {
	e := domain.MealEntry{
		ID: "id", Section: domain.Dinner, Label: "Rice", Calories: 200.5,
		Nutrients: domain.Nutrients{Protein: 4, Fat: 1, Carbohydrates: 44},
		Quantity:  1.5,
		Date:      time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC),
	}
	got := toEntry(toRecord(e))
	if !got.Date.Equal(mustDate(t, "2024-03-01")) {
		t.Fatalf("Date = %v, want 2024-03-01", got.Date)
	}
	got.Date = e.Date
	if got != e {
		t.Fatalf("entry = %+v, want %+v", got, e)
	}
}

// TestMealRepository_Postgres runs against a real database when
// MEAL_LEDGER_TEST_DB_HOST is set.
func TestMealRepository_Postgres(t *testing.T) {
	host := os.Getenv("MEAL_LEDGER_TEST_DB_HOST")
	if host == "" {
		t.Skip("MEAL_LEDGER_TEST_DB_HOST not set")
	}
	db, err := database.NewPostgresDB(config.DBConfig{
		Host:     host,
		Port:     envOr("MEAL_LEDGER_TEST_DB_PORT", "5432"),
		User:     envOr("MEAL_LEDGER_TEST_DB_USER", "postgres"),
		Password: envOr("MEAL_LEDGER_TEST_DB_PASSWORD", "postgres"),
		DBName:   envOr("MEAL_LEDGER_TEST_DB_NAME", "meal_ledger_test"),
	})
	if err != nil {
		t.Fatalf("NewPostgresDB: %v", err)
	}

	ctx := context.Background()
	repo := NewMealRepository(db)
	userID := "test-" + time.Now().Format("150405.000000")
	day := mustDate(t, "2024-03-01")
	t.Cleanup(func() { db.Where("user_id = ?", userID).Delete(&database.MealRecord{}) })

	first, err := repo.CreateMeal(ctx, userID, day, domain.MealEntry{Section: domain.Breakfast, Label: "Oats", Calories: 100, Quantity: 2})
	if err != nil {
		t.Fatalf("CreateMeal: %v", err)
	}
	if _, err := repo.CreateMeal(ctx, userID, day, domain.MealEntry{Section: domain.Lunch, Label: "Soup", Calories: 50, Quantity: 1}); err != nil {
		t.Fatalf("CreateMeal: %v", err)
	}

	meals, err := repo.FetchMeals(ctx, userID, day)
	if err != nil || len(meals) != 2 || meals[0].Label != "Oats" {
		t.Fatalf("FetchMeals = %+v, %v; want Oats then Soup", meals, err)
	}

	deleted := *first
	deleted.Quantity = 0
	if _, err := repo.UpdateMeal(ctx, first.ID, deleted); err != nil {
		t.Fatalf("UpdateMeal: %v", err)
	}
	meals, _ = repo.FetchMeals(ctx, userID, day)
	if len(meals) != 1 || meals[0].Label != "Soup" {
		t.Fatalf("after delete FetchMeals = %+v, want only Soup", meals)
	}

	owner, err := repo.Owner(ctx, first.ID)
	if err != nil || owner != userID {
		t.Fatalf("Owner = %q, %v; want %q", owner, err, userID)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
