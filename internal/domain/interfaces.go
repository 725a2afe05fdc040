package domain

import (
	"context"
	"time"
)

// SyncGateway is the remote meal store. It is the source of truth for
// every day's entries; the ledger only mirrors one date at a time.
type SyncGateway interface {
	FetchMeals(ctx context.Context, userID string, date time.Time) ([]MealEntry, error)
	CreateMeal(ctx context.Context, userID string, date time.Time, entry MealEntry) (*MealEntry, error)
	UpdateMeal(ctx context.Context, entryID string, entry MealEntry) (*MealEntry, error)
	FetchAllMeals(ctx context.Context, userID string) ([]MealEntry, error)
}

// FoodSearcher queries a food database by free-text term
type FoodSearcher interface {
	Search(ctx context.Context, term string) ([]FoodCandidate, error)
}

// CredentialSource supplies the bearer token for remote calls
type CredentialSource interface {
	Token(ctx context.Context) (string, error)
}

// AccountService resolves the ledger owner for a front-end user
type AccountService interface {
	RegisterAccount(ctx context.Context, telegramID int64, username string) (*Account, error)
}
