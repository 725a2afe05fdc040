package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/meal-ledger/internal/database"
	"github.com/vladimiradmaev/meal-ledger/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-ledger/internal/errors"
	"gorm.io/gorm"
)

// AccountRepository handles front-end user accounts
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// RegisterAccount gets an existing account or creates one with a fresh
// ledger user id. The username is refreshed on every call.
func (r *AccountRepository) RegisterAccount(ctx context.Context, telegramID int64, username string) (*domain.Account, error) {
	var account database.Account
	result := r.db.WithContext(ctx).
		Where(database.Account{TelegramID: telegramID}).
		Attrs(database.Account{UserID: uuid.New().String()}).
		Assign(database.Account{Username: username}).
		FirstOrCreate(&account)
	if result.Error != nil {
		return nil, apperrors.Wrap(result.Error, apperrors.ErrorTypeTransport, apperrors.CodeTransport, "failed to register account")
	}

	return toAccount(account), nil
}

func toAccount(a database.Account) *domain.Account {
	return &domain.Account{UserID: a.UserID, CreatedAt: a.CreatedAt}
}
