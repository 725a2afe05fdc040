package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vladimiradmaev/meal-ledger/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-ledger/internal/errors"
)

type stubAccounts struct{ created time.Time }

func (s stubAccounts) RegisterAccount(ctx context.Context, telegramID int64, username string) (*domain.Account, error) {
	return &domain.Account{UserID: "local-uuid", CreatedAt: s.created}, nil
}

func TestTokenOwner_OverridesUserID(t *testing.T) {
	created := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	tok := signed(t, jwt.MapClaims{"userId": "remote-user"})

	owner, err := NewTokenOwner(stubAccounts{created: created}, tok)
	if err != nil {
		t.Fatalf("NewTokenOwner: %v", err)
	}
	acc, err := owner.RegisterAccount(context.Background(), 7, "alice")
	if err != nil {
		t.Fatalf("RegisterAccount: %v", err)
	}
	if acc.UserID != "remote-user" || !acc.CreatedAt.Equal(created) {
		t.Fatalf("account = %+v, want remote-user created %v", acc, created)
	}
}

func TestSubjectOf_Opaque(t *testing.T) {
	if _, err := SubjectOf("opaque"); !errors.Is(err, apperrors.ErrUnauthenticated) {
		t.Fatalf("err = %v, want Unauthenticated", err)
	}
}
