package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vladimiradmaev/meal-ledger/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-ledger/internal/errors"
)

// SubjectOf reads the userId claim of a JWT without checking its signature.
// The store checks the signature; the front-end only needs to know whose
// ledger the token opens.
func SubjectOf(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(strings.TrimSpace(token), claims); err != nil {
		return "", apperrors.NewUnauthenticatedError("API token is not a JWT")
	}
	switch id := claims["userId"].(type) {
	case string:
		if id != "" {
			return id, nil
		}
	case float64:
		return fmt.Sprintf("%d", int64(id)), nil
	}
	return "", apperrors.NewUnauthenticatedError("API token has no userId claim")
}

// TokenOwner registers accounts through next but points every one of them
// at the ledger owned by the configured API token
type TokenOwner struct {
	next   domain.AccountService
	userID string
}

// NewTokenOwner creates an account service whose user id comes from token
func NewTokenOwner(next domain.AccountService, token string) (*TokenOwner, error) {
	userID, err := SubjectOf(token)
	if err != nil {
		return nil, err
	}
	return &TokenOwner{next: next, userID: userID}, nil
}

// RegisterAccount registers through next and replaces the user id with the token's
func (o *TokenOwner) RegisterAccount(ctx context.Context, telegramID int64, username string) (*domain.Account, error) {
	account, err := o.next.RegisterAccount(ctx, telegramID, username)
	if err != nil {
		return nil, err
	}
	owned := *account
	owned.UserID = o.userID
	return &owned, nil
}
