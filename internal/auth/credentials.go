// Package auth supplies and checks the bearer tokens used between the
// front-end and the meal store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/vladimiradmaev/meal-ledger/internal/errors"
)

// StaticToken is a CredentialSource backed by a configured token
type StaticToken struct {
	token string
	now   func() time.Time
}

// NewStaticToken returns a credential source that always hands out token
func NewStaticToken(token string) *StaticToken {
	return &StaticToken{token: strings.TrimSpace(token), now: time.Now}
}

// Token returns the configured token. A missing token, or a JWT whose exp
// claim has passed, is reported as Unauthenticated. Tokens that are not
// JWTs are returned as-is; the store decides whether they are valid.
func (s *StaticToken) Token(ctx context.Context) (string, error) {
	if s.token == "" {
		return "", apperrors.NewUnauthenticatedError("No API token configured")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.token, claims); err != nil {
		return s.token, nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return s.token, nil
	}
	if !exp.Time.After(s.now()) {
		return "", apperrors.NewUnauthenticatedError("API token expired").
			WithContext("expired_at", exp.Time.UTC().Format(time.RFC3339))
	}
	return s.token, nil
}

// Verifier validates HS256 bearer tokens issued for the store API
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier for tokens signed with secret
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify checks signature and expiry and returns the userId claim
func (v *Verifier) Verify(tokenString string) (string, error) {
	if len(v.secret) == 0 {
		return "", apperrors.NewInternalError(errors.New("JWT secret not configured"))
	}

	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return "", apperrors.NewUnauthenticatedError("Authorization header required")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", apperrors.NewUnauthenticatedError("Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", apperrors.NewUnauthenticatedError("Invalid claims")
	}

	switch id := claims["userId"].(type) {
	case string:
		if id != "" {
			return id, nil
		}
	case float64:
		return fmt.Sprintf("%d", int64(id)), nil
	}
	return "", apperrors.NewUnauthenticatedError("userId claim missing")
}
