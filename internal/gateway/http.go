// Package gateway talks to the remote meal store over its REST API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/meal-ledger/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-ledger/internal/errors"
	"github.com/vladimiradmaev/meal-ledger/internal/logger"
	"github.com/vladimiradmaev/meal-ledger/internal/utils"
)

const (
	mealsPath    = "/api/meal/get-meals/"
	logMealPath  = "/api/meal/log-meal/"
	updatePath   = "/api/meal/update-meal/"
	allMealsPath = "/api/meal/get-all-meals/"
	maxBodySize  = 4 << 20

	// RequestIDHeader carries a per-call id for correlating store logs
	RequestIDHeader = "X-Request-ID"
)

// HTTPGateway implements domain.SyncGateway against the meal store REST API
type HTTPGateway struct {
	baseURL string
	creds   domain.CredentialSource
	client  *http.Client
}

// NewHTTPGateway creates a client for the meal store API at baseURL
func NewHTTPGateway(baseURL string, creds domain.CredentialSource, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchMeals gets the entries of userID on date
func (g *HTTPGateway) FetchMeals(ctx context.Context, userID string, date time.Time) ([]domain.MealEntry, error) {
	q := url.Values{}
	q.Set("date", utils.FormatDate(date))

	var env Envelope[[]MealDTO]
	if err := g.do(ctx, http.MethodGet, mealsPath+url.PathEscape(userID)+"?"+q.Encode(), nil, &env, "fetch meals"); err != nil {
		return nil, err
	}
	entries, err := ToEntries(env.Data)
	if err != nil {
		return nil, apperrors.NewTransportError(err, "fetch meals")
	}
	return entries, nil
}

// CreateMeal logs entry for userID on date and returns the stored entry
func (g *HTTPGateway) CreateMeal(ctx context.Context, userID string, date time.Time, entry domain.MealEntry) (*domain.MealEntry, error) {
	q := url.Values{}
	q.Set("date", utils.FormatDate(date))

	entry.Date = utils.Day(date)
	var env Envelope[MealDTO]
	if err := g.do(ctx, http.MethodPost, logMealPath+url.PathEscape(userID)+"?"+q.Encode(), FromEntry(entry), &env, "create meal"); err != nil {
		return nil, err
	}
	return created(env.Data, entry)
}

// UpdateMeal replaces the stored entry entryID with entry
func (g *HTTPGateway) UpdateMeal(ctx context.Context, entryID string, entry domain.MealEntry) (*domain.MealEntry, error) {
	entry.ID = entryID
	var env Envelope[MealDTO]
	if err := g.do(ctx, http.MethodPut, updatePath+url.PathEscape(entryID), FromEntry(entry), &env, "update meal"); err != nil {
		return nil, err
	}
	return created(env.Data, entry)
}

// FetchAllMeals gets every entry of userID
func (g *HTTPGateway) FetchAllMeals(ctx context.Context, userID string) ([]domain.MealEntry, error) {
	var env Envelope[[]MealDTO]
	if err := g.do(ctx, http.MethodGet, allMealsPath+url.PathEscape(userID), nil, &env, "fetch all meals"); err != nil {
		return nil, err
	}
	entries, err := ToEntries(env.Data)
	if err != nil {
		return nil, apperrors.NewTransportError(err, "fetch all meals")
	}
	return entries, nil
}

// created prefers the store's echo of the entry, falling back to what was
// sent when the store replies without a body.
func created(dto MealDTO, sent domain.MealEntry) (*domain.MealEntry, error) {
	if dto.ID == "" && dto.Label == "" {
		return &sent, nil
	}
	e, err := dto.ToEntry()
	if err != nil {
		return nil, apperrors.NewTransportError(err, "decode meal")
	}
	return &e, nil
}

func (g *HTTPGateway) do(ctx context.Context, method, path string, in, out interface{}, operation string) error {
	token, err := g.creds.Token(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return apperrors.NewInternalError(fmt.Errorf("failed to encode request: %w", err))
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return apperrors.NewTransportError(err, operation)
	}
	requestID := uuid.New().String()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		logger.Warn("Meal store request failed", "operation", operation, "request_id", requestID, "error", err)
		return apperrors.NewTransportError(err, operation).WithContext("request_id", requestID)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return apperrors.NewTransportError(err, operation)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		logger.Warn("Meal store rejected credentials", "operation", operation, "status", resp.StatusCode, "request_id", requestID)
		return apperrors.NewUnauthenticatedError(messageOf(raw, "Meal store rejected the credential")).
			WithContext("status", resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound && method == http.MethodPut:
		return apperrors.NewEntryNotFoundError(strings.TrimPrefix(path, updatePath))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		logger.Warn("Meal store returned error status", "operation", operation, "status", resp.StatusCode, "request_id", requestID)
		return apperrors.NewTransportError(
			fmt.Errorf("meal store error %d: %s", resp.StatusCode, messageOf(raw, http.StatusText(resp.StatusCode))),
			operation,
		).WithContext("status", resp.StatusCode).WithContext("request_id", requestID)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.NewTransportError(fmt.Errorf("failed to parse meal store response: %w", err), operation)
	}
	return nil
}

func messageOf(raw []byte, fallback string) string {
	var env Envelope[json.RawMessage]
	if err := json.Unmarshal(raw, &env); err == nil && env.Message != "" {
		return env.Message
	}
	return fallback
}
