// Package foodsearch queries the Edamam food database and pages its results.
package foodsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vladimiradmaev/meal-ledger/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-ledger/internal/errors"
	"github.com/vladimiradmaev/meal-ledger/internal/logger"
)

const (
	parserPath     = "/api/food-database/v2/parser"
	requestTimeout = 10 * time.Second
	maxBodySize    = 4 << 20
)

// EdamamClient searches the Edamam food-database parser endpoint
type EdamamClient struct {
	baseURL string
	appID   string
	appKey  string
	client  *http.Client
}

// NewEdamamClient creates a client. baseURL is normally https://api.edamam.com.
func NewEdamamClient(baseURL, appID, appKey string) *EdamamClient {
	return &EdamamClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		appID:   appID,
		appKey:  appKey,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

type parserResponse struct {
	Hints []struct {
		Food struct {
			FoodID    string `json:"foodId"`
			Label     string `json:"label"`
			Brand     string `json:"brand"`
			Category  string `json:"category"`
			Nutrients struct {
				Calories *float64 `json:"ENERC_KCAL"`
				Protein  *float64 `json:"PROCNT"`
				Fat      *float64 `json:"FAT"`
				Carbs    *float64 `json:"CHOCDF"`
			} `json:"nutrients"`
		} `json:"food"`
		Measures []struct {
			Label  string  `json:"label"`
			Weight float64 `json:"weight"`
		} `json:"measures"`
	} `json:"hints"`
}

// Search returns candidates for term. A blank term fails with EmptyQuery
// before any request; an empty hint list fails with NoMatches.
func (c *EdamamClient) Search(ctx context.Context, term string) ([]domain.FoodCandidate, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperrors.NewEmptyQueryError()
	}

	q := url.Values{}
	q.Set("ingr", term)
	q.Set("app_id", c.appID)
	q.Set("app_key", c.appKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+parserPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, apperrors.NewTransportError(err, "food search")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Warn("Food search request failed", "term", term, "error", err)
		return nil, apperrors.NewTransportError(err, "food search")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, apperrors.NewTransportError(err, "food search")
	}
	if resp.StatusCode != http.StatusOK {
		logger.Warn("Food search returned error status", "term", term, "status", resp.StatusCode)
		return nil, apperrors.NewTransportError(
			fmt.Errorf("edamam parser API error %d: %s", resp.StatusCode, truncate(string(body), 200)),
			"food search",
		).WithContext("status", resp.StatusCode)
	}

	var pr parserResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, apperrors.NewTransportError(fmt.Errorf("failed to parse Edamam parser JSON: %w", err), "food search")
	}
	if len(pr.Hints) == 0 {
		return nil, apperrors.NewNoMatchesError(term)
	}

	results := make([]domain.FoodCandidate, 0, len(pr.Hints))
	for _, h := range pr.Hints {
		cand := domain.FoodCandidate{
			FoodID:             h.Food.FoodID,
			Label:              h.Food.Label,
			Brand:              h.Food.Brand,
			Category:           h.Food.Category,
			CaloriesPerServing: orZero(h.Food.Nutrients.Calories),
			Nutrients: domain.Nutrients{
				Protein:       orZero(h.Food.Nutrients.Protein),
				Fat:           orZero(h.Food.Nutrients.Fat),
				Carbohydrates: orZero(h.Food.Nutrients.Carbs),
			},
		}
		if len(h.Measures) > 0 {
			cand.ServingLabel = h.Measures[0].Label
			cand.ServingWeight = h.Measures[0].Weight
		}
		results = append(results, cand)
	}
	return results, nil
}

func orZero(v *float64) float64 {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
