package foodsearch

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vladimiradmaev/meal-ledger/internal/domain"
	"github.com/vladimiradmaev/meal-ledger/internal/logger"
)

// CachedSearcher memoizes successful searches in Redis. Failures, including
// NoMatches, are never cached, and Redis errors fall through to the wrapped
// searcher.
type CachedSearcher struct {
	next   domain.FoodSearcher
	client *redis.Client
	ttl    time.Duration
}

// NewCachedSearcher wraps next with a Redis cache
func NewCachedSearcher(next domain.FoodSearcher, client *redis.Client, ttl time.Duration) *CachedSearcher {
	return &CachedSearcher{next: next, client: client, ttl: ttl}
}

// CacheKey is the Redis key for a search term
func CacheKey(term string) string {
	return "foodsearch:" + strings.ToLower(strings.Join(strings.Fields(term), " "))
}

// Search serves term from cache when present, otherwise delegates
func (s *CachedSearcher) Search(ctx context.Context, term string) ([]domain.FoodCandidate, error) {
	if strings.TrimSpace(term) == "" {
		return s.next.Search(ctx, term)
	}

	key := CacheKey(term)
	raw, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []domain.FoodCandidate
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil && len(cached) > 0 {
			logger.Debug("Food search cache hit", "key", key, "results", len(cached))
			return cached, nil
		}
	case err != redis.Nil:
		logger.Warn("Food search cache read failed", "key", key, "error", err)
	}

	results, err := s.next.Search(ctx, term)
	if err != nil {
		return nil, err
	}

	if data, jsonErr := json.Marshal(results); jsonErr == nil {
		if setErr := s.client.Set(ctx, key, data, s.ttl).Err(); setErr != nil {
			logger.Warn("Food search cache write failed", "key", key, "error", setErr)
		}
	}
	return results, nil
}
