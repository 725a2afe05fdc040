package state

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vladimiradmaev/meal-ledger/internal/logger"
)

// stateTTL expires dialogs of inactive users
const stateTTL = 24 * time.Hour

// RedisManager manages user states using Redis
type RedisManager struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisManager creates a Redis-based state manager on a connected client
func NewRedisManager(client *redis.Client) *RedisManager {
	return &RedisManager{client: client, timeout: 3 * time.Second}
}

func stateKey(userID int64) string { return fmt.Sprintf("user:%d:state", userID) }
func tempKey(userID int64) string  { return fmt.Sprintf("user:%d:temp", userID) }

func (m *RedisManager) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.timeout)
}

// SetUserState sets the state for a user with TTL
func (m *RedisManager) SetUserState(userID int64, state string) {
	ctx, cancel := m.ctx()
	defer cancel()
	if err := m.client.Set(ctx, stateKey(userID), state, stateTTL).Err(); err != nil {
		logger.Warn("Failed to save user state", "user_id", userID, "error", err)
	}
}

// GetUserState gets the state for a user, None when absent or on error
func (m *RedisManager) GetUserState(userID int64) string {
	ctx, cancel := m.ctx()
	defer cancel()
	val, err := m.client.Get(ctx, stateKey(userID)).Result()
	if err == redis.Nil {
		return None
	}
	if err != nil {
		logger.Warn("Failed to read user state", "user_id", userID, "error", err)
		return None
	}
	return val
}

// SetTempData sets temporary data for a user
func (m *RedisManager) SetTempData(userID int64, key, value string) {
	ctx, cancel := m.ctx()
	defer cancel()
	pipe := m.client.TxPipeline()
	pipe.HSet(ctx, tempKey(userID), key, value)
	pipe.Expire(ctx, tempKey(userID), stateTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("Failed to save temp data", "user_id", userID, "key", key, "error", err)
	}
}

// GetTempData gets temporary data for a user
func (m *RedisManager) GetTempData(userID int64, key string) (string, bool) {
	ctx, cancel := m.ctx()
	defer cancel()
	val, err := m.client.HGet(ctx, tempKey(userID), key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("Failed to read temp data", "user_id", userID, "key", key, "error", err)
		}
		return "", false
	}
	return val, true
}

// ClearTempData clears all temporary data for a user
func (m *RedisManager) ClearTempData(userID int64) {
	ctx, cancel := m.ctx()
	defer cancel()
	m.client.Del(ctx, tempKey(userID))
}
