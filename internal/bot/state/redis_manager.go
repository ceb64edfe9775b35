package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	stateTTL    = 24 * time.Hour
	timezoneTTL = 365 * 24 * time.Hour
	opTimeout   = 3 * time.Second
)

// RedisManager manages user states using Redis so several bot replicas share them
type RedisManager struct {
	client redis.UniversalClient
	logger *slog.Logger
}

// NewRedisManager creates a new Redis-based state manager
func NewRedisManager(client redis.UniversalClient, logger *slog.Logger) *RedisManager {
	return &RedisManager{
		client: client,
		logger: logger.With("component", "redis_state"),
	}
}

func stateKey(userID int64) string    { return fmt.Sprintf("user:%d:state", userID) }
func tempKey(userID int64) string     { return fmt.Sprintf("user:%d:temp", userID) }
func timezoneKey(userID int64) string { return fmt.Sprintf("user:%d:tz", userID) }

func (m *RedisManager) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}

func (m *RedisManager) warn(op string, userID int64, err error) {
	m.logger.Warn("Redis state operation failed", "op", op, "user_id", userID, "error", err)
}

// SetUserState sets the state for a user with TTL
func (m *RedisManager) SetUserState(userID int64, state string) {
	ctx, cancel := m.ctx()
	defer cancel()
	if err := m.client.Set(ctx, stateKey(userID), state, stateTTL).Err(); err != nil {
		m.warn("set_state", userID, err)
	}
}

// GetUserState gets the state for a user
func (m *RedisManager) GetUserState(userID int64) string {
	ctx, cancel := m.ctx()
	defer cancel()
	result, err := m.client.Get(ctx, stateKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return None
	}
	if err != nil {
		m.warn("get_state", userID, err)
		return None
	}
	return result
}

// ClearUserState clears the state for a user
func (m *RedisManager) ClearUserState(userID int64) {
	ctx, cancel := m.ctx()
	defer cancel()
	if err := m.client.Del(ctx, stateKey(userID)).Err(); err != nil {
		m.warn("clear_state", userID, err)
	}
}

// SetTempData sets one field of the user's temp hash and refreshes its TTL
func (m *RedisManager) SetTempData(userID int64, key, value string) {
	ctx, cancel := m.ctx()
	defer cancel()
	pipe := m.client.TxPipeline()
	pipe.HSet(ctx, tempKey(userID), key, value)
	pipe.Expire(ctx, tempKey(userID), stateTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		m.warn("set_temp", userID, err)
	}
}

// GetTempData gets temporary data for a user
func (m *RedisManager) GetTempData(userID int64, key string) (string, bool) {
	ctx, cancel := m.ctx()
	defer cancel()
	value, err := m.client.HGet(ctx, tempKey(userID), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		m.warn("get_temp", userID, err)
		return "", false
	}
	return value, true
}

// DeleteTempData removes the given keys for a user
func (m *RedisManager) DeleteTempData(userID int64, keys ...string) {
	if len(keys) == 0 {
		return
	}
	ctx, cancel := m.ctx()
	defer cancel()
	if err := m.client.HDel(ctx, tempKey(userID), keys...).Err(); err != nil {
		m.warn("delete_temp", userID, err)
	}
}

// ClearTempData clears all temporary data for a user
func (m *RedisManager) ClearTempData(userID int64) {
	ctx, cancel := m.ctx()
	defer cancel()
	if err := m.client.Del(ctx, tempKey(userID)).Err(); err != nil {
		m.warn("clear_temp", userID, err)
	}
}

// SetTimezone remembers the user's IANA timezone
func (m *RedisManager) SetTimezone(userID int64, tz string) {
	ctx, cancel := m.ctx()
	defer cancel()
	if err := m.client.Set(ctx, timezoneKey(userID), tz, timezoneTTL).Err(); err != nil {
		m.warn("set_timezone", userID, err)
	}
}

// GetTimezone returns the user's timezone if one was set
func (m *RedisManager) GetTimezone(userID int64) (string, bool) {
	ctx, cancel := m.ctx()
	defer cancel()
	tz, err := m.client.Get(ctx, timezoneKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		m.warn("get_timezone", userID, err)
		return "", false
	}
	return tz, true
}
