package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vladimiradmaev/protein-tracker/internal/domain"
)

// slidingWindowScript keeps one sorted set per caller scored by call time in ms.
// Returns {allowed, retry_after_ms}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)

local count = redis.call('ZCARD', key)
if count >= limit then
	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	return {0, tonumber(oldest[2]) + window - now}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, 0}
`)

const keyPrefix = "ratelimit:suggestion:"

// RedisSlidingWindow shares the sliding window across processes.
// Keys expire one window after the caller's last admitted call.
type RedisSlidingWindow struct {
	client redis.Scripter
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRedisSlidingWindow(client redis.Scripter, limit int, window time.Duration) *RedisSlidingWindow {
	return &RedisSlidingWindow{
		client: client,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// WithClock replaces the time source, for tests
func (r *RedisSlidingWindow) WithClock(now func() time.Time) *RedisSlidingWindow {
	r.now = now
	return r
}

func (r *RedisSlidingWindow) Allow(ctx context.Context, key string) (domain.Decision, error) {
	nowMs := r.now().UnixMilli()
	res, err := slidingWindowScript.Run(ctx, r.client,
		[]string{keyPrefix + key},
		nowMs, r.window.Milliseconds(), r.limit, fmt.Sprintf("%d-%s", nowMs, uuid.NewString()),
	).Int64Slice()
	if err != nil {
		return domain.Decision{}, fmt.Errorf("rate limit check failed: %w", err)
	}
	if len(res) != 2 {
		return domain.Decision{}, fmt.Errorf("rate limit check failed: unexpected reply %v", res)
	}

	return domain.Decision{
		Allowed:    res[0] == 1,
		RetryAfter: time.Duration(res[1]) * time.Millisecond,
	}, nil
}
