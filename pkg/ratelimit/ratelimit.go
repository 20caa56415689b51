package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

// Limiter bounds the request rate per key within a time window.
type Limiter interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}

// counterStore is the subset of redis commands the fixed window needs.
type counterStore interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	PExpire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	PTTL(ctx context.Context, key string) *redis.DurationCmd
}

// RedisLimiter implements a fixed-window counter shared across instances.
type RedisLimiter struct {
	client counterStore
	prefix string
	now    func() time.Time
}

// NewRedisLimiter constructs a limiter storing counters under prefix.
func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	return newRedisLimiter(client, prefix)
}

func newRedisLimiter(client counterStore, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisLimiter{client: client, prefix: prefix, now: time.Now}
}

// Check increments the counter for key and reports whether the request fits.
func (l *RedisLimiter) Check(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	redisKey := fmt.Sprintf("%s:%s", l.prefix, key)
	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return Result{}, fmt.Errorf("redis incr %s: %w", redisKey, err)
	}
	if count == 1 {
		if err := l.client.PExpire(ctx, redisKey, window).Err(); err != nil {
			return Result{}, fmt.Errorf("redis pexpire %s: %w", redisKey, err)
		}
	}
	ttl, err := l.client.PTTL(ctx, redisKey).Result()
	if err != nil {
		return Result{}, fmt.Errorf("redis pttl %s: %w", redisKey, err)
	}
	if ttl < 0 {
		// counter lost its expiry; restart the window
		if err := l.client.PExpire(ctx, redisKey, window).Err(); err != nil {
			return Result{}, fmt.Errorf("redis pexpire %s: %w", redisKey, err)
		}
		ttl = window
	}
	return buildResult(int(count), limit, l.now().Add(ttl)), nil
}

func buildResult(count, limit int, resetAt time.Time) Result {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: count <= limit, Remaining: remaining, ResetAt: resetAt.UTC()}
}
