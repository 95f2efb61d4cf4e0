package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "turnlimit:"

// RateLimiter throttles planner turns per session key using a fixed
// one-minute Redis window. It protects the completion provider from a user
// double-submitting or spamming the bot.
type RateLimiter struct {
	client         *Client
	turnsPerMinute int
	burst          int
}

// NewRateLimiter creates a new turn rate limiter
func NewRateLimiter(client *Client, turnsPerMinute, burst int) *RateLimiter {
	return &RateLimiter{
		client:         client,
		turnsPerMinute: turnsPerMinute,
		burst:          burst,
	}
}

// Allow checks whether a turn for key should be processed.
// Returns (allowed, remaining, resetTime, error).
func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	fullKey := fmt.Sprintf("%s%s", rateLimitPrefix, key)
	windowEnd := time.Now().Truncate(time.Minute).Add(time.Minute)

	pipe := r.client.rdb.Pipeline()
	incrCmd := pipe.Incr(ctx, fullKey)
	pipe.ExpireNX(ctx, fullKey, time.Minute)

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return false, 0, time.Time{}, fmt.Errorf("failed to execute rate limit check: %w", err)
	}

	count := incrCmd.Val()
	limit := int64(r.turnsPerMinute + r.burst)
	remaining := int(limit - count)
	if remaining < 0 {
		remaining = 0
	}

	return count <= limit, remaining, windowEnd, nil
}

// Reset clears the counter for a key
func (r *RateLimiter) Reset(ctx context.Context, key string) error {
	return r.client.rdb.Del(ctx, rateLimitPrefix+key).Err()
}
