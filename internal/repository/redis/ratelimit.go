package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "ratelimit:"

// RateLimiter throttles message traffic per user with a fixed one-minute
// window in Redis. Every authenticated user gets their own counter, so
// one user flooding the pipeline cannot starve the others.
type RateLimiter struct {
	client            *Client
	requestsPerMinute int
	burst             int
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *Client, requestsPerMinute, burst int) *RateLimiter {
	return &RateLimiter{
		client:            client,
		requestsPerMinute: requestsPerMinute,
		burst:             burst,
	}
}

func (r *RateLimiter) key(userID uuid.UUID) string {
	return fmt.Sprintf("%s%s", rateLimitPrefix, userID.String())
}

// Allow counts the request against the user's current window and reports
// whether it fits. Returns (allowed, remaining, resetTime, error).
func (r *RateLimiter) Allow(ctx context.Context, userID uuid.UUID) (bool, int, time.Time, error) {
	now := time.Now()
	windowEnd := now.Truncate(time.Minute).Add(time.Minute)

	pipe := r.client.rdb.Pipeline()
	incrCmd := pipe.Incr(ctx, r.key(userID))
	pipe.ExpireNX(ctx, r.key(userID), time.Minute)

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return false, 0, time.Time{}, fmt.Errorf("failed to count request: %w", err)
	}

	count := incrCmd.Val()
	limit := int64(r.requestsPerMinute + r.burst)
	remaining := int(limit - count)
	if remaining < 0 {
		remaining = 0
	}

	return count <= limit, remaining, windowEnd, nil
}

// Reset clears the user's current window.
func (r *RateLimiter) Reset(ctx context.Context, userID uuid.UUID) error {
	return r.client.rdb.Del(ctx, r.key(userID)).Err()
}
