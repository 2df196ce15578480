package bot

import (
	"context"
	"fmt"
	"time"

	"lombada-bot/internal/config"
)

type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) (bool, error)
}

// RateLimiter is a fixed window counter per chat and action. A nil limiter
// or a zero limit allows everything.
type RateLimiter struct {
	counter Counter
	limit   int64
	window  time.Duration
}

func NewRateLimiter(counter Counter, cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		counter: counter,
		limit:   cfg.Limit,
		window:  cfg.Window,
	}
}

func (r *RateLimiter) Allow(ctx context.Context, chatID int64, action string) (bool, error) {
	if r == nil || r.limit <= 0 {
		return true, nil
	}

	key := fmt.Sprintf("ratelimit:%s:%d", action, chatID)
	count, err := r.counter.Incr(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to increment %s: %w", key, err)
	}

	if count == 1 {
		if _, err := r.counter.Expire(ctx, key, r.window); err != nil {
			return false, fmt.Errorf("failed to set expiry on %s: %w", key, err)
		}
	}

	return count <= r.limit, nil
}
