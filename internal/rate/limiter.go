package rate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "dojo:rl:login"

// Config holds limiter tuning parameters.
type Config struct {
	Prefix           string
	MaxAttempts      int
	Window           time.Duration
	ThrottleBySource bool
}

// Limiter counts failed sign-ins per email and, optionally, per source address.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a [Limiter] backed by the given Redis client. Zero-valued
// fields fall back to 5 attempts per 15 minutes.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	if cfg.Prefix == "" {
		cfg.Prefix = defaultPrefix
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// Check returns ErrRateLimited when email (or source) already used its budget.
func (l *Limiter) Check(ctx context.Context, email, source string) error {
	for _, key := range l.keys(email, source) {
		if err := l.checkCounter(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// Fail records one failed attempt. The attempt that crosses the budget
// returns ErrRateLimited.
func (l *Limiter) Fail(ctx context.Context, email, source string) error {
	for _, key := range l.keys(email, source) {
		count, err := l.incrementWithTTL(ctx, key)
		if err != nil {
			return err
		}
		if count > int64(l.config.MaxAttempts) {
			return ErrRateLimited
		}
	}
	return nil
}

// Reset clears the counters after a successful sign-in.
func (l *Limiter) Reset(ctx context.Context, email, source string) error {
	if err := l.redis.Del(ctx, l.keys(email, source)...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Attempts returns the failed-attempt count recorded for email. Missing keys
// read as zero.
func (l *Limiter) Attempts(ctx context.Context, email string) (int, error) {
	count, err := l.redis.Get(ctx, l.emailKey(email)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

func (l *Limiter) keys(email, source string) []string {
	keys := []string{l.emailKey(email)}
	if l.config.ThrottleBySource && source != "" {
		keys = append(keys, l.config.Prefix+":src:"+source)
	}
	return keys
}

func (l *Limiter) emailKey(email string) string {
	return l.config.Prefix + ":email:" + strings.ToLower(strings.TrimSpace(email))
}

func (l *Limiter) checkCounter(ctx context.Context, key string) error {
	count, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count >= int64(l.config.MaxAttempts) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed window: only the first hit arms the expiry.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Window).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}
	return count, nil
}
