package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultMaxFailures = 5
	DefaultLockout     = 15 * time.Minute
)

// LoginThrottle counts failed logins per email.
// Key format: login:fail:<sha256(email)>, so raw addresses never reach Redis.
type LoginThrottle struct {
	client      redis.Cmdable
	maxFailures int64
	lockout     time.Duration
}

// NewLoginThrottle wraps a Redis client. Non-positive limits fall back to the
// defaults.
func NewLoginThrottle(client redis.Cmdable, maxFailures int, lockout time.Duration) *LoginThrottle {
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}
	if lockout <= 0 {
		lockout = DefaultLockout
	}
	return &LoginThrottle{client: client, maxFailures: int64(maxFailures), lockout: lockout}
}

// Allow reports whether another attempt is permitted for email.
func (t *LoginThrottle) Allow(ctx context.Context, email string) (bool, error) {
	v, err := t.client.Get(ctx, Key(email)).Result()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("throttle get: %w", err)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return true, nil
	}
	return n < t.maxFailures, nil
}

// RecordFailure increments the counter. The window starts at the first
// failure and is not extended by later ones.
func (t *LoginThrottle) RecordFailure(ctx context.Context, email string) error {
	key := Key(email)
	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, t.lockout)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("throttle incr: %w", err)
	}
	return nil
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, email string) error {
	if err := t.client.Del(ctx, Key(email)).Err(); err != nil {
		return fmt.Errorf("throttle reset: %w", err)
	}
	return nil
}

// Key returns the Redis key used for email.
func Key(email string) string {
	sum := sha256.Sum256([]byte(email))
	return "login:fail:" + hex.EncodeToString(sum[:])
}
