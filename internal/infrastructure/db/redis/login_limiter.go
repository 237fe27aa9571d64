package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxAttempts = 5
	defaultWindow      = 15 * time.Minute
)

// counterClient is the subset of *redis.Client the limiter needs.
type counterClient interface {
	redis.Scripter
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// recordFailureScript increments the counter and sets the window in the
// same server-side step, so a counter never exists without a TTL. A key
// found without one (TTL < 0) is given the window as well.
var recordFailureScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// LoginLimiter counts failed logins per key in a fixed window.
// Key format: login_failures:<email>
type LoginLimiter struct {
	client      counterClient
	maxAttempts int
	window      time.Duration
}

// NewLoginLimiter wraps client. Non-positive limits fall back to defaults.
func NewLoginLimiter(client *redis.Client, maxAttempts int, window time.Duration) *LoginLimiter {
	return newLoginLimiter(client, maxAttempts, window)
}

func newLoginLimiter(client counterClient, maxAttempts int, window time.Duration) *LoginLimiter {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &LoginLimiter{client: client, maxAttempts: maxAttempts, window: window}
}

// Blocked reports whether key has reached the failure limit in the current window.
func (l *LoginLimiter) Blocked(ctx context.Context, key string) (bool, error) {
	n, err := l.client.Get(ctx, l.key(key)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("login limiter get: %w", err)
	}
	return n >= l.maxAttempts, nil
}

// RecordFailure increments the counter. The first failure opens the window.
func (l *LoginLimiter) RecordFailure(ctx context.Context, key string) error {
	err := recordFailureScript.Run(ctx, l.client, []string{l.key(key)}, l.window.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("login limiter record: %w", err)
	}
	return nil
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.key(key)).Err()
}

func (l *LoginLimiter) key(k string) string {
	return "login_failures:" + k
}
