package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrementIfBelow runs atomically on the server. The key expires one window
// after its first increment.
var incrementIfBelow = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= tonumber(ARGV[1]) then
	return 0
end
current = redis.call('INCR', KEYS[1])
if current == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return 1
`)

// RedisLimiter shares counters across instances and restarts.
type RedisLimiter struct {
	client   *redis.Client
	prefix   string
	duration time.Duration
}

func NewRedisLimiter(client *redis.Client, prefix string, duration time.Duration) *RedisLimiter {
	if duration <= 0 {
		duration = DefaultWindowDuration
	}
	return &RedisLimiter{
		client:   client,
		prefix:   strings.TrimRight(strings.TrimSpace(prefix), ":"),
		duration: duration,
	}
}

// NewRedisClient parses a redis:// URL and applies the pool settings used by
// the service.
func NewRedisClient(rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.PoolSize = 100
	opts.MinIdleConns = 20
	opts.MaxRetries = 3
	opts.PoolTimeout = 4 * time.Second
	return redis.NewClient(opts), nil
}

func (l *RedisLimiter) key(subjectID string, window Window) string {
	if l.prefix == "" {
		return SubjectKey(subjectID, window)
	}
	return l.prefix + ":" + SubjectKey(subjectID, window)
}

func (l *RedisLimiter) Admit(ctx context.Context, subjectID string, window Window, limit int) (bool, error) {
	if limit <= 0 {
		return false, ErrInvalidLimit
	}
	admitted, err := incrementIfBelow.Run(ctx, l.client, []string{l.key(subjectID, window)}, limit, l.duration.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("ratelimit: redis admit: %w", err)
	}
	return admitted == 1, nil
}

func (l *RedisLimiter) Reset(ctx context.Context, subjectID string, window Window) error {
	if err := l.client.Del(ctx, l.key(subjectID, window)).Err(); err != nil {
		return fmt.Errorf("ratelimit: redis reset: %w", err)
	}
	return nil
}

func (l *RedisLimiter) RetryAfter(ctx context.Context, subjectID string, window Window) (time.Duration, error) {
	ttl, err := l.client.PTTL(ctx, l.key(subjectID, window)).Result()
	if err != nil {
		return 0, fmt.Errorf("ratelimit: redis ttl: %w", err)
	}
	// -2 missing key, -1 no expiry
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

// Ping reports whether the shared store is reachable.
func (l *RedisLimiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

var (
	_ Limiter       = (*RedisLimiter)(nil)
	_ RetryReporter = (*RedisLimiter)(nil)
)
