package ratelimit

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newMiniredisLimiter(t *testing.T, duration time.Duration) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLimiter(client, "imagestudio:ratelimit", duration), mr
}

func TestRedisLimiterAdmit(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		limit  int
		window Window
	}{
		{name: "limit 1 daily", limit: 1, window: Daily},
		{name: "limit 3 daily", limit: 3, window: Daily},
		{name: "limit 5 monthly", limit: 5, window: Monthly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter, mr := newMiniredisLimiter(t, time.Hour)
			key := limiter.key("user-1", tt.window)

			for i := 1; i <= tt.limit; i++ {
				ok, err := limiter.Admit(ctx, "user-1", tt.window, tt.limit)
				if err != nil {
					t.Fatalf("request %d: unexpected error: %v", i, err)
				}
				if !ok {
					t.Fatalf("request %d should be admitted", i)
				}
			}
			ok, err := limiter.Admit(ctx, "user-1", tt.window, tt.limit)
			if err != nil || ok {
				t.Fatalf("request %d should be rejected, got %v %v", tt.limit+1, ok, err)
			}

			got, err := mr.Get(key)
			if err != nil {
				t.Fatalf("read counter: %v", err)
			}
			if want := strconv.Itoa(tt.limit); got != want {
				t.Fatalf("rejection should not change the counter, expected %s got %s", want, got)
			}

			mr.FastForward(time.Hour)
			if mr.Exists(key) {
				t.Fatal("counter should expire after the window")
			}
			ok, err = limiter.Admit(ctx, "user-1", tt.window, tt.limit)
			if err != nil || !ok {
				t.Fatalf("expected admission after window, got %v %v", ok, err)
			}
			if got, _ := mr.Get(key); got != "1" {
				t.Fatalf("expected fresh counter 1, got %s", got)
			}
		})
	}
}

func TestRedisLimiterTTLSetOnFirstIncrement(t *testing.T) {
	ctx := context.Background()
	limiter, mr := newMiniredisLimiter(t, time.Hour)
	key := limiter.key("user-1", Daily)

	if ok, _ := limiter.Admit(ctx, "user-1", Daily, 10); !ok {
		t.Fatal("expected admission")
	}
	if ttl := mr.TTL(key); ttl != time.Hour {
		t.Fatalf("expected ttl 1h after first increment, got %s", ttl)
	}

	mr.FastForward(10 * time.Minute)
	if ok, _ := limiter.Admit(ctx, "user-1", Daily, 10); !ok {
		t.Fatal("expected admission")
	}
	if ttl := mr.TTL(key); ttl != 50*time.Minute {
		t.Fatalf("later increments must keep the window, got ttl %s", ttl)
	}

	retry, err := limiter.RetryAfter(ctx, "user-1", Daily)
	if err != nil {
		t.Fatalf("retry after: %v", err)
	}
	if retry != 50*time.Minute {
		t.Fatalf("expected 50m retry, got %s", retry)
	}
	if retry, _ := limiter.RetryAfter(ctx, "user-2", Daily); retry != 0 {
		t.Fatalf("missing counter should report zero, got %s", retry)
	}
}

func TestRedisLimiterReset(t *testing.T) {
	ctx := context.Background()
	limiter, mr := newMiniredisLimiter(t, time.Hour)

	_, _ = limiter.Admit(ctx, "user-1", Daily, 1)
	_, _ = limiter.Admit(ctx, "user-1", Monthly, 1)
	if ok, _ := limiter.Admit(ctx, "user-1", Daily, 1); ok {
		t.Fatal("expected rejection at limit")
	}

	if err := limiter.Reset(ctx, "user-1", Daily); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if mr.Exists(limiter.key("user-1", Daily)) {
		t.Fatal("daily counter should be deleted")
	}
	if !mr.Exists(limiter.key("user-1", Monthly)) {
		t.Fatal("monthly counter should survive a daily reset")
	}
	if ok, _ := limiter.Admit(ctx, "user-1", Daily, 1); !ok {
		t.Fatal("expected admission after reset")
	}
	if err := limiter.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
