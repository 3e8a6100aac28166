package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) RateLimiter {
	t.Helper()
	mr := miniredis.RunT(t)
	limiter, err := NewRedisRateLimiter("redis://"+mr.Addr(), limit, window)
	if err != nil {
		t.Fatalf("NewRedisRateLimiter() error = %v", err)
	}
	t.Cleanup(func() { limiter.Close() })
	return limiter
}

func TestRedisRateLimiter_AllowsUpToLimit(t *testing.T) {
	limiter := newTestLimiter(t, 5, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		allowed, err := limiter.Allow(ctx, "10.0.0.1")
		if err != nil {
			t.Fatalf("Allow() request %d error = %v", i+1, err)
		}
		if !allowed {
			t.Errorf("Allow() request %d = false, want true", i+1)
		}
	}

	allowed, err := limiter.Allow(ctx, "10.0.0.1")
	if err != nil {
		t.Fatalf("Allow() over limit error = %v", err)
	}
	if allowed {
		t.Error("Allow() request 6 = true, want false")
	}
}

func TestRedisRateLimiter_KeysAreIndependent(t *testing.T) {
	limiter := newTestLimiter(t, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		for _, key := range []string{"10.0.0.1", "10.0.0.2"} {
			allowed, err := limiter.Allow(ctx, key)
			if err != nil {
				t.Fatalf("Allow(%s) error = %v", key, err)
			}
			if !allowed {
				t.Errorf("Allow(%s) request %d = false, want true", key, i+1)
			}
		}
	}

	for _, key := range []string{"10.0.0.1", "10.0.0.2"} {
		allowed, err := limiter.Allow(ctx, key)
		if err != nil {
			t.Fatalf("Allow(%s) limit check error = %v", key, err)
		}
		if allowed {
			t.Errorf("Allow(%s) beyond limit = true, want false", key)
		}
	}
}

func TestRedisRateLimiter_WindowSlides(t *testing.T) {
	limiter := newTestLimiter(t, 2, 200*time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if allowed, err := limiter.Allow(ctx, "k"); err != nil || !allowed {
			t.Fatalf("Allow() initial request %d = %v, %v", i+1, allowed, err)
		}
	}
	if allowed, _ := limiter.Allow(ctx, "k"); allowed {
		t.Fatal("Allow() at limit = true, want false")
	}

	// Entry scores are client timestamps, so the window slides in real time.
	time.Sleep(250 * time.Millisecond)

	allowed, err := limiter.Allow(ctx, "k")
	if err != nil {
		t.Fatalf("Allow() after window error = %v", err)
	}
	if !allowed {
		t.Error("Allow() after window = false, want true")
	}
}

func TestNewRedisRateLimiter_InvalidURL(t *testing.T) {
	if _, err := NewRedisRateLimiter("not-a-valid-url", 100, time.Minute); err == nil {
		t.Error("NewRedisRateLimiter() with invalid URL should return error")
	}
}

func TestNewRedisRateLimiter_ConnectionFailed(t *testing.T) {
	if _, err := NewRedisRateLimiter("redis://localhost:1", 100, time.Minute); err == nil {
		t.Error("NewRedisRateLimiter() with unreachable Redis should return error")
	}
}

func TestNoOpRateLimiter(t *testing.T) {
	limiter := NoOpRateLimiter{}
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		allowed, err := limiter.Allow(ctx, "any")
		if err != nil {
			t.Errorf("Allow() error = %v, want nil", err)
		}
		if !allowed {
			t.Error("Allow() = false, want true")
		}
	}

	if err := limiter.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}
