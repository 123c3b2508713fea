package redis

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRateLimiterAllowsWithinLimit(t *testing.T) {
	fake := newFakeRedis()
	rl := NewRateLimiter(fake)
	ctx := context.Background()
	key := ClientRequestKey("10.0.0.1", "/api/v1/cart/quote")

	for i := 0; i < 5; i++ {
		ok, err := rl.Allow(ctx, key, 5, time.Minute)
		if err != nil {
			t.Fatalf("Allow #%d: %v", i+1, err)
		}
		if !ok {
			t.Fatalf("request %d rejected under the limit", i+1)
		}
	}

	ok, err := rl.Allow(ctx, key, 5, time.Minute)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok {
		t.Error("sixth request allowed past limit of 5")
	}
}

func TestRateLimiterWindowRollover(t *testing.T) {
	fake := newFakeRedis()
	rl := NewRateLimiter(fake)
	ctx := context.Background()
	key := ClientRequestKey("10.0.0.1", "/api/v1/orders")

	for i := 0; i < 3; i++ {
		if _, err := rl.Allow(ctx, key, 2, time.Minute); err != nil {
			t.Fatalf("Allow: %v", err)
		}
	}
	if ok, _ := rl.Allow(ctx, key, 2, time.Minute); ok {
		t.Fatal("over-limit request allowed before rollover")
	}

	fake.advance(61 * time.Second)
	ok, err := rl.Allow(ctx, key, 2, time.Minute)
	if err != nil {
		t.Fatalf("Allow after rollover: %v", err)
	}
	if !ok {
		t.Error("fresh window rejected the first request")
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	fake := newFakeRedis()
	rl := NewRateLimiter(fake)
	ctx := context.Background()

	keyA := ClientRequestKey("10.0.0.1", "/api/v1/orders")
	keyB := ClientRequestKey("10.0.0.2", "/api/v1/orders")

	if ok, _ := rl.Allow(ctx, keyA, 1, time.Minute); !ok {
		t.Fatal("first request on keyA rejected")
	}
	if ok, _ := rl.Allow(ctx, keyA, 1, time.Minute); ok {
		t.Fatal("second request on keyA allowed past limit")
	}
	if ok, _ := rl.Allow(ctx, keyB, 1, time.Minute); !ok {
		t.Error("keyB throttled by keyA's counter")
	}
}

func TestRateLimiterPropagatesErrors(t *testing.T) {
	fake := newFakeRedis()
	fake.err = errors.New("connection refused")
	rl := NewRateLimiter(fake)
	if _, err := rl.Allow(context.Background(), "k", 1, time.Minute); err == nil {
		t.Error("expected transport error")
	}
}
