package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"corpdata-commerce/internal/infra/redis"
)

func TestRateLimitGuardRejectsOverLimit(t *testing.T) {
	limiter := redis.NewRateLimiter(&fakeLimiterClient{})
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), RateLimit(limiter, 2, time.Minute, newLogger()))

	for i := 0; i < 2; i++ {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
		r.RemoteAddr = "10.0.0.1:52000"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, w.Code)
		}
	}

	r := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	r.RemoteAddr = "10.0.0.1:52000"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", w.Code)
	}

	// A different client is unaffected.
	r = httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	r.RemoteAddr = "10.0.0.2:52000"
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", w.Code)
	}
}

type erroringLimiterClient struct{ fakeLimiterClient }

func (e *erroringLimiterClient) Incr(ctx context.Context, key string) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestRateLimitGuardFailsOpen(t *testing.T) {
	limiter := redis.NewRateLimiter(&erroringLimiterClient{})
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), RateLimit(limiter, 1, time.Minute, newLogger()))

	for i := 0; i < 3; i++ {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
		r.RemoteAddr = "10.0.0.1:52000"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Errorf("request %d status = %d; limiter outage must fail open", i+1, w.Code)
		}
	}
}

func TestRecoverGuardReturns500(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), Recover(newLogger()))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
