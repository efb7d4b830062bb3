package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, rps float64, burst int) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(RateLimitConfig{RequestsPerSecond: rps, Burst: burst, Cleanup: time.Hour})
	t.Cleanup(rl.Stop)
	return rl
}

// ============================================================================
// RateLimiter Tests
// ============================================================================

func TestNewRateLimiter_Defaults(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(RateLimitConfig{})
	defer rl.Stop()

	if rl.rps != 10 || rl.burst != 20 {
		t.Errorf("expected defaults 10/20, got %v/%d", rl.rps, rl.burst)
	}
	if rl.idle != 10*time.Minute || rl.cleanup != 5*time.Minute {
		t.Errorf("unexpected idle/cleanup %v/%v", rl.idle, rl.cleanup)
	}
}

func TestAllow_BurstThenDenied(t *testing.T) {
	t.Parallel()

	rl := newTestLimiter(t, 0.01, 3)

	for i := 0; i < 3; i++ {
		allowed, remaining, _ := rl.Allow("client-a")
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if remaining != 2-i {
			t.Errorf("request %d: expected remaining %d, got %d", i+1, 2-i, remaining)
		}
	}

	allowed, _, retryAfter := rl.Allow("client-a")
	if allowed {
		t.Fatal("fourth request should be denied")
	}
	if retryAfter <= 0 {
		t.Errorf("expected positive retry-after, got %v", retryAfter)
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	rl := newTestLimiter(t, 0.01, 1)

	if ok, _, _ := rl.Allow("a"); !ok {
		t.Fatal("a should be allowed")
	}
	if ok, _, _ := rl.Allow("b"); !ok {
		t.Fatal("b should be allowed")
	}
	if ok, _, _ := rl.Allow("a"); ok {
		t.Error("a should now be limited")
	}
	if rl.Len() != 2 {
		t.Errorf("expected 2 tracked keys, got %d", rl.Len())
	}
}

func TestAllow_DeniedRequestDoesNotConsume(t *testing.T) {
	t.Parallel()

	rl := newTestLimiter(t, 1, 1)
	base := time.Now()
	rl.now = func() time.Time { return base }

	rl.Allow("k")
	for i := 0; i < 5; i++ {
		if ok, _, _ := rl.Allow("k"); ok {
			t.Fatal("expected denial while bucket is empty")
		}
	}

	rl.now = func() time.Time { return base.Add(1100 * time.Millisecond) }
	if ok, _, _ := rl.Allow("k"); !ok {
		t.Error("expected a token after one second despite earlier denials")
	}
}

func TestCleanupIdle_RemovesStaleKeys(t *testing.T) {
	t.Parallel()

	rl := newTestLimiter(t, 10, 10)
	base := time.Now()
	rl.now = func() time.Time { return base }

	rl.Allow("old")
	rl.now = func() time.Time { return base.Add(9 * time.Minute) }
	rl.Allow("fresh")

	rl.now = func() time.Time { return base.Add(11 * time.Minute) }
	rl.cleanupIdle()

	if rl.Len() != 1 {
		t.Fatalf("expected 1 key after cleanup, got %d", rl.Len())
	}
	if _, ok := rl.limiters["fresh"]; !ok {
		t.Error("fresh key should survive cleanup")
	}
}

func TestStop_IsIdempotent(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(RateLimitConfig{})
	rl.Stop()
	rl.Stop()
}

// ============================================================================
// RateLimit Middleware Tests
// ============================================================================

func TestRateLimit_SetsHeadersAndRejects(t *testing.T) {
	t.Parallel()

	rl := newTestLimiter(t, 0.01, 1)
	handler := RateLimit(rl)(&captureHandler{})

	req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	req.RemoteAddr = "10.0.0.1:5555"

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", rr.Code)
	}
	if rr.Header().Get("X-RateLimit-Limit") != "1" {
		t.Errorf("expected limit header 1, got %q", rr.Header().Get("X-RateLimit-Limit"))
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestRateLimit_KeysByIPIgnoringPort(t *testing.T) {
	t.Parallel()

	rl := newTestLimiter(t, 0.01, 1)
	handler := RateLimit(rl)(&captureHandler{})

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.RemoteAddr = "10.0.0.2:1000"
	handler.ServeHTTP(httptest.NewRecorder(), first)

	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.RemoteAddr = "10.0.0.2:2000"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, second)

	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("expected same IP on another port to share a bucket, got %d", rr.Code)
	}
}

func TestRateLimit_PrefersUserID(t *testing.T) {
	t.Parallel()

	rl := newTestLimiter(t, 0.01, 1)
	handler := RateLimit(rl)(&captureHandler{})

	for _, user := range []string{"user-1", "user-2"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.3:1000"
		req = req.WithContext(context.WithValue(req.Context(), UserIDKey, user))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", user, rr.Code)
		}
	}
}
