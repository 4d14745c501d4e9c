package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/autopay/backend/internal/api/httpx"
)

type stubLimiter struct {
	allow bool
}

func (s stubLimiter) Allow(context.Context, string) bool { return s.allow }

func TestMemoryLimiter_ExhaustsBurst(t *testing.T) {
	l := NewMemoryLimiter(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !l.Allow(ctx, "client") {
			t.Fatalf("request %d: expected allow within burst", i+1)
		}
	}
	if l.Allow(ctx, "client") {
		t.Fatalf("expected deny once the burst is spent")
	}
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	l := NewMemoryLimiter(1)
	ctx := context.Background()

	if !l.Allow(ctx, "a") {
		t.Fatalf("expected first request for a to pass")
	}
	if l.Allow(ctx, "a") {
		t.Fatalf("expected a to be limited")
	}
	if !l.Allow(ctx, "b") {
		t.Fatalf("expected b to have its own bucket")
	}
}

func TestMemoryLimiter_RefillsOverTime(t *testing.T) {
	l := NewMemoryLimiter(1000)
	ctx := context.Background()

	denied := false
	for i := 0; i < 5000; i++ {
		if !l.Allow(ctx, "client") {
			denied = true
			break
		}
	}
	if !denied {
		t.Fatalf("expected the bucket to run dry")
	}

	time.Sleep(10 * time.Millisecond)
	if !l.Allow(ctx, "client") {
		t.Fatalf("expected tokens back after waiting")
	}
}

func TestRateLimit_DenyWrites429(t *testing.T) {
	h := RateLimit(stubLimiter{allow: false})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run when limited")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	var body httpx.APIError
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != "rate_limited" {
		t.Fatalf("expected code rate_limited, got %q", body.Code)
	}
}

func TestRateLimit_AllowPassesThrough(t *testing.T) {
	called := false
	h := RateLimit(stubLimiter{allow: true})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Fatalf("expected handler to run")
	}
}

func TestRateLimit_NilLimiterDisables(t *testing.T) {
	called := false
	h := RateLimit(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Fatalf("expected passthrough with no limiter")
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "9.9.9.9:4321"
	if got := clientIP(r); got != "9.9.9.9" {
		t.Fatalf("expected remote addr host, got %q", got)
	}

	r.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")
	if got := clientIP(r); got != "1.2.3.4" {
		t.Fatalf("expected first forwarded hop, got %q", got)
	}
}
