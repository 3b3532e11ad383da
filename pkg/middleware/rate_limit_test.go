package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tavola/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
}

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute, RemoteAddrExtractor, testLogger())
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("request past the limit should be blocked")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("a different key must have its own counter")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, RemoteAddrExtractor, testLogger())
	defer rl.Stop()

	current := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return current }

	if !rl.Allow("10.0.0.1") {
		t.Fatal("first request should be allowed")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("second request in the window should be blocked")
	}

	current = current.Add(61 * time.Second)
	if !rl.Allow("10.0.0.1") {
		t.Error("request after the window should be allowed again")
	}
}

func TestRateLimiterEmptyKeyNeverLimited(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, RemoteAddrExtractor, testLogger())
	defer rl.Stop()

	for i := 0; i < 10; i++ {
		if !rl.Allow("") {
			t.Fatal("empty key must never be limited")
		}
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, RemoteAddrExtractor, testLogger())
	defer rl.Stop()

	handler := RateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	request := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/availability", nil)
		req.RemoteAddr = "192.0.2.7:51234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := request(); code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", code)
	}
	if code := request(); code != http.StatusTooManyRequests {
		t.Fatalf("second request should be limited, got %d", code)
	}
}

func TestRemoteAddrExtractor(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		want       string
	}{
		{name: "ipv4 with port", remoteAddr: "192.0.2.7:51234", want: "192.0.2.7"},
		{name: "ipv6 with port", remoteAddr: "[2001:db8::1]:443", want: "2001:db8::1"},
		{name: "unparsable passes through", remoteAddr: "bogus", want: "bogus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if got := RemoteAddrExtractor(req); got != tt.want {
				t.Errorf("RemoteAddrExtractor(%q) = %q, want %q", tt.remoteAddr, got, tt.want)
			}
		})
	}
}
