package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRateLimitExhaustsBurst(t *testing.T) {
	e := echo.New()
	e.Use(RateLimit(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 3}))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	do := func() int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 3; i++ {
		if code := do(); code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, code)
		}
	}
	if code := do(); code != http.StatusTooManyRequests {
		t.Errorf("over burst: status = %d, want 429", code)
	}
}

func TestRateLimitKeyedPerClient(t *testing.T) {
	e := echo.New()
	e.Use(RateLimit(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1}))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := do("10.0.0.1:1"); code != http.StatusOK {
		t.Fatalf("first client: %d", code)
	}
	if code := do("10.0.0.1:1"); code != http.StatusTooManyRequests {
		t.Fatalf("first client second call: %d", code)
	}
	// a different client has its own bucket
	if code := do("10.0.0.2:1"); code != http.StatusOK {
		t.Errorf("second client: %d", code)
	}
}
