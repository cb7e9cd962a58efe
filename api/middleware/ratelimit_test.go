package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/sumukeio/niche-miner/config"
)

func limitedRouter(ctx context.Context, cfg config.RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	e.Use(RateLimit(ctx, cfg))
	e.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return e
}

func get(t *testing.T, e *gin.Engine) int {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "198.51.100.7:4242"
	e.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimit_BurstThenRejects(t *testing.T) {
	e := limitedRouter(context.Background(), config.RateLimitConfig{
		RequestsPerSecond: 0.001, // no meaningful refill within the test
		Burst:             2,
	})

	for i := 0; i < 2; i++ {
		if code := get(t, e); code != http.StatusOK {
			t.Fatalf("request %d = %d, want 200", i+1, code)
		}
	}
	if code := get(t, e); code != http.StatusTooManyRequests {
		t.Errorf("request over burst = %d, want 429", code)
	}
}

func TestRateLimit_ServesAfterContextCancel(t *testing.T) {
	// Canceling the lifecycle context stops the eviction goroutine but
	// must not break in-flight request handling.
	ctx, cancel := context.WithCancel(context.Background())
	e := limitedRouter(ctx, config.RateLimitConfig{RequestsPerSecond: 10, Burst: 5})

	cancel()
	if code := get(t, e); code != http.StatusOK {
		t.Errorf("request after cancel = %d, want 200", code)
	}
}
