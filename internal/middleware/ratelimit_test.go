// AngelaMos | 2026
// ratelimit_test.go

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	return client
}

func TestRateLimiterFallsBackWhenRedisIsDown(t *testing.T) {
	var fallbacks atomic.Int32
	rl := NewRateLimiter(unreachableRedis(t), RateLimitConfig{
		Limit:      PerWindow(2, 2, time.Minute),
		KeyFunc:    KeyByAPIKey,
		OnFallback: func() { fallbacks.Add(1) },
	})

	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/api/generate", nil)
		req.Header.Set(APIKeyHeader, "qr_one")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, int32(3), fallbacks.Load())

	req := httptest.NewRequest(http.MethodPost, "/api/generate", nil)
	req.Header.Set(APIKeyHeader, "qr_two")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitExceededResponse(t *testing.T) {
	rl := NewRateLimiter(unreachableRedis(t), RateLimitConfig{Limit: PerWindow(1, 1, time.Minute)})
	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for range 2 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code == http.StatusTooManyRequests {
			assert.NotEmpty(t, rec.Header().Get("Retry-After"))
			assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
			return
		}
	}
	t.Fatal("expected the second request to be limited")
}

func TestKeyByAPIKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "ratelimit:ip:10.0.0.1", KeyByAPIKey(req))

	req.Header.Set(APIKeyHeader, "qr_secret")
	key := KeyByAPIKey(req)
	assert.True(t, strings.HasPrefix(key, "ratelimit:key:"))
	assert.NotContains(t, key, "qr_secret")
}

func TestKeyByIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	req.Header.Set("X-Forwarded-For", "1.1.1.1, 2.2.2.2")

	assert.Equal(t, "ratelimit:ip:2.2.2.2", KeyByIP(req))
}

func TestPerWindowUsesConfiguredPeriod(t *testing.T) {
	limit := PerWindow(10, 4, 30*time.Second)

	assert.Equal(t, 10, limit.Rate)
	assert.Equal(t, 4, limit.Burst)
	assert.Equal(t, 30*time.Second, limit.Period)
}

func TestLocalLimiterRefillsOverConfiguredWindow(t *testing.T) {
	rl := NewRateLimiter(unreachableRedis(t), RateLimitConfig{
		Limit: PerWindow(1, 1, 50*time.Millisecond),
	})
	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	serve := func() int {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, serve())
	assert.Equal(t, http.StatusTooManyRequests, serve())

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, http.StatusOK, serve())
}
