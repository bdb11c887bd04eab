package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(rate float64, burst int) (*RateLimiter, *time.Time) {
	rl := NewRateLimiter(rate, burst)
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestRateLimiterBurstThenRefill(t *testing.T) {
	rl, now := newTestLimiter(1, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"), "request %d within burst", i)
	}
	assert.False(t, rl.Allow("1.2.3.4"), "burst exhausted")

	// One second buys one token back.
	*now = now.Add(time.Second)
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	rl, _ := newTestLimiter(1, 1)

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "other clients keep their own bucket")
}

func TestRateLimiterRefillCapsAtBurst(t *testing.T) {
	rl, now := newTestLimiter(10, 2)

	assert.True(t, rl.Allow("1.2.3.4"))
	*now = now.Add(time.Hour)

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"), "refill must not exceed burst")
}

func TestRateLimiterSweepsIdleBuckets(t *testing.T) {
	rl, now := newTestLimiter(1, 1)

	rl.Allow("1.2.3.4")
	*now = now.Add(3 * sweepInterval)
	rl.Allow("5.6.7.8") // triggers the sweep

	rl.mu.Lock()
	_, stale := rl.buckets["1.2.3.4"]
	rl.mu.Unlock()
	assert.False(t, stale, "idle bucket should be evicted")
}

func TestRateLimitMiddleware(t *testing.T) {
	h := RateLimit(1, 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", nil)
	req.Header.Set("X-Real-Ip", "1.2.3.4")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
