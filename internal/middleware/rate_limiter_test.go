package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func get(mw http.Handler, ip, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = ip
	rr := httptest.NewRecorder()
	mw.ServeHTTP(rr, req)
	return rr
}

func TestMiddleware_GlobalBurstExhausts(t *testing.T) {
	rl := NewRateLimiter(DefaultLimits())
	mw := rl.Middleware(okHandler())
	ip := "1.2.3.4:1234"

	// Unique locations keep the per-location limiters fresh; the global
	// burst of 10 runs out first.
	for i := 0; i < 10; i++ {
		rr := get(mw, ip, fmt.Sprintf("/weather?location=city%d", i))
		require.Equal(t, http.StatusOK, rr.Code, "request %d within burst", i+1)
	}
	rr := get(mw, ip, "/weather?location=city99")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Contains(t, rr.Body.String(), "Rate limit exceeded for this client")
}

func TestMiddleware_PerLocationBurstExhausts(t *testing.T) {
	rl := NewRateLimiter(DefaultLimits())
	mw := rl.Middleware(okHandler())
	ip := "2.3.4.5:2345"

	for i := 0; i < 2; i++ {
		rr := get(mw, ip, "/weather?location=Pretoria")
		require.Equal(t, http.StatusOK, rr.Code)
	}
	rr := get(mw, ip, "/weather?location=Pretoria")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Contains(t, rr.Body.String(), "Rate limit exceeded for this location")

	// A different location from the same client still passes.
	rr = get(mw, ip, "/weather?location=Tokyo")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMiddleware_DistinctClientsDoNotShareBuckets(t *testing.T) {
	rl := NewRateLimiter(Limits{PerMinute: 1, PerLocationPerMinute: 1})
	mw := rl.Middleware(okHandler())

	rr := get(mw, "1.1.1.1:1", "/weather?location=Pretoria")
	require.Equal(t, http.StatusOK, rr.Code)
	rr = get(mw, "1.1.1.1:1", "/weather?location=Pretoria")
	require.Equal(t, http.StatusTooManyRequests, rr.Code)

	rr = get(mw, "2.2.2.2:1", "/weather?location=Pretoria")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMiddleware_ForwardedForTakesPrecedence(t *testing.T) {
	rl := NewRateLimiter(Limits{PerMinute: 1, PerLocationPerMinute: 1})
	mw := rl.Middleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/weather?location=Pretoria", nil)
	req.RemoteAddr = "10.0.0.1:1"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	rr := httptest.NewRecorder()
	mw.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	// Same forwarded client from a different socket shares the bucket.
	req = httptest.NewRequest(http.MethodGet, "/weather?location=Pretoria", nil)
	req.RemoteAddr = "10.0.0.2:1"
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	rr = httptest.NewRecorder()
	mw.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}

func TestMiddleware_MissingLocationSharesOneBucket(t *testing.T) {
	rl := NewRateLimiter(DefaultLimits())
	mw := rl.Middleware(okHandler())
	ip := "3.4.5.6:3456"

	for i := 0; i < 2; i++ {
		rr := get(mw, ip, "/settings")
		require.Equal(t, http.StatusOK, rr.Code)
	}
	rr := get(mw, ip, "/settings")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}

func TestCleanup_EvictsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(DefaultLimits())
	mw := rl.Middleware(okHandler())

	now := time.Date(2026, 2, 23, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	get(mw, "1.2.3.4:1234", "/weather?location=Pretoria")
	rl.mu.Lock()
	assert.Len(t, rl.global, 1)
	assert.Len(t, rl.perFacet, 1)
	rl.mu.Unlock()

	now = now.Add(staleAfter + time.Second)
	rl.cleanup()

	rl.mu.Lock()
	assert.Empty(t, rl.global)
	assert.Empty(t, rl.perFacet)
	rl.mu.Unlock()
}
