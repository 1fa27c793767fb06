package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestLimiter() (*RateLimiter, *time.Time) {
	now := time.Now()
	l := NewRateLimiter(time.Hour, false, testLogger())
	l.now = func() time.Time { return now }
	return l, &now
}

var authPolicy = Policy{Name: "auth-strict", Limit: 20, Window: 15 * time.Minute}
var globalPolicy = Policy{Name: "global", Limit: 1000, Window: 60 * time.Minute}

func TestAllow_BudgetExhausted(t *testing.T) {
	l, _ := newTestLimiter()

	for i := 0; i < 20; i++ {
		allowed, _ := l.Allow("10.0.0.1", authPolicy)
		require.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, retryAfter := l.Allow("10.0.0.1", authPolicy)
	require.False(t, allowed)
	require.Greater(t, retryAfter, time.Duration(0))
	require.LessOrEqual(t, retryAfter, authPolicy.Window)
}

func TestAllow_IndependentScopeKeys(t *testing.T) {
	l, _ := newTestLimiter()

	for i := 0; i < 20; i++ {
		allowed, _ := l.Allow("10.0.0.1", authPolicy)
		require.True(t, allowed)
	}

	allowed, _ := l.Allow("10.0.0.1", authPolicy)
	require.False(t, allowed)

	// A second IP keeps its full budget.
	allowed, _ = l.Allow("10.0.0.2", authPolicy)
	require.True(t, allowed)
}

func TestAllow_IndependentPolicies(t *testing.T) {
	l, _ := newTestLimiter()

	for i := 0; i < 20; i++ {
		l.Allow("10.0.0.1", authPolicy)
	}
	allowed, _ := l.Allow("10.0.0.1", authPolicy)
	require.False(t, allowed)

	// Exhausting auth-strict does not touch the global budget.
	allowed, _ = l.Allow("10.0.0.1", globalPolicy)
	require.True(t, allowed)
}

func TestAllow_WindowReset(t *testing.T) {
	l, now := newTestLimiter()

	for i := 0; i < 20; i++ {
		l.Allow("10.0.0.1", authPolicy)
	}
	allowed, _ := l.Allow("10.0.0.1", authPolicy)
	require.False(t, allowed)

	// Just before the boundary the budget is still spent.
	*now = now.Add(authPolicy.Window - time.Second)
	allowed, _ = l.Allow("10.0.0.1", authPolicy)
	require.False(t, allowed)

	// At the boundary the count fully resets.
	*now = now.Add(2 * time.Second)
	for i := 0; i < 20; i++ {
		allowed, _ := l.Allow("10.0.0.1", authPolicy)
		require.True(t, allowed, "request %d after reset should be allowed", i+1)
	}
}

func TestAllow_ActiveWindowOutlivesCacheTTL(t *testing.T) {
	// The cache TTL is deliberately shorter than the policy window here.
	// An actively used key must keep its spent budget anyway: every Allow
	// refreshes the entry, so only idle keys age out.
	l := NewRateLimiter(150*time.Millisecond, false, testLogger())
	policy := Policy{Name: "auth-strict", Limit: 1, Window: time.Hour}

	allowed, _ := l.Allow("10.0.0.1", policy)
	require.True(t, allowed)

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		allowed, _ := l.Allow("10.0.0.1", policy)
		require.False(t, allowed, "request within the same window must still be denied")
		time.Sleep(50 * time.Millisecond)
	}
}

func TestAllow_ConcurrentIncrements(t *testing.T) {
	l, _ := newTestLimiter()
	policy := Policy{Name: "auth-strict", Limit: 20, Window: 15 * time.Minute}

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("10.0.0.1", policy); ok {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	// Exactly the budget, never one more.
	require.Equal(t, int64(20), allowed.Load())
}

func TestLimit_Middleware(t *testing.T) {
	l, _ := newTestLimiter()
	policy := Policy{Name: "auth-strict", Limit: 2, Window: 15 * time.Minute}

	var handlerCalls int
	handler := l.Limit(policy)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalls++
		w.WriteHeader(http.StatusOK)
	}))

	doRequest := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, doRequest("10.0.0.1:1234").Code)
	require.Equal(t, http.StatusOK, doRequest("10.0.0.1:5678").Code)

	rec := doRequest("10.0.0.1:9999")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Contains(t, rec.Body.String(), "RATE_LIMIT_EXCEEDED")

	// The short-circuit means the wrapped handler never ran for the
	// denied request.
	require.Equal(t, 2, handlerCalls)

	// A different client IP is unaffected.
	require.Equal(t, http.StatusOK, doRequest("10.0.0.2:1234").Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	// Without a trusted proxy the header is ignored outright.
	direct := NewRateLimiter(time.Hour, false, testLogger())
	require.Equal(t, "10.0.0.1", direct.clientIP(req))

	proxied := NewRateLimiter(time.Hour, true, testLogger())
	require.Equal(t, "203.0.113.7", proxied.clientIP(req))
}

func TestLimit_ForwardedForCannotMintScopeKeys(t *testing.T) {
	l := NewRateLimiter(time.Hour, false, testLogger())
	policy := Policy{Name: "auth-strict", Limit: 1, Window: 15 * time.Minute}

	handler := l.Limit(policy)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	doRequest := func(forwardedFor string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", forwardedFor)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, doRequest("203.0.113.1").Code)

	// Rotating the header does not earn the same client a fresh budget.
	require.Equal(t, http.StatusTooManyRequests, doRequest("203.0.113.2").Code)
	require.Equal(t, http.StatusTooManyRequests, doRequest("203.0.113.3").Code)
}
