package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
)

// Policy is one rate-limit budget: at most Limit requests per fixed Window.
// Counts reset fully at the window boundary.
type Policy struct {
	Name   string
	Limit  int
	Window time.Duration
}

type rateWindow struct {
	mu    sync.Mutex
	start time.Time
	count int
}

// RateLimiter tracks fixed-window counters per scope key (client IP plus
// policy name). Counters for different keys never share a budget. State is
// process-local; under horizontal scaling each replica enforces its own
// budget independently.
type RateLimiter struct {
	mu                sync.Mutex
	windows           *expirable.LRU[string, *rateWindow]
	trustForwardedFor bool
	logger            *logrus.Logger
	now               func() time.Time
}

// windowCacheSize bounds how many distinct scope keys are tracked at once.
const windowCacheSize = 16384

// NewRateLimiter builds a limiter whose idle entries age out after
// maxWindow. trustForwardedFor controls whether X-Forwarded-For is used as
// the scope key; leave it off unless a trusted proxy sets the header.
func NewRateLimiter(maxWindow time.Duration, trustForwardedFor bool, logger *logrus.Logger) *RateLimiter {
	return &RateLimiter{
		windows:           expirable.NewLRU[string, *rateWindow](windowCacheSize, nil, maxWindow),
		trustForwardedFor: trustForwardedFor,
		logger:            logger,
		now:               time.Now,
	}
}

// Allow records one request against the policy's budget for the scope key.
// The increment-and-compare runs under the window's lock so two concurrent
// requests cannot both claim the last slot.
func (l *RateLimiter) Allow(scopeKey string, p Policy) (bool, time.Duration) {
	key := p.Name + ":" + scopeKey

	l.mu.Lock()
	w, ok := l.windows.Get(key)
	if !ok {
		w = &rateWindow{start: l.now()}
	}
	// Re-adding refreshes the cache expiry, so an actively used key can
	// never be evicted in the middle of its window. Idle keys still age
	// out after the cache TTL.
	l.windows.Add(key, w)
	l.mu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()

	now := l.now()
	if now.Sub(w.start) >= p.Window {
		w.start = now
		w.count = 0
	}

	if w.count >= p.Limit {
		return false, w.start.Add(p.Window).Sub(now)
	}

	w.count++
	return true, 0
}

// Limit wraps a handler chain with the policy, keyed by client IP.
func (l *RateLimiter) Limit(p Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := l.clientIP(r)

			allowed, _ := l.Allow(ip, p)
			if !allowed {
				l.logger.WithFields(logrus.Fields{
					"ip":     ip,
					"policy": p.Name,
					"path":   r.URL.Path,
				}).Warn("Rate limit exceeded")
				l.respondTooManyRequests(w, p)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (l *RateLimiter) respondTooManyRequests(w http.ResponseWriter, p Policy) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	message := fmt.Sprintf("Too many requests, try again within the next %s", p.Window)
	w.Write([]byte(`{"error":{"code":"RATE_LIMIT_EXCEEDED","message":"` + message + `"}}`))
}

// clientIP resolves the scope key for a request. X-Forwarded-For is only
// honored when the deployment declared a trusted proxy; otherwise a direct
// client could rotate the header to mint a fresh budget per attempt.
func (l *RateLimiter) clientIP(r *http.Request) string {
	if l.trustForwardedFor {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			return strings.TrimSpace(first)
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
