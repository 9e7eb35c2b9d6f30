package oauth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter is a token bucket limiter keyed by an arbitrary string, an IP
// address for the per-IP limiter or an email for the per-user one.
type RateLimiter struct {
	mu         sync.RWMutex
	limiters   map[string]*bucket
	rate       int
	burst      int
	cleanup    time.Duration
	trustProxy bool
	logger     *slog.Logger
}

type bucket struct {
	tokens     float64
	lastUpdate time.Time
	mu         sync.Mutex
}

// NewRateLimiter creates a limiter refilling at rate tokens per second up to
// burst, and starts a goroutine that evicts idle buckets every
// cleanupInterval.
func NewRateLimiter(rate, burst int, trustProxy bool, cleanupInterval time.Duration, logger *slog.Logger) *RateLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	if cleanupInterval == 0 {
		cleanupInterval = DefaultRateLimitCleanupInterval
	}

	rl := &RateLimiter{
		limiters:   make(map[string]*bucket),
		rate:       rate,
		burst:      burst,
		cleanup:    cleanupInterval,
		trustProxy: trustProxy,
		logger:     logger,
	}

	go rl.cleanupInactiveLimiters()

	return rl
}

func (rl *RateLimiter) bucketFor(key string) *bucket {
	rl.mu.RLock()
	b, exists := rl.limiters[key]
	rl.mu.RUnlock()
	if exists {
		return b
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	// Re-check under the write lock, another request may have created it
	if b, exists = rl.limiters[key]; !exists {
		b = &bucket{
			tokens:     float64(rl.burst),
			lastUpdate: time.Now(),
		}
		rl.limiters[key] = b
	}
	return b
}

// Allow reports whether a request for key fits within the limit, consuming
// one token when it does.
func (rl *RateLimiter) Allow(key string) bool {
	b := rl.bucketFor(key)

	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastUpdate).Seconds()

	b.tokens += elapsed * float64(rl.rate)
	if b.tokens > float64(rl.burst) {
		b.tokens = float64(rl.burst)
	}
	b.lastUpdate = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}

	return false
}

func (rl *RateLimiter) cleanupInactiveLimiters() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		removed := 0
		for key, b := range rl.limiters {
			b.mu.Lock()
			if now.Sub(b.lastUpdate) > InactiveLimiterCleanupWindow {
				delete(rl.limiters, key)
				removed++
			}
			b.mu.Unlock()
		}
		rl.mu.Unlock()

		if removed > 0 {
			rl.logger.Debug("Cleaned up inactive rate limiters", "removed", removed)
		}
	}
}

// RateLimitMiddleware applies the per-IP limiter to a handler. With no
// limiter configured requests pass through untouched.
func (h *Handler) RateLimitMiddleware(next http.Handler) http.Handler {
	if h.rateLimiter == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := getClientIP(r, h.rateLimiter.trustProxy)

		if !h.rateLimiter.Allow(ip) {
			w.Header().Set("Retry-After", "1")
			h.writeError(w, "rate_limit_exceeded",
				fmt.Sprintf("Rate limit exceeded for %s. Please try again later", ip),
				http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// getClientIP resolves the address to rate limit on. Proxy headers are only
// honored when trustProxy is set, and then only the last X-Forwarded-For hop
// counts: earlier entries are client-supplied and trivially spoofed.
func getClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			hops := strings.Split(xff, ",")
			return strings.TrimSpace(hops[len(hops)-1])
		}

		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return xri
		}
	}

	return extractIPFromAddr(r.RemoteAddr)
}

// extractIPFromAddr strips the port from an "IP:port" address.
func extractIPFromAddr(addr string) string {
	if ip, _, found := strings.Cut(addr, ":"); found {
		return ip
	}
	return addr
}
