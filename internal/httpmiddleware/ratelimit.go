package httpmiddleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// maxClients bounds the bucket map; beyond it, fully refilled buckets are
// pruned before a new client is admitted.
const maxClients = 4096

// Limiter applies a per-client-IP token bucket: up to burst requests at once,
// refilled continuously at the sustained per-minute rate. State is in-process,
// so with multiple replicas each enforces its own share.
type Limiter struct {
	perMinute float64
	burst     float64

	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewLimiter creates a limiter allowing perMinute sustained requests with
// bursts of up to burst. A non-positive burst falls back to perMinute.
func NewLimiter(perMinute, burst int) *Limiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	if burst <= 0 {
		burst = perMinute
	}
	return &Limiter{
		perMinute: float64(perMinute),
		burst:     float64(burst),
		buckets:   make(map[string]*bucket),
		now:       time.Now,
	}
}

// Middleware enforces the limit per client IP. Paths in skip bypass the
// limiter so health probes and metric scrapes never consume quota.
func (l *Limiter) Middleware(skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := skipped[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !l.Allow(ip) {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":  "error",
				"code":    "rate_limited",
				"message": "Too many requests, slow down.",
			})
			return
		}
		c.Next()
	}
}

// Allow reports whether one more request from key fits the budget.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= maxClients {
			l.prune(now)
		}
		b = &bucket{tokens: l.burst, last: now}
		l.buckets[key] = b
	}

	b.tokens += now.Sub(b.last).Minutes() * l.perMinute
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	b.last = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// prune drops buckets idle long enough to have refilled completely; their
// next request is indistinguishable from a fresh client's.
func (l *Limiter) prune(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.last).Minutes()*l.perMinute >= l.burst {
			delete(l.buckets, key)
		}
	}
}
