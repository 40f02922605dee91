package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/goatkit/kbgen/internal/apierrors"
	"github.com/goatkit/kbgen/internal/metrics"
)

// RateLimiter is a token bucket limiter keyed by caller. Buckets refill
// continuously over an hour and idle buckets are pruned on access.
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	idle      time.Duration
	lastPrune time.Time
	now       func() time.Time
}

type bucket struct {
	tokens     float64
	limit      float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// NewRateLimiter creates an empty limiter.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		idle:    time.Hour,
		now:     time.Now,
	}
}

// Allow consumes a token for key, allowing limit calls per hour.
func (rl *RateLimiter) Allow(key string, limit int) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.prune(now)

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{
			tokens:     float64(limit),
			limit:      float64(limit),
			refillRate: float64(limit) / 3600.0,
			lastRefill: now,
		}
		rl.buckets[key] = b
	}

	b.tokens += now.Sub(b.lastRefill).Seconds() * b.refillRate
	if b.tokens > b.limit {
		b.tokens = b.limit
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Remaining returns the whole tokens left for key, or 0 for an unknown key.
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if b, ok := rl.buckets[key]; ok {
		return int(b.tokens)
	}
	return 0
}

// prune drops buckets untouched for longer than idle. Callers hold mu.
func (rl *RateLimiter) prune(now time.Time) {
	if now.Sub(rl.lastPrune) < rl.idle {
		return
	}
	cutoff := now.Add(-rl.idle)
	for key, b := range rl.buckets {
		if b.lastRefill.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
	rl.lastPrune = now
}

// RateLimitPerOperator limits a route to perHour calls per admin operator,
// falling back to the client IP when no operator is known. A non-positive
// perHour disables the limit.
func RateLimitPerOperator(rl *RateLimiter, perHour int, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if perHour <= 0 {
			c.Next()
			return
		}

		key := "ip:" + c.ClientIP()
		if op := Operator(c); op != "" {
			key = "operator:" + op
		}

		limit := strconv.Itoa(perHour)
		if !rl.Allow(key, perHour) {
			m.RateLimited()
			c.Header("X-RateLimit-Limit", limit)
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", "60")
			apierrors.Error(c, apierrors.CodeRateLimited)
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(rl.Remaining(key)))
		c.Next()
	}
}
