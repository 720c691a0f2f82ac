// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements a lightweight, in-memory, token-bucket rate limiter
// with per-identity buckets and opportunistic garbage collection. Buckets
// are keyed by the resolved user ID when present and by client IP
// otherwise. The limiter is process-local; a horizontally scaled deployment
// needs a distributed limiter instead.
package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// keyFunc selects the identity used to key a rate-limit bucket.
type keyFunc func(*gin.Context) string

// KeyByUserOrIP prefers the acting user resolved by Identity and falls back
// to the client IP. Keys are prefixed so the two namespaces cannot collide.
func KeyByUserOrIP() keyFunc {
	return func(c *gin.Context) string {
		if id := UserIDFrom(c); id != 0 {
			return "user:" + strconv.FormatUint(uint64(id), 10)
		}
		return "ip:" + c.ClientIP()
	}
}

// bucket holds one limiter and the last time it was used, for idle eviction.
type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-key token-bucket limiter, safe for concurrent use.
// Idle buckets are evicted opportunistically during lookups to bound memory.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	keyFn keyFunc

	mu      sync.Mutex
	buckets map[string]*bucket

	ttl     time.Duration
	lookups uint64
}

// NewRateLimiter constructs a RateLimiter with the given tokens-per-second
// and burst size. A burst below 1 is coerced to 1.
func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		keyFn:   keyFn,
		buckets: make(map[string]*bucket),
		ttl:     10 * time.Minute,
	}
}

// get returns the limiter for key, creating it if absent. Every ~5000
// lookups it sweeps buckets idle for longer than the TTL. The sweep runs
// before touching the requested bucket so a stale entry for the same key is
// evicted rather than refreshed.
func (rl *RateLimiter) get(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lookups++
	if rl.lookups >= 5000 {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) >= rl.ttl {
				delete(rl.buckets, k)
			}
		}
		rl.lookups = 0
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

// Handler returns the Gin middleware enforcing the limit. Rejected requests
// receive the standard 429 envelope.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.get(rl.keyFn(c)).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"request_id": RequestIDFrom(c),
				"code":       "too_many_requests",
				"message":    "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
