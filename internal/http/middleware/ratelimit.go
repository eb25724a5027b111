// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements a lightweight, in-memory, token-bucket rate limiter
// with per-identity buckets and opportunistic garbage collection. It is
// process-local: horizontally scaled deployments should enforce global
// limits with a shared store instead. The limiter is edge-level abuse and
// cost protection (every generation and submission fans out to the oracle
// provider), not an authorization mechanism.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// keyFunc selects the identity used to key a rate-limit bucket. The returned
// key must be stable for the duration of a request.
type keyFunc func(*gin.Context) string

// KeyByUserOrIP returns a keyFunc that prefers the authenticated user id
// (set by RequireAuth) and falls back to the client IP. Keys are prefixed to
// keep the user and IP namespaces apart.
func KeyByUserOrIP() keyFunc {
	return func(c *gin.Context) string {
		if uid := UserID(c); uid != "" {
			return "user:" + uid
		}
		return "ip:" + c.ClientIP()
	}
}

// bucket holds a single limiter and the last time it was used, so idle
// entries can be evicted.
type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter implements a per-key token-bucket rate limiter. Buckets are
// created on demand in a mutex-guarded map; idle buckets are evicted after a
// TTL via opportunistic cleanup during lookups. Safe for concurrent use.
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
// and burst size, keyed by keyFn. A burst <= 0 is coerced to 1.
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

// take returns the limiter for key, creating it if absent. Idle entries are
// swept after ~5000 lookups; the sweep runs before the requested bucket is
// touched so a stale bucket can be evicted even when it is the one fetched.
func (rl *RateLimiter) take(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	rl.lookups++
	if rl.lookups >= 5000 {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) >= rl.ttl {
				delete(rl.buckets, k)
			}
		}
		rl.lookups = 0
	}

	if b, ok := rl.buckets[key]; ok {
		b.lastSeen = now
		lim := b.limiter
		rl.mu.Unlock()
		return lim
	}

	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.buckets[key] = &bucket{limiter: lim, lastSeen: now}
	rl.mu.Unlock()
	return lim
}

// Handler returns a Gin middleware enforcing the per-key limit. Rejected
// requests get a 429 with the standard error envelope and a Retry-After.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.take(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get(requestIDHeader),
			"code":       "too_many_requests",
			"message":    "rate limit exceeded",
		})
	}
}
