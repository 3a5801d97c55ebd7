package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/frostdev-ops/dashview-backend-go/pkg/utils"
)

// RateLimiter implements per-client token bucket rate limiting
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*tokenBucket
	rate     float64
	burst    float64
}

type tokenBucket struct {
	tokens   float64
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing rate requests/sec with the
// given burst
func NewRateLimiter(rate, burst int) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*tokenBucket),
		rate:     float64(rate),
		burst:    float64(burst),
	}
	go rl.cleanupVisitors()
	return rl
}

// RateLimitMiddleware rejects clients that exceed their bucket
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			utils.SendError(c, http.StatusTooManyRequests, "Rate limit exceeded")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	bucket, ok := rl.visitors[key]
	if !ok {
		rl.visitors[key] = &tokenBucket{tokens: rl.burst - 1, lastSeen: now}
		return true
	}

	bucket.tokens += now.Sub(bucket.lastSeen).Seconds() * rl.rate
	if bucket.tokens > rl.burst {
		bucket.tokens = rl.burst
	}
	bucket.lastSeen = now

	if bucket.tokens < 1 {
		return false
	}
	bucket.tokens--
	return true
}

func (rl *RateLimiter) cleanupVisitors() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		for key, bucket := range rl.visitors {
			if time.Since(bucket.lastSeen) > 3*time.Minute {
				delete(rl.visitors, key)
			}
		}
		rl.mu.Unlock()
	}
}
