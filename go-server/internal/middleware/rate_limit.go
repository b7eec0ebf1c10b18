package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fonsecaaso/linkvault/go-server/internal/metrics"
)

// RateLimiter is a fixed-window limiter keyed by owner, or by client IP for
// unauthenticated requests. Expired windows are swept once per window.
type RateLimiter struct {
	mu      sync.RWMutex
	buckets map[string]*window
	limit   int
	period  time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

type window struct {
	used    int
	resetAt time.Time
}

func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*window),
		limit:   limit,
		period:  period,
		stop:    make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Stop ends the background sweep goroutine. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	logger := zap.L().With(zap.String("component", "RateLimiter"))

	return func(c *gin.Context) {
		key := rateLimitKey(c)
		remaining, resetAt, ok := rl.take(key, time.Now())

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Window", rl.period.String())

		if !ok {
			retryAfter := int(math.Ceil(time.Until(resetAt).Seconds()))
			logger.Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.String("path", c.FullPath()),
				zap.Int("retry_after", retryAfter),
			)
			metrics.RateLimitedTotal.WithLabelValues(c.FullPath()).Inc()

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"code":        "RATE_LIMIT_EXCEEDED",
				"retry_after": retryAfter,
			})
			return
		}
		c.Next()
	}
}

func rateLimitKey(c *gin.Context) string {
	if owner := OwnerIDFromContext(c); owner != "" {
		return "owner:" + owner
	}
	return "ip:" + c.ClientIP()
}

// take consumes one request from key's window and reports what is left.
func (rl *RateLimiter) take(key string, now time.Time) (remaining int, resetAt time.Time, ok bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, found := rl.buckets[key]
	if !found || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(rl.period)}
		rl.buckets[key] = w
	}
	if w.used >= rl.limit {
		return 0, w.resetAt, false
	}
	w.used++
	return rl.limit - w.used, w.resetAt, true
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.period)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, w := range rl.buckets {
				if !now.Before(w.resetAt) {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}
