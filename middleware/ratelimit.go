package middleware

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyFunc picks the bucket a request is charged to. An empty key skips
// limiting for that request.
type KeyFunc func(c *gin.Context) string

// ByIP charges requests to the client address.
func ByIP(c *gin.Context) string { return c.ClientIP() }

// ByPlayer charges requests to the :id route parameter, so one player
// cannot flood intents from many addresses.
func ByPlayer(c *gin.Context) string {
	if id := c.Param("id"); id != "" {
		return "player:" + id
	}
	return ""
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

// RateLimit provides keyed token-bucket rate limiting.
// r = requests per second, b = burst size. Idle buckets are swept until ctx
// is cancelled.
func RateLimit(ctx context.Context, r rate.Limit, b int, key KeyFunc) gin.HandlerFunc {
	buckets := &sync.Map{}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweep(buckets, time.Now().Add(-10*time.Minute))
			}
		}
	}()

	get := func(k string) *rate.Limiter {
		v, _ := buckets.LoadOrStore(k, &bucket{limiter: rate.NewLimiter(r, b)})
		bk := v.(*bucket)
		bk.lastSeen.Store(time.Now().UnixNano())
		return bk.limiter
	}

	return func(c *gin.Context) {
		k := key(c)
		if k != "" && !get(k).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":  "rate limit exceeded",
				"reason": "rate_limited",
			})
			return
		}
		c.Next()
	}
}

func sweep(buckets *sync.Map, cutoff time.Time) {
	buckets.Range(func(k, v interface{}) bool {
		if v.(*bucket).lastSeen.Load() < cutoff.UnixNano() {
			buckets.Delete(k)
		}
		return true
	})
}
