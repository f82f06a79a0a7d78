package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// maxTrackedClients bounds the per-IP limiter table. The least recently seen
// client loses its limiter first.
const maxTrackedClients = 4096

// IPRateLimiter hands out one token bucket per client IP.
type IPRateLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	visitors *lru.Cache[string, *rate.Limiter]
}

// NewIPRateLimiter allows perMinute requests per IP, refilled evenly, with
// the whole minute's allowance available as a burst.
func NewIPRateLimiter(perMinute int) *IPRateLimiter {
	visitors, _ := lru.New[string, *rate.Limiter](maxTrackedClients)
	return &IPRateLimiter{
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		visitors: visitors,
	}
}

func (rl *IPRateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	limiter, ok := rl.visitors.Get(ip)
	if !ok {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.visitors.Add(ip, limiter)
	}
	rl.mu.Unlock()
	return limiter.Allow()
}

// RateLimit throttles a route per client IP. perMinute <= 0 disables it.
// Rejected requests go to onLimit, which must write the response.
func RateLimit(perMinute int, onLimit gin.HandlerFunc) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	rl := NewIPRateLimiter(perMinute)
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			onLimit(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
