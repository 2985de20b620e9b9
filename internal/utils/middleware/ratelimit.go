package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RateLimitRemaining is the header for remaining requests.
	RateLimitRemaining = "X-RateLimit-Remaining"
	// RateLimitLimit is the header for the limit.
	RateLimitLimit = "X-RateLimit-Limit"
	// RetryAfter is the header for retry time.
	RetryAfter = "Retry-After"
)

// Limiter counts events per key in a sliding window.
type Limiter interface {
	Allow(ctx context.Context, key string, n int) (bool, error)
	Remaining(ctx context.Context, key string) (int, error)
}

// RateLimitConfig holds rate limit configuration.
type RateLimitConfig struct {
	// Limit and Window are only reported in headers; the limiter enforces them.
	Limit  int
	Window time.Duration
	// KeyFunc generates the rate limit key from request.
	// Default uses the authenticated user, falling back to client IP.
	KeyFunc func(*gin.Context) string
}

// RateLimit returns a middleware that limits requests using the given limiter.
// A nil limiter disables limiting. Limiter errors let the request through.
func RateLimit(limiter Limiter, cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = userOrIP
	}

	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		key := cfg.KeyFunc(c)
		ctx := c.Request.Context()

		allowed, err := limiter.Allow(ctx, key, 1)
		if err != nil {
			_ = c.Error(err)
			c.Next()
			return
		}

		if remaining, err := limiter.Remaining(ctx, key); err == nil {
			c.Header(RateLimitLimit, strconv.Itoa(cfg.Limit))
			c.Header(RateLimitRemaining, strconv.Itoa(remaining))
		}

		if !allowed {
			c.Header(RetryAfter, strconv.Itoa(int(cfg.Window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":    "RATE_LIMITED",
					"message": "too many requests",
				},
			})
			return
		}

		c.Next()
	}
}

func userOrIP(c *gin.Context) string {
	if userID := GetUserID(c); userID != uuid.Nil {
		return "user:" + userID.String()
	}
	return "ip:" + c.ClientIP()
}
