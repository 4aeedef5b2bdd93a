package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Limiter decides whether one more attempt under key is allowed.
// *redis.Limiter satisfies it.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// RateLimitByIP rejects requests with 429 once the client IP is over the limit.
// A nil limiter lets everything through.
func RateLimitByIP(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		if !limiter.Allow(c.Request.Context(), c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts, try again later"})
			return
		}
		c.Next()
	}
}
