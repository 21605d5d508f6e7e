package middleware

import (
	"net/http"
	"strconv"
	"time"

	"highlight-api/internal/infra/ratelimit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimit limits requests per client IP within scope. Limiter errors fail open.
func RateLimit(limiter ratelimit.Limiter, scope string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := limiter.Allow(c.Request.Context(), scope, c.ClientIP(), time.Now())
		if err != nil {
			log.Warn("rate limiter unavailable", zap.String("scope", scope), zap.Error(err))
			c.Next()
			return
		}
		if !d.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(d.RetryAfter.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, try again shortly"})
			return
		}
		c.Next()
	}
}
