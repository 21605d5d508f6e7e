// Package httpx holds response helpers shared by the gin handlers.
package httpx

import (
	"net/http"

	"highlight-api/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error writes {"error": msg} with the status carried by err.
// Server-side failures are logged with their cause.
func Error(c *gin.Context, log *zap.Logger, err error) {
	status := apperrors.StatusCode(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Error(err))
	}
	c.JSON(status, gin.H{"error": apperrors.Message(err)})
}

// UserID returns the authenticated user's id, 0 when absent.
func UserID(c *gin.Context) uint {
	return c.GetUint("user_id")
}

// OptionalString returns a pointer to s, or nil when s is empty.
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
