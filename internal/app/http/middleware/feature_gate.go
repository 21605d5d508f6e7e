package middleware

import (
	"net/http"

	"highlight-api/internal/domain/access"

	"github.com/gin-gonic/gin"
)

// RequireFeature answers 402 with the entitlement when the project's tier lacks feature.
// The project id is read from the named path parameter.
func RequireFeature(resolver *access.Resolver, feature, projectParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var projectID *string
		if id := c.Param(projectParam); id != "" {
			projectID = &id
		}
		ent := resolver.Resolve(c.Request.Context(), feature, projectID)
		if !ent.HasAccess {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"error":       ent.UpgradeMessage,
				"entitlement": ent,
			})
			return
		}
		c.Set("entitlement", ent)
		c.Next()
	}
}
