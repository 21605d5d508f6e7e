package billing

import (
	"net/http"

	"highlight-api/internal/api/httpx"
	"highlight-api/internal/domain/access"
	"highlight-api/internal/domain/billing"
	"highlight-api/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// GET /subscription?project_id=
func (h *Handler) GetSubscription(c *gin.Context) {
	p, ok := h.owned(c, c.Query("project_id"))
	if !ok {
		return
	}
	ctx := c.Request.Context()
	id := p.ID
	tier := h.resolver.CurrentTier(ctx, &id)

	purchases, err := billing.ListPurchases(h.db.WithContext(ctx), httpx.UserID(c), p.ID)
	if err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to load purchases", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"projectId": p.ID,
		"tier":      tier,
		"label":     tier.Label(),
		"access":    access.PolicyFor(tier),
		"purchases": purchases,
	})
}
