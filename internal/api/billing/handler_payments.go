package billing

import (
	"net/http"

	"highlight-api/internal/api/httpx"
	"highlight-api/internal/domain/billing"
	"highlight-api/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// GET /payments
func (h *Handler) GetPaymentHistory(c *gin.Context) {
	list, err := billing.ListPurchases(h.db.WithContext(c.Request.Context()), httpx.UserID(c), c.Query("project_id"))
	if err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to load payments", err))
		return
	}
	c.JSON(http.StatusOK, list)
}
