package functions

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"highlight-api/internal/api/httpx"
	"highlight-api/internal/domain/billing"
	"highlight-api/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// POST /functions/verify-payment
func (h *Handler) VerifyPayment(c *gin.Context) {
	if h.Payments == nil {
		fail(c, http.StatusServiceUnavailable, "Payments are not configured")
		return
	}
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.SessionID) == "" {
		fail(c, http.StatusBadRequest, "session_id is required")
		return
	}
	sessionID := strings.TrimSpace(req.SessionID)
	ctx := c.Request.Context()
	db := h.DB.WithContext(ctx)

	purchase, err := billing.FindPurchaseBySession(db, sessionID)
	if errors.Is(err, billing.ErrPurchaseNotFound) || (err == nil && purchase.UserID != httpx.UserID(c)) {
		fail(c, http.StatusNotFound, "Unknown checkout session")
		return
	}
	if err != nil {
		h.failErr(c, apperrors.Internal("Failed to load purchase", err))
		return
	}

	session, err := h.Payments.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		h.failErr(c, apperrors.External("Failed to verify payment", err))
		return
	}

	_, changed, err := billing.SettleSession(ctx, h.DB, sessionID, session.PaymentStatus, time.Now())
	if err != nil {
		h.failErr(c, apperrors.Internal("Failed to record payment", err))
		return
	}
	if changed {
		h.Log.Info("purchase paid",
			zap.String("session_id", sessionID),
			zap.String("project_id", purchase.ProjectID),
			zap.String("tier", purchase.Tier))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "payment_status": session.PaymentStatus})
}
