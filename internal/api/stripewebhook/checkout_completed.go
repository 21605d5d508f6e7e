package stripewebhooks

import (
	"errors"
	"time"

	"highlight-api/internal/domain/billing"
	"highlight-api/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleCheckoutSession applies the same settlement as verify-payment, so whichever
// of the redirect or the webhook arrives first upgrades the project.
func (h *Handler) handleCheckoutSession(c *gin.Context, eventType string, s stripe.CheckoutSession) error {
	db := h.db.WithContext(c.Request.Context())

	if eventType == "checkout.session.async_payment_failed" || eventType == "checkout.session.expired" {
		failed, err := billing.FailSession(db, s.ID)
		if err != nil {
			return err
		}
		if failed {
			h.log.Info("purchase failed", zap.String("session_id", s.ID), zap.String("event", eventType))
		}
		return nil
	}

	purchase, changed, err := billing.SettleSession(c.Request.Context(), h.db, s.ID, s.PaymentStatus, time.Now())
	if errors.Is(err, billing.ErrPurchaseNotFound) {
		// not started by this API, nothing to retry
		h.log.Warn("checkout session without purchase", zap.String("session_id", s.ID))
		return nil
	}
	if err != nil {
		return err
	}
	if changed {
		h.log.Info("purchase paid via webhook",
			zap.String("session_id", s.ID),
			zap.String("project_id", purchase.ProjectID),
			zap.String("tier", purchase.Tier))
	}
	return nil
}
