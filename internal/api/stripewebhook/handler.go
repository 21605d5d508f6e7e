package stripewebhooks

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"highlight-api/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	stripego "github.com/stripe/stripe-go/v75"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxWebhookBody = 65536

type Handler struct {
	db       *gorm.DB
	payments stripe.Gateway
	log      *zap.Logger
}

func NewHandler(db *gorm.DB, payments stripe.Gateway, log *zap.Logger) *Handler {
	return &Handler{db: db, payments: payments, log: log}
}

// POST /webhook
func (h *Handler) StripeWebhook(c *gin.Context) {
	if h.payments == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Stripe not configured"})
		return
	}

	payload, err := readStripeBody(c, maxWebhookBody)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	event, err := h.payments.ConstructEvent(payload, c.GetHeader("Stripe-Signature"))
	if errors.Is(err, stripe.ErrNotConfigured) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "STRIPE_WEBHOOK_SECRET not configured"})
		return
	}
	if err != nil {
		h.log.Warn("stripe signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		return
	}

	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded",
		"checkout.session.async_payment_failed", "checkout.session.expired":
		var session stripego.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse session"})
			return
		}
		if err := h.handleCheckoutSession(c, string(event.Type), stripe.SessionFromEvent(&session)); err != nil {
			// 500 makes Stripe retry
			h.log.Error("checkout webhook failed", zap.String("event_id", event.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process event"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "received"})

	default:
		// Acknowledge unknown events to avoid retries
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
	}
}

func readStripeBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
