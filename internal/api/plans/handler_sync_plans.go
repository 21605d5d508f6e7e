package plans

import (
	"net/http"
	"strings"

	"highlight-api/config"
	"highlight-api/internal/api/httpx"
	"highlight-api/internal/domain/plans"
	"highlight-api/internal/infra/stripe"
	"highlight-api/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	db       *gorm.DB
	payments stripe.Gateway
	cfg      config.Config
	log      *zap.Logger
}

func NewHandler(db *gorm.DB, payments stripe.Gateway, cfg config.Config, log *zap.Logger) *Handler {
	return &Handler{db: db, payments: payments, cfg: cfg, log: log}
}

// POST /admin/sync-plans
// Mirrors active one-time Stripe prices into plans. The tier comes from the
// price metadata "tier", falling back to the price amount.
func (h *Handler) SyncPlansFromStripe(c *gin.Context) {
	if h.payments == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Stripe key not configured"})
		return
	}
	ctx := c.Request.Context()

	prices, err := h.payments.ListOneTimePrices(ctx, h.cfg.StripeProductID)
	if err != nil {
		httpx.Error(c, h.log, apperrors.External("Failed to fetch Stripe prices", err))
		return
	}

	db := h.db.WithContext(ctx)
	created, updated, skipped := 0, 0, 0
	seen := []string{}
	for _, p := range prices {
		if p.Metadata["visible"] == "false" || p.UnitAmount <= 0 {
			skipped++
			continue
		}

		plan := plans.Plan{
			Name:          p.ProductName,
			PriceCents:    p.UnitAmount,
			Currency:      p.Currency,
			StripePriceID: p.ID,
			StripeProdID:  p.ProductID,
		}
		if v := p.Metadata["name"]; v != "" {
			plan.Name = v
		}
		if t, ok := plans.ParseTier(strings.TrimSpace(p.Metadata["tier"])); ok {
			plan.Tier = string(t)
		}
		plan.Tier = string(plans.PlanTier(&plan))

		isNew, err := plans.Upsert(db, plan)
		if err != nil {
			httpx.Error(c, h.log, apperrors.Internal("Failed to save plan", err))
			return
		}
		if isNew {
			created++
		} else {
			updated++
		}
		seen = append(seen, p.ID)
	}

	deactivated, err := plans.DeactivateMissing(db, seen)
	if err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to deactivate plans", err))
		return
	}

	h.log.Info("plans synced",
		zap.Int("created", created),
		zap.Int("updated", updated),
		zap.Int("skipped", skipped),
		zap.Int64("deactivated", deactivated))
	c.JSON(http.StatusOK, gin.H{
		"synced":      created + updated,
		"created":     created,
		"updated":     updated,
		"skipped":     skipped,
		"deactivated": deactivated,
	})
}

// GET /plans
func (h *Handler) ListPlans(c *gin.Context) {
	list, err := plans.ListActive(h.db.WithContext(c.Request.Context()), h.cfg.StripeProductID)
	if err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to load plans", err))
		return
	}
	c.JSON(http.StatusOK, list)
}
