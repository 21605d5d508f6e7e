package billing

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"highlight-api/internal/api/httpx"
	"highlight-api/internal/domain/billing"
	"highlight-api/internal/domain/plans"
	"highlight-api/internal/domain/users"
	"highlight-api/internal/infra/stripe"
	"highlight-api/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// POST /create-checkout-session
// Body: {"project_id": "...", "tier": "premium"} or {"project_id": "...", "price_id": "price_..."}.
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	if h.payments == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Payments are not configured"})
		return
	}

	var body struct {
		ProjectID string `json:"project_id"`
		Tier      string `json:"tier"`
		PriceID   string `json:"price_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || (body.Tier == "" && body.PriceID == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing tier or price_id"})
		return
	}

	project, ok := h.owned(c, body.ProjectID)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	db := h.db.WithContext(ctx)

	// allow-list: only prices mirrored into plans can be bought
	plan, err := h.planFor(c, body.Tier, body.PriceID)
	if err != nil {
		return
	}
	target := plans.PlanTier(&plan)
	if target == plans.TierFree {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Plan does not sell a paid tier"})
		return
	}

	pid := project.ID
	current := h.resolver.CurrentTier(ctx, &pid)
	if current.AtLeast(target) {
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("This project is already on the %s plan", current.Label())})
		return
	}

	user, err := users.FindByID(db, httpx.UserID(c))
	if err != nil {
		httpx.Error(c, h.log, apperrors.Unauthorized("User not found"))
		return
	}

	appURL := strings.TrimRight(h.cfg.AppURL, "/")
	session, err := h.payments.CreateCheckoutSession(ctx, stripe.CheckoutParams{
		PriceID:    plan.StripePriceID,
		Email:      user.Email,
		SuccessURL: appURL + "/projects/" + project.ID + "?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  appURL + "/projects/" + project.ID + "?canceled=1",
		Metadata: map[string]string{
			"project_id": project.ID,
			"user_id":    fmt.Sprint(user.ID),
			"plan_id":    fmt.Sprint(plan.ID),
			"tier":       string(target),
			"app_env":    h.cfg.AppEnv,
		},
	})
	if err != nil {
		httpx.Error(c, h.log, apperrors.External("Failed to create checkout session", err))
		return
	}

	planID := plan.ID
	purchase := billing.Purchase{
		UserID:          user.ID,
		ProjectID:       project.ID,
		PlanID:          &planID,
		Tier:            string(target),
		StripeSessionID: session.ID,
		AmountCents:     plan.PriceCents,
		Currency:        plan.Currency,
	}
	if err := billing.CreatePurchase(db, &purchase); err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to record checkout", err))
		return
	}

	h.log.Info("checkout started",
		zap.String("project_id", project.ID),
		zap.String("tier", string(target)),
		zap.String("session_id", session.ID))
	c.JSON(http.StatusOK, gin.H{"url": session.URL, "session_id": session.ID})
}

// planFor writes the error response itself when it fails.
func (h *Handler) planFor(c *gin.Context, tier, priceID string) (plans.Plan, error) {
	db := h.db.WithContext(c.Request.Context())
	var (
		plan plans.Plan
		err  error
	)
	if priceID != "" {
		plan, err = plans.FindByPriceID(db, priceID)
	} else {
		t, ok := plans.ParseTier(tier)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown tier"})
			return plans.Plan{}, errors.New("unknown tier")
		}
		plan, err = plans.FindForTier(db, t)
	}
	if errors.Is(err, plans.ErrNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown plan/price_id"})
		return plans.Plan{}, err
	}
	if err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to load plan", err))
		return plans.Plan{}, err
	}
	return plan, nil
}
