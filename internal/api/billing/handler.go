// Package billing serves one-time tier purchases for projects.
package billing

import (
	"errors"
	"net/http"

	"highlight-api/config"
	"highlight-api/internal/api/httpx"
	"highlight-api/internal/domain/access"
	"highlight-api/internal/domain/billing"
	"highlight-api/internal/domain/projects"
	"highlight-api/internal/infra/stripe"
	"highlight-api/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	db       *gorm.DB
	subs     *billing.SubscriptionStore
	resolver *access.Resolver
	payments stripe.Gateway
	cfg      config.Config
	log      *zap.Logger
}

// NewHandler wires the billing endpoints. payments may be nil when Stripe is not configured.
func NewHandler(db *gorm.DB, subs *billing.SubscriptionStore, resolver *access.Resolver, payments stripe.Gateway, cfg config.Config, log *zap.Logger) *Handler {
	return &Handler{db: db, subs: subs, resolver: resolver, payments: payments, cfg: cfg, log: log}
}

func (h *Handler) owned(c *gin.Context, projectID string) (projects.Project, bool) {
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id is required"})
		return projects.Project{}, false
	}
	p, err := projects.GetOwned(h.db.WithContext(c.Request.Context()), projectID, httpx.UserID(c))
	if errors.Is(err, projects.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return projects.Project{}, false
	}
	if err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to load project", err))
		return projects.Project{}, false
	}
	return p, true
}
