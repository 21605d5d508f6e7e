package projects

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"highlight-api/config"
	"highlight-api/internal/api/httpx"
	"highlight-api/internal/domain/access"
	"highlight-api/internal/domain/billing"
	"highlight-api/internal/domain/projects"
	"highlight-api/internal/domain/videos"
	"highlight-api/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	db       *gorm.DB
	subs     *billing.SubscriptionStore
	resolver *access.Resolver
	cfg      config.Config
	log      *zap.Logger
}

func NewHandler(db *gorm.DB, subs *billing.SubscriptionStore, resolver *access.Resolver, cfg config.Config, log *zap.Logger) *Handler {
	return &Handler{db: db, subs: subs, resolver: resolver, cfg: cfg, log: log}
}

func (h *Handler) dto(p projects.Project) ProjectDTO {
	return ProjectDTO{
		Project:  p,
		GuestURL: projects.GuestURL(h.cfg.AppURL, p.QRCode),
		ShareURL: projects.ShareURL(h.cfg.AppURL, p.ID),
	}
}

type ProjectDTO struct {
	projects.Project
	GuestURL string `json:"guestUrl"`
	ShareURL string `json:"shareUrl"`
}

// POST /projects
func (h *Handler) Create(c *gin.Context) {
	var body struct {
		Title     string `json:"title"`
		EventDate string `json:"eventDate"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	p := projects.Project{UserID: httpx.UserID(c), Title: body.Title}
	if body.EventDate != "" {
		d, err := time.Parse("2006-01-02", body.EventDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "eventDate must be YYYY-MM-DD"})
			return
		}
		p.EventDate = &d
	}

	ctx := c.Request.Context()
	if err := projects.Create(h.db.WithContext(ctx), &p); err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to create project", err))
		return
	}
	if err := h.subs.Ensure(ctx, p.ID, p.UserID); err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to create project subscription", err))
		return
	}
	c.JSON(http.StatusCreated, h.dto(p))
}

// GET /projects
func (h *Handler) List(c *gin.Context) {
	list, err := projects.ListByUser(h.db.WithContext(c.Request.Context()), httpx.UserID(c))
	if err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to load projects", err))
		return
	}
	out := make([]ProjectDTO, 0, len(list))
	for _, p := range list {
		out = append(out, h.dto(p))
	}
	c.JSON(http.StatusOK, out)
}

// GET /projects/:projectId
func (h *Handler) Get(c *gin.Context) {
	p, ok := h.owned(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	list, err := videos.ListByProject(h.db.WithContext(ctx), p.ID)
	if err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to load videos", err))
		return
	}
	id := p.ID
	c.JSON(http.StatusOK, gin.H{
		"project": h.dto(p),
		"videos":  list,
		"access":  access.PolicyFor(h.resolver.CurrentTier(ctx, &id)),
	})
}

// PUT /projects/:projectId
func (h *Handler) Update(c *gin.Context) {
	p, ok := h.owned(c)
	if !ok {
		return
	}
	var body struct {
		Title    *string `json:"title"`
		IsShared *bool   `json:"isShared"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	updates := map[string]interface{}{}
	if body.Title != nil {
		title := strings.TrimSpace(*body.Title)
		if title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title cannot be empty"})
			return
		}
		updates["title"] = title
		p.Title = title
	}
	if body.IsShared != nil {
		if *body.IsShared {
			id := p.ID
			ent := h.resolver.Resolve(c.Request.Context(), access.FeatureShareLinks, &id)
			if !ent.HasAccess {
				c.JSON(http.StatusPaymentRequired, gin.H{"error": ent.UpgradeMessage, "entitlement": ent})
				return
			}
		}
		updates["is_shared"] = *body.IsShared
		p.IsShared = *body.IsShared
	}
	if len(updates) > 0 {
		if err := h.db.WithContext(c.Request.Context()).Model(&projects.Project{}).Where("id = ?", p.ID).Updates(updates).Error; err != nil {
			httpx.Error(c, h.log, apperrors.Internal("Failed to update project", err))
			return
		}
	}
	c.JSON(http.StatusOK, h.dto(p))
}

// GET /projects/:projectId/qr
func (h *Handler) QRCode(c *gin.Context) {
	p, ok := h.owned(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"qrCode": p.QRCode, "guestUrl": projects.GuestURL(h.cfg.AppURL, p.QRCode)})
}

// GET /live-feed/:projectId?since=RFC3339
func (h *Handler) LiveFeed(c *gin.Context) {
	p, ok := ownedFromContext(c)
	if !ok {
		if p, ok = h.owned(c); !ok {
			return
		}
	}
	since := time.Time{}
	if raw := c.Query("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be an RFC3339 timestamp"})
			return
		}
		since = t
	}

	list, err := videos.ListReadySince(h.db.WithContext(c.Request.Context()), p.ID, since)
	if err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to load live feed", err))
		return
	}
	items := make([]FeedItem, 0, len(list))
	for _, v := range list {
		items = append(items, feedItem(v))
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "serverTime": time.Now().UTC().Format(time.RFC3339)})
}

const ownedProjectKey = "owned_project"

// RequireOwner stops the chain with 404 unless the caller owns :projectId.
// It runs ahead of feature gates so another user's project tier is never revealed.
func (h *Handler) RequireOwner(c *gin.Context) {
	p, ok := h.owned(c)
	if !ok {
		c.Abort()
		return
	}
	c.Set(ownedProjectKey, p)
	c.Next()
}

func ownedFromContext(c *gin.Context) (projects.Project, bool) {
	v, ok := c.Get(ownedProjectKey)
	if !ok {
		return projects.Project{}, false
	}
	p, ok := v.(projects.Project)
	return p, ok
}

func (h *Handler) owned(c *gin.Context) (projects.Project, bool) {
	p, err := projects.GetOwned(h.db.WithContext(c.Request.Context()), c.Param("projectId"), httpx.UserID(c))
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
