// Package guest serves the unauthenticated endpoints behind a project's QR code.
package guest

import (
	"errors"
	"net/http"

	"highlight-api/config"
	"highlight-api/internal/api/httpx"
	"highlight-api/internal/domain/access"
	"highlight-api/internal/domain/projects"
	"highlight-api/internal/domain/uploads"
	"highlight-api/internal/domain/videos"
	"highlight-api/internal/infra/videohost"
	"highlight-api/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	db       *gorm.DB
	resolver *access.Resolver
	host     videohost.Host
	cfg      config.Config
	log      *zap.Logger
}

func NewHandler(db *gorm.DB, resolver *access.Resolver, host videohost.Host, cfg config.Config, log *zap.Logger) *Handler {
	return &Handler{db: db, resolver: resolver, host: host, cfg: cfg, log: log}
}

// GET /guest/:qrCode
func (h *Handler) Info(c *gin.Context) {
	p, ok := h.project(c)
	if !ok {
		return
	}
	id := p.ID
	ent := h.resolver.Resolve(c.Request.Context(), access.FeatureGuestUploads, &id)
	c.JSON(http.StatusOK, gin.H{
		"projectTitle":  p.Title,
		"eventDate":     p.EventDate,
		"uploadsOpen":   ent.HasAccess,
		"maxFileSize":   uploads.MaxFileSize,
		"acceptedTypes": uploads.AcceptedTypes(),
	})
}

// POST /guest/:qrCode/uploads
func (h *Handler) CreateUpload(c *gin.Context) {
	p, ok := h.project(c)
	if !ok {
		return
	}
	var body struct {
		FileName string `json:"fileName"`
		MimeType string `json:"mimeType"`
		FileSize int64  `json:"fileSize"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.FileName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fileName is required"})
		return
	}

	ctx := c.Request.Context()
	id := p.ID
	ent := h.resolver.Resolve(ctx, access.FeatureGuestUploads, &id)
	if !ent.HasAccess {
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "Guest uploads are not enabled for this event", "entitlement": ent})
		return
	}

	existing, err := videos.FileNames(h.db.WithContext(ctx), p.ID)
	if err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to load project files", err))
		return
	}
	candidate := uploads.Candidate{Name: body.FileName, MimeType: body.MimeType, Size: body.FileSize}
	if rej, ok := uploads.ValidateOne(candidate, existing); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": rej.Message, "reason": rej.Reason})
		return
	}

	v := videos.Video{
		ProjectID: p.ID,
		Source:    videos.SourceGuest,
		FileName:  body.FileName,
		MimeType:  body.MimeType,
		SizeBytes: body.FileSize,
	}
	uploadURL, err := videos.StartDirectUpload(ctx, h.db, h.host, h.cfg.CORSOrigin, &v)
	if err != nil {
		httpx.Error(c, h.log, err)
		return
	}
	h.log.Info("guest upload started", zap.String("project_id", p.ID), zap.String("video_id", v.ID))
	c.JSON(http.StatusCreated, gin.H{"uploadUrl": uploadURL, "videoId": v.ID})
}

func (h *Handler) project(c *gin.Context) (projects.Project, bool) {
	p, err := projects.FindByQRCode(h.db.WithContext(c.Request.Context()), c.Param("qrCode"))
	if errors.Is(err, projects.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return projects.Project{}, false
	}
	if err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to load event", err))
		return projects.Project{}, false
	}
	return p, true
}
