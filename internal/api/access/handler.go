// Package access exposes the entitlement resolver and the upload validator over HTTP.
package access

import (
	"errors"
	"net/http"

	"highlight-api/internal/api/httpx"
	"highlight-api/internal/domain/access"
	"highlight-api/internal/domain/projects"
	"highlight-api/internal/domain/uploads"
	"highlight-api/internal/domain/videos"
	"highlight-api/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	db       *gorm.DB
	resolver *access.Resolver
	log      *zap.Logger
}

func NewHandler(db *gorm.DB, resolver *access.Resolver, log *zap.Logger) *Handler {
	return &Handler{db: db, resolver: resolver, log: log}
}

// GET /entitlements/:feature?project_id=
func (h *Handler) Entitlement(c *gin.Context) {
	var projectID *string
	if id := c.Query("project_id"); id != "" {
		if !h.ownsProject(c, id) {
			return
		}
		projectID = &id
	}
	c.JSON(http.StatusOK, h.resolver.Resolve(c.Request.Context(), c.Param("feature"), projectID))
}

type validateRequest struct {
	Files           []uploads.Candidate `json:"files"`
	AlreadySelected []string            `json:"alreadySelected"`
	ProjectID       string              `json:"projectId"`
}

// POST /uploads/validate
// With a projectId the project's stored raw footage is checked for duplicate names.
func (h *Handler) ValidateUploads(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	var stored []string
	if req.ProjectID != "" {
		if !h.ownsProject(c, req.ProjectID) {
			return
		}
		names, err := videos.FileNames(h.db.WithContext(c.Request.Context()), req.ProjectID)
		if err != nil {
			httpx.Error(c, h.log, apperrors.Internal("Failed to load project files", err))
			return
		}
		stored = names
	}

	c.JSON(http.StatusOK, uploads.ValidateStored(req.Files, req.AlreadySelected, stored))
}

func (h *Handler) ownsProject(c *gin.Context, id string) bool {
	_, err := projects.GetOwned(h.db.WithContext(c.Request.Context()), id, httpx.UserID(c))
	if errors.Is(err, projects.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return false
	}
	if err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to load project", err))
		return false
	}
	return true
}
