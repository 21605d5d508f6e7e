// Package share serves the public playback page of a shared project.
package share

import (
	"errors"
	"net/http"

	"highlight-api/internal/api/httpx"
	"highlight-api/internal/domain/access"
	"highlight-api/internal/domain/projects"
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
	log      *zap.Logger
}

func NewHandler(db *gorm.DB, resolver *access.Resolver, log *zap.Logger) *Handler {
	return &Handler{db: db, resolver: resolver, log: log}
}

type item struct {
	ID           string `json:"id"`
	Kind         string `json:"kind"`
	FileName     string `json:"fileName"`
	PlaybackURL  string `json:"playbackUrl,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// GET /share/:projectId
// Unshared projects and projects whose tier lost share_links answer 404.
func (h *Handler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := projects.Get(h.db.WithContext(ctx), c.Param("projectId"))
	if errors.Is(err, projects.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	if err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to load project", err))
		return
	}

	id := p.ID
	tier := h.resolver.CurrentTier(ctx, &id)
	if !p.IsShared || !access.Decide(access.FeatureShareLinks, tier).HasAccess {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	list, err := videos.ListPlayable(h.db.WithContext(ctx), p.ID)
	if err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to load videos", err))
		return
	}
	items := make([]item, 0, len(list))
	for _, v := range list {
		it := item{ID: v.ID, Kind: v.Kind, FileName: v.FileName}
		if v.PlaybackID != nil {
			it.PlaybackURL = videohost.PlaybackURL(*v.PlaybackID)
			it.ThumbnailURL = videohost.ThumbnailURL(*v.PlaybackID)
		}
		items = append(items, it)
	}

	policy := access.PolicyFor(tier)
	c.JSON(http.StatusOK, gin.H{
		"title":     p.Title,
		"eventDate": p.EventDate,
		"videos":    items,
		"watermark": policy.Watermark,
		"branding":  access.Decide(access.FeatureCustomBranding, tier).HasAccess,
	})
}
