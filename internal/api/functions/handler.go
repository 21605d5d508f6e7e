// Package functions serves the JSON action endpoints the client calls for
// video uploads, object storage and payment verification.
package functions

import (
	"errors"
	"net/http"

	"highlight-api/config"
	"highlight-api/internal/api/httpx"
	"highlight-api/internal/domain/access"
	"highlight-api/internal/domain/projects"
	"highlight-api/internal/infra/objectstore"
	"highlight-api/internal/infra/queue"
	"highlight-api/internal/infra/stripe"
	"highlight-api/internal/infra/videohost"
	"highlight-api/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Deps struct {
	DB        *gorm.DB
	Config    config.Config
	Log       *zap.Logger
	Resolver  *access.Resolver
	Host      videohost.Host
	Store     objectstore.Store
	Signer    *objectstore.Signer
	Payments  stripe.Gateway
	Publisher queue.Publisher
}

type Handler struct {
	Deps
}

func NewHandler(d Deps) *Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &Handler{Deps: d}
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

// failErr maps err to its status; server-side causes are logged, not returned.
func (h *Handler) failErr(c *gin.Context, err error) {
	status := apperrors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		h.Log.Error("function failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	fail(c, status, apperrors.Message(err))
}

func (h *Handler) ownedProject(c *gin.Context, projectID string) (projects.Project, bool) {
	if projectID == "" {
		fail(c, http.StatusBadRequest, "projectId is required")
		return projects.Project{}, false
	}
	p, err := projects.GetOwned(h.DB.WithContext(c.Request.Context()), projectID, httpx.UserID(c))
	if errors.Is(err, projects.ErrNotFound) {
		fail(c, http.StatusNotFound, "Project not found")
		return projects.Project{}, false
	}
	if err != nil {
		h.failErr(c, apperrors.Internal("Failed to load project", err))
		return projects.Project{}, false
	}
	return p, true
}
