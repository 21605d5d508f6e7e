package users

import (
	"net/http"
	"strings"

	"highlight-api/internal/api/httpx"
	"highlight-api/internal/domain/access"
	"highlight-api/internal/domain/projects"
	"highlight-api/internal/domain/users"
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

// GET /me
func (h *Handler) GetCurrentUser(c *gin.Context) {
	user, err := users.FindByID(h.db, httpx.UserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	list, err := projects.ListByUser(h.db, user.ID)
	if err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to load projects", err))
		return
	}

	c.JSON(http.StatusOK, MeResponse{
		User:     BuildUserDTO(user),
		Projects: BuildProjectAccess(c.Request.Context(), h.resolver, list),
	})
}

// PUT /me
func (h *Handler) UpdateCurrentUser(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}

	user, err := users.FindByID(h.db, httpx.UserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	user.Name = strings.TrimSpace(body.Name)
	if err := h.db.Model(&users.User{}).Where("id = ?", user.ID).Update("name", user.Name).Error; err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to update profile", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": BuildUserDTO(user)})
}
