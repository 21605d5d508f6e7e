package admin

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"highlight-api/internal/api/httpx"
	"highlight-api/internal/domain/billing"
	"highlight-api/internal/domain/projects"
	"highlight-api/internal/domain/users"
	"highlight-api/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AdminUser struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	AuthProvider string    `json:"auth_provider"`
	Projects     int64     `json:"projects"`
	CreatedAt    time.Time `json:"created_at"`
}

type AdminPurchase struct {
	ID          uint    `json:"id"`
	Email       string  `json:"email"`
	ProjectID   string  `json:"project_id"`
	Tier        string  `json:"tier"`
	AmountCents int64   `json:"amount_cents"`
	Currency    string  `json:"currency"`
	Status      string  `json:"status"`
	SessionID   string  `json:"session_id"`
	PaidAt      *string `json:"paid_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

type AdminStats struct {
	TotalUsers         int64               `json:"total_users"`
	TotalProjects      int64               `json:"total_projects"`
	TotalRevenueCents  int64               `json:"total_revenue_cents"`
	RecentRevenueCents int64               `json:"recent_revenue_cents"`
	ProjectsPerTier    []billing.TierCount `json:"projects_per_tier"`
}

type Handler struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewHandler(db *gorm.DB, log *zap.Logger) *Handler {
	return &Handler{db: db, log: log}
}

func (h *Handler) AdminDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the admin dashboard",
	})
}

func (h *Handler) ListAllUsers(c *gin.Context) {
	db := h.db.WithContext(c.Request.Context())

	var all []users.User
	if err := db.Order("created_at DESC").Find(&all).Error; err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to load users", err))
		return
	}

	type projectCount struct {
		UserID uint
		Count  int64
	}
	var counts []projectCount
	if err := db.Model(&projects.Project{}).
		Select("user_id, COUNT(id) AS count").
		Group("user_id").
		Scan(&counts).Error; err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to load users", err))
		return
	}
	perUser := make(map[uint]int64, len(counts))
	for _, pc := range counts {
		perUser[pc.UserID] = pc.Count
	}

	out := make([]AdminUser, 0, len(all))
	for _, u := range all {
		out = append(out, AdminUser{
			ID:           u.ID,
			Name:         u.Name,
			Email:        u.Email,
			Role:         u.Role,
			AuthProvider: u.AuthProvider,
			Projects:     perUser[u.ID],
			CreatedAt:    u.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) ListAllPurchases(c *gin.Context) {
	db := h.db.WithContext(c.Request.Context())

	var purchases []billing.Purchase
	if err := db.Order("created_at DESC").Find(&purchases).Error; err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to load purchases", err))
		return
	}

	emails := map[uint]string{}
	ids := make([]uint, 0, len(purchases))
	for _, p := range purchases {
		ids = append(ids, p.UserID)
	}
	if len(ids) > 0 {
		var us []users.User
		if err := db.Where("id IN ?", ids).Find(&us).Error; err != nil {
			httpx.Error(c, h.log, apperrors.Internal("Failed to load purchases", err))
			return
		}
		for _, u := range us {
			emails[u.ID] = u.Email
		}
	}

	result := make([]AdminPurchase, 0, len(purchases))
	for _, p := range purchases {
		row := AdminPurchase{
			ID:          p.ID,
			Email:       emails[p.UserID],
			ProjectID:   p.ProjectID,
			Tier:        p.Tier,
			AmountCents: p.AmountCents,
			Currency:    p.Currency,
			Status:      p.Status,
			SessionID:   p.StripeSessionID,
			CreatedAt:   p.CreatedAt.Format("2006-01-02 15:04"),
		}
		if p.PaidAt != nil {
			paid := p.PaidAt.Format("2006-01-02 15:04")
			row.PaidAt = &paid
		}
		result = append(result, row)
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetAdminStats(c *gin.Context) {
	db := h.db.WithContext(c.Request.Context())
	var stats AdminStats

	if err := db.Model(&users.User{}).Count(&stats.TotalUsers).Error; err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to load stats", err))
		return
	}
	if err := db.Model(&projects.Project{}).Count(&stats.TotalProjects).Error; err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to load stats", err))
		return
	}

	var err error
	if stats.TotalRevenueCents, err = billing.RevenueCents(db); err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to load stats", err))
		return
	}
	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	if stats.RecentRevenueCents, err = billing.RevenueCentsSince(db, thirtyDaysAgo); err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to load stats", err))
		return
	}
	if stats.ProjectsPerTier, err = billing.CountByTier(db); err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to load stats", err))
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetUserDetails(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}
	db := h.db.WithContext(c.Request.Context())

	user, err := users.FindByID(db, uint(id))
	if errors.Is(err, users.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to load user", err))
		return
	}

	owned, err := projects.ListByUser(db, user.ID)
	if err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to fetch projects", err))
		return
	}
	purchases, err := billing.ListPurchases(db, user.ID, "")
	if err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to fetch purchases", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":      user,
		"projects":  owned,
		"purchases": purchases,
	})
}
