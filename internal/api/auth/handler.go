package auth

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"highlight-api/config"
	"highlight-api/internal/api/httpx"
	"highlight-api/internal/domain/users"
	"highlight-api/internal/infra/authtoken"
	"highlight-api/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

type Handler struct {
	db     *gorm.DB
	cfg    config.Config
	log    *zap.Logger
	google *googleAuth
}

func NewHandler(db *gorm.DB, cfg config.Config, log *zap.Logger) *Handler {
	h := &Handler{db: db, cfg: cfg, log: log}
	if cfg.GoogleEnabled() {
		h.google = newGoogleAuth(cfg)
	}
	return h
}

func isPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter := false
	hasDigit := false
	for _, c := range password {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
			hasLetter = true
		case '0' <= c && c <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

func (h *Handler) Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name, email and password are required"})
		return
	}

	email := users.NormalizeEmail(input.Email)
	if !emailPattern.MatchString(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email format"})
		return
	}
	if !isPasswordStrong(input.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters long and contain both letters and numbers"})
		return
	}

	if _, err := users.FindByEmail(h.db, email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
		return
	} else if !errors.Is(err, users.ErrNotFound) {
		httpx.Error(c, h.log, apperrors.Internal("Failed to create account", err))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to hash password", err))
		return
	}
	pw := string(hashed)

	user := users.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		Password:     &pw,
		AuthProvider: users.ProviderLocal,
		Role:         users.RoleUser,
	}
	if err := h.db.Create(&user).Error; err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to create account", err))
		return
	}

	token, err := h.issue(user)
	if err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Could not create token", err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token})
}

func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	user, err := users.FindByEmail(h.db, input.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if user.Password == nil || *user.Password == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "This account uses Google sign-in"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.issue(user)
	if err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Could not create token", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var body struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if !isPasswordStrong(body.NewPassword) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "New password must be at least 8 characters with letters and numbers"})
		return
	}

	user, err := users.FindByID(h.db, httpx.UserID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	if user.Password == nil || *user.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "This account does not have a password. Sign in with Google instead.",
		})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(body.OldPassword)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Old password is incorrect"})
		return
	}

	hashedNew, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to hash password", err))
		return
	}
	if err := h.db.Model(&user).Update("password", string(hashedNew)).Error; err != nil {
		httpx.Error(c, h.log, apperrors.Internal("Failed to update password", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

func (h *Handler) issue(user users.User) (string, error) {
	return authtoken.Issue(h.cfg.JWTSecret, authtoken.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, authtoken.DefaultTTL)
}
