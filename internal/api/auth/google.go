package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"sync"

	"highlight-api/config"
	"highlight-api/internal/api/httpx"
	"highlight-api/internal/domain/users"
	"highlight-api/pkg/apperrors"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

const googleIssuer = "https://accounts.google.com"

type googleAuth struct {
	oauth            *oauth2.Config
	frontendRedirect string

	once     sync.Once
	verifier *oidc.IDTokenVerifier
	initErr  error
}

func newGoogleAuth(cfg config.Config) *googleAuth {
	return &googleAuth{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		frontendRedirect: cfg.GoogleFrontendRedirect,
	}
}

// idVerifier discovers Google's signing keys on first use.
func (g *googleAuth) idVerifier(ctx context.Context) (*oidc.IDTokenVerifier, error) {
	g.once.Do(func() {
		provider, err := oidc.NewProvider(ctx, googleIssuer)
		if err != nil {
			g.initErr = err
			return
		}
		g.verifier = provider.Verifier(&oidc.Config{ClientID: g.oauth.ClientID})
	})
	return g.verifier, g.initErr
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GET /auth/google
func (h *Handler) GoogleStart(c *gin.Context) {
	if h.google == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Google sign-in is not enabled"})
		return
	}
	state, err := randomState()
	if err != nil {
		httpx.Error(c, h.log, apperrors.Internal("failed to generate state", err))
		return
	}

	secure := h.cfg.AppEnv == "production"
	c.SetCookie("oauth_state", state, 300, "/", "", secure, true)
	c.Redirect(http.StatusFound, h.google.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline))
}

// GET /auth/google/callback
func (h *Handler) GoogleCallback(c *gin.Context) {
	if h.google == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Google sign-in is not enabled"})
		return
	}
	state := c.Query("state")
	code := c.Query("code")
	if code == "" || state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code/state"})
		return
	}
	cookieState, err := c.Cookie("oauth_state")
	if err != nil || cookieState != state {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid oauth state"})
		return
	}

	ctx := c.Request.Context()
	tok, err := h.google.oauth.Exchange(ctx, code)
	if err != nil {
		h.log.Warn("google code exchange failed", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "failed to exchange code"})
		return
	}
	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing id_token"})
		return
	}

	claims, err := h.verifyGoogleIDToken(ctx, rawIDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	user, err := findOrCreateGoogleUser(h.db, claims)
	if err != nil {
		httpx.Error(c, h.log, apperrors.Internal("failed to create user", err))
		return
	}
	token, err := h.issue(user)
	if err != nil {
		httpx.Error(c, h.log, apperrors.Internal("could not create token", err))
		return
	}

	if h.google.frontendRedirect == "" {
		c.JSON(http.StatusOK, gin.H{"token": token})
		return
	}
	c.Redirect(http.StatusFound, h.google.frontendRedirect+"?token="+url.QueryEscape(token))
}

type googleIDClaims struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
}

func (h *Handler) verifyGoogleIDToken(ctx context.Context, rawIDToken string) (*googleIDClaims, error) {
	verifier, err := h.google.idVerifier(ctx)
	if err != nil {
		h.log.Error("google oidc discovery failed", zap.Error(err))
		return nil, errors.New("failed to init google oidc provider")
	}
	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, errors.New("invalid id_token")
	}

	var claims googleIDClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, errors.New("failed to decode token claims")
	}
	if claims.Email == "" || claims.Sub == "" {
		return nil, errors.New("token missing required claims")
	}
	if !claims.EmailVerified {
		return nil, errors.New("google email is not verified")
	}
	return &claims, nil
}

// findOrCreateGoogleUser matches by google sub, then links an existing email account,
// then creates a new user.
func findOrCreateGoogleUser(db *gorm.DB, gc *googleIDClaims) (users.User, error) {
	var user users.User
	if err := db.Where("google_sub = ?", gc.Sub).First(&user).Error; err == nil {
		return user, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return users.User{}, err
	}

	sub := gc.Sub
	user, err := users.FindByEmail(db, gc.Email)
	switch {
	case err == nil:
		if user.GoogleSub == nil {
			user.GoogleSub = &sub
			if err := db.Model(&user).Update("google_sub", sub).Error; err != nil {
				return users.User{}, err
			}
		}
		return user, nil
	case !errors.Is(err, users.ErrNotFound):
		return users.User{}, err
	}

	user = users.User{
		Name:         firstNonEmpty(gc.Name, gc.GivenName),
		Email:        users.NormalizeEmail(gc.Email),
		AuthProvider: users.ProviderGoogle,
		GoogleSub:    &sub,
		Role:         users.RoleUser,
	}
	if err := db.Create(&user).Error; err != nil {
		return users.User{}, err
	}
	return user, nil
}

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}
