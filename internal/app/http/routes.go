package routes

import (
	"net/http"

	accessapi "highlight-api/internal/api/access"
	adminapi "highlight-api/internal/api/admin"
	authapi "highlight-api/internal/api/auth"
	"highlight-api/internal/api/billing"
	"highlight-api/internal/api/functions"
	"highlight-api/internal/api/guest"
	"highlight-api/internal/api/plans"
	projectsapi "highlight-api/internal/api/projects"
	"highlight-api/internal/api/share"
	stripewebhooks "highlight-api/internal/api/stripewebhook"
	"highlight-api/internal/api/users"
	"highlight-api/internal/app/http/middleware"
	"highlight-api/internal/domain/access"
	"highlight-api/internal/infra/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handlers groups every endpoint handler mounted by RegisterRoutes.
type Handlers struct {
	Auth      *authapi.Handler
	Users     *users.Handler
	Projects  *projectsapi.Handler
	Guest     *guest.Handler
	Share     *share.Handler
	Access    *accessapi.Handler
	Functions *functions.Handler
	Billing   *billing.Handler
	Plans     *plans.Handler
	Webhook   *stripewebhooks.Handler
	Admin     *adminapi.Handler
}

type Options struct {
	JWTSecret    string
	Resolver     *access.Resolver
	GuestLimiter ratelimit.Limiter
	Log          *zap.Logger
}

// Keys whose values must reach handlers byte-for-byte.
var rawInputKeys = []string{"password", "old_password", "new_password", "fileContent"}

func RegisterRoutes(r *gin.Engine, h Handlers, o Options) {
	r.POST("/webhook", h.Webhook.StripeWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := r.Group("/")
	public.Use(middleware.SanitizeJSON(rawInputKeys...))

	public.POST("/register", h.Auth.Register)
	public.POST("/login", h.Auth.Login)
	public.GET("/plans", h.Plans.ListPlans)
	public.GET("/auth/google", h.Auth.GoogleStart)
	public.GET("/auth/google/callback", h.Auth.GoogleCallback)

	// QR code and share pages need no account
	public.GET("/guest/:qrCode", h.Guest.Info)
	public.POST("/guest/:qrCode/uploads",
		middleware.RateLimit(o.GuestLimiter, "guest-upload", o.Log),
		h.Guest.CreateUpload)
	public.GET("/share/:projectId", h.Share.Get)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(o.JWTSecret), middleware.SanitizeJSON(rawInputKeys...))
	auth.GET("/me", h.Users.GetCurrentUser)
	auth.PUT("/me", h.Users.UpdateCurrentUser)
	auth.POST("/change-password", h.Auth.ChangePassword)

	auth.POST("/projects", h.Projects.Create)
	auth.GET("/projects", h.Projects.List)
	auth.GET("/projects/:projectId", h.Projects.Get)
	auth.PUT("/projects/:projectId", h.Projects.Update)
	auth.GET("/projects/:projectId/qr", h.Projects.QRCode)
	auth.GET("/live-feed/:projectId",
		h.Projects.RequireOwner,
		middleware.RequireFeature(o.Resolver, access.FeatureLiveFeed, "projectId"),
		h.Projects.LiveFeed)

	auth.GET("/entitlements/:feature", h.Access.Entitlement)
	auth.POST("/uploads/validate", h.Access.ValidateUploads)

	auth.POST("/functions/video-upload", h.Functions.VideoUpload)
	auth.POST("/functions/storage", h.Functions.Storage)
	auth.POST("/functions/verify-payment", h.Functions.VerifyPayment)

	auth.GET("/subscription", h.Billing.GetSubscription)
	auth.GET("/payments", h.Billing.GetPaymentHistory)
	auth.POST("/create-checkout-session", h.Billing.CreateCheckoutSession)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(o.JWTSecret), middleware.RequireRole("admin"))
	admin.GET("/dashboard", h.Admin.AdminDashboard)
	admin.GET("/users", h.Admin.ListAllUsers)
	admin.GET("/user/:id", h.Admin.GetUserDetails)
	admin.GET("/purchases", h.Admin.ListAllPurchases)
	admin.GET("/stats", h.Admin.GetAdminStats)
	admin.POST("/sync-plans", h.Plans.SyncPlansFromStripe)
}
