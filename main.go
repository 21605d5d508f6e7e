package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"highlight-api/config"
	"highlight-api/database"
	accessapi "highlight-api/internal/api/access"
	adminapi "highlight-api/internal/api/admin"
	authapi "highlight-api/internal/api/auth"
	billingapi "highlight-api/internal/api/billing"
	"highlight-api/internal/api/functions"
	"highlight-api/internal/api/guest"
	plansapi "highlight-api/internal/api/plans"
	projectsapi "highlight-api/internal/api/projects"
	"highlight-api/internal/api/share"
	stripewebhooks "highlight-api/internal/api/stripewebhook"
	usersapi "highlight-api/internal/api/users"
	routes "highlight-api/internal/app/http"
	"highlight-api/internal/app/http/middleware"
	"highlight-api/internal/domain/access"
	"highlight-api/internal/domain/billing"
	"highlight-api/internal/infra/objectstore"
	"highlight-api/internal/infra/queue"
	"highlight-api/internal/infra/ratelimit"
	"highlight-api/internal/infra/stripe"
	"highlight-api/internal/infra/videohost"
	"highlight-api/internal/jobs"
	"highlight-api/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()
	cfg, err := config.Load(".")
	if err != nil {
		zap.NewExample().Fatal("config", zap.Error(err))
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.DBURL)
	if err != nil {
		log.Fatal("database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}
	log.Info("connected and migrated")

	ctx := context.Background()
	subs := billing.NewSubscriptionStore(db)
	resolver := access.NewResolver(subs, log.Named("access"))

	if !cfg.MuxEnabled() {
		log.Warn("MUX_TOKEN_ID/MUX_TOKEN_SECRET not set, video uploads will fail")
	}
	host := videohost.NewClient(cfg.MuxTokenID, cfg.MuxTokenSecret, cfg.HTTPClientTimeout)

	store, err := newObjectStore(ctx, cfg)
	if err != nil {
		log.Fatal("object storage", zap.Error(err))
	}
	signer := objectstore.NewSigner(store, cfg.SignedURLTTL)

	var payments stripe.Gateway
	if cfg.StripeEnabled() {
		payments = stripe.NewClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	} else {
		log.Warn("STRIPE_SECRET_KEY not set, payments disabled")
	}

	publisher := newPublisher(cfg, log)
	defer publisher.Close()

	limiter, memLimiter := newGuestLimiter(cfg, log)

	maintenance := jobs.New(db, host, cfg.StaleUploadAfter, log.Named("jobs"))
	maintenance.AddPruner("signed-urls", signer)
	if memLimiter != nil {
		maintenance.AddPruner("guest-rate-limit", memLimiter)
	}
	scheduler := jobs.NewScheduler(maintenance, log.Named("cron"))
	if err := scheduler.Start(cfg.PruneSchedule, cfg.ReconcileSchedule); err != nil {
		log.Fatal("scheduler", zap.Error(err))
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log.Named("http")))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Handlers{
		Auth:     authapi.NewHandler(db, cfg, log),
		Users:    usersapi.NewHandler(db, resolver, log),
		Projects: projectsapi.NewHandler(db, subs, resolver, cfg, log),
		Guest:    guest.NewHandler(db, resolver, host, cfg, log),
		Share:    share.NewHandler(db, resolver, log),
		Access:   accessapi.NewHandler(db, resolver, log),
		Functions: functions.NewHandler(functions.Deps{
			DB:        db,
			Config:    cfg,
			Log:       log.Named("functions"),
			Resolver:  resolver,
			Host:      host,
			Store:     store,
			Signer:    signer,
			Payments:  payments,
			Publisher: publisher,
		}),
		Billing: billingapi.NewHandler(db, subs, resolver, payments, cfg, log),
		Plans:   plansapi.NewHandler(db, payments, cfg, log),
		Webhook: stripewebhooks.NewHandler(db, payments, log.Named("stripe")),
		Admin:   adminapi.NewHandler(db, log),
	}, routes.Options{
		JWTSecret:    cfg.JWTSecret,
		Resolver:     resolver,
		GuestLimiter: limiter,
		Log:          log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	<-scheduler.Stop().Done()
	log.Info("stopped")
}

func newObjectStore(ctx context.Context, cfg config.Config) (objectstore.Store, error) {
	if cfg.StorageDriver == "s3" {
		return objectstore.NewS3(ctx, objectstore.S3Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.StorageBucket,
		})
	}
	if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
		return nil, errors.New("SUPABASE_URL and SUPABASE_SERVICE_KEY are required for the supabase driver")
	}
	return objectstore.NewSupabase(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.StorageBucket), nil
}

// newPublisher falls back to logging events when RabbitMQ is unset or unreachable.
func newPublisher(cfg config.Config, log *zap.Logger) queue.Publisher {
	if cfg.RabbitMQURL == "" {
		log.Warn("RABBITMQ_URL not set, highlight jobs will only be logged")
		return queue.NewFallbackPublisher(log.Named("queue"))
	}
	p, err := queue.NewAMQPPublisher(cfg.RabbitMQURL, cfg.EventsExchange, log.Named("queue"))
	if err != nil {
		log.Error("rabbitmq unavailable, falling back to log publisher", zap.Error(err))
		return queue.NewFallbackPublisher(log.Named("queue"))
	}
	return p
}

// newGuestLimiter prefers Redis so limits hold across replicas. The in-process
// limiter is returned separately so its windows can be pruned.
func newGuestLimiter(cfg config.Config, log *zap.Logger) (ratelimit.Limiter, *ratelimit.Memory) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err == nil {
			client := redis.NewClient(opts)
			return ratelimit.NewRedis(client, cfg.RateLimitPrefix, cfg.GuestUploadsPerMinute, time.Minute), nil
		}
		log.Error("invalid REDIS_URL, using in-process rate limiter", zap.Error(err))
	}
	mem := ratelimit.NewMemory(cfg.GuestUploadsPerMinute, time.Minute)
	return mem, mem
}
