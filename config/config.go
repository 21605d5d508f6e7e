package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port       string `mapstructure:"PORT"`
	AppEnv     string `mapstructure:"APP_ENV"`
	AppURL     string `mapstructure:"APP_URL"`
	CORSOrigin string `mapstructure:"CORS_ORIGIN"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`
	DBURL      string `mapstructure:"DB_URL"`
	JWTSecret  string `mapstructure:"JWT_SECRET"`

	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	StripeProductID     string `mapstructure:"STRIPE_PRODUCT_ID"`

	MuxTokenID     string `mapstructure:"MUX_TOKEN_ID"`
	MuxTokenSecret string `mapstructure:"MUX_TOKEN_SECRET"`

	StorageDriver      string `mapstructure:"STORAGE_DRIVER"` // "supabase" | "s3"
	StorageBucket      string `mapstructure:"STORAGE_BUCKET"`
	SupabaseURL        string `mapstructure:"SUPABASE_URL"`
	SupabaseServiceKey string `mapstructure:"SUPABASE_SERVICE_KEY"`
	S3Endpoint         string `mapstructure:"S3_ENDPOINT"`
	S3Region           string `mapstructure:"S3_REGION"`
	S3AccessKey        string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey        string `mapstructure:"S3_SECRET_KEY"`

	SignedURLTTL time.Duration `mapstructure:"SIGNED_URL_TTL"`

	GoogleClientID         string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret     string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL      string `mapstructure:"GOOGLE_REDIRECT_URL"`
	GoogleFrontendRedirect string `mapstructure:"GOOGLE_FRONTEND_REDIRECT"`

	RedisURL              string `mapstructure:"REDIS_URL"`
	RateLimitPrefix       string `mapstructure:"RATE_LIMIT_PREFIX"`
	GuestUploadsPerMinute int    `mapstructure:"GUEST_UPLOADS_PER_MINUTE"`

	RabbitMQURL    string `mapstructure:"RABBITMQ_URL"`
	EventsExchange string `mapstructure:"EVENTS_EXCHANGE"`

	HTTPClientTimeout time.Duration `mapstructure:"HTTP_CLIENT_TIMEOUT"`
	PruneSchedule     string        `mapstructure:"PRUNE_SCHEDULE"`
	ReconcileSchedule string        `mapstructure:"RECONCILE_SCHEDULE"`
	StaleUploadAfter  time.Duration `mapstructure:"STALE_UPLOAD_AFTER"`
}

var keys = []string{
	"PORT", "APP_ENV", "APP_URL", "CORS_ORIGIN", "LOG_LEVEL", "DB_URL", "JWT_SECRET",
	"STRIPE_SECRET_KEY", "STRIPE_WEBHOOK_SECRET", "STRIPE_PRODUCT_ID",
	"MUX_TOKEN_ID", "MUX_TOKEN_SECRET",
	"STORAGE_DRIVER", "STORAGE_BUCKET", "SUPABASE_URL", "SUPABASE_SERVICE_KEY",
	"S3_ENDPOINT", "S3_REGION", "S3_ACCESS_KEY", "S3_SECRET_KEY", "SIGNED_URL_TTL",
	"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_REDIRECT_URL", "GOOGLE_FRONTEND_REDIRECT",
	"REDIS_URL", "RATE_LIMIT_PREFIX", "GUEST_UPLOADS_PER_MINUTE",
	"RABBITMQ_URL", "EVENTS_EXCHANGE",
	"HTTP_CLIENT_TIMEOUT", "PRUNE_SCHEDULE", "RECONCILE_SCHEDULE", "STALE_UPLOAD_AFTER",
}

// LoadEnv loads a .env file if present. System environment variables win.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}
}

// Load reads configuration from the environment (and an optional .env under path).
func Load(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_URL", "http://localhost:5173")
	v.SetDefault("CORS_ORIGIN", "http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_DRIVER", "supabase")
	v.SetDefault("STORAGE_BUCKET", "highlights")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("SIGNED_URL_TTL", "1h")
	v.SetDefault("RATE_LIMIT_PREFIX", "highlight:rate_limit")
	v.SetDefault("GUEST_UPLOADS_PER_MINUTE", 10)
	v.SetDefault("EVENTS_EXCHANGE", "highlight.events")
	v.SetDefault("HTTP_CLIENT_TIMEOUT", "30s")
	v.SetDefault("PRUNE_SCHEDULE", "@every 1m")
	v.SetDefault("RECONCILE_SCHEDULE", "@every 15m")
	v.SetDefault("STALE_UPLOAD_AFTER", "24h")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("failed to read config file, using environment: %v", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var missing []string
	if c.DBURL == "" {
		missing = append(missing, "DB_URL")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	switch c.StorageDriver {
	case "supabase", "s3":
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	return nil
}

func (c Config) StripeEnabled() bool { return c.StripeSecretKey != "" }

func (c Config) MuxEnabled() bool { return c.MuxTokenID != "" && c.MuxTokenSecret != "" }

func (c Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}
