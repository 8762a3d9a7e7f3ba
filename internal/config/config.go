package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	BlogSourceContentful = "contentful"
	BlogSourceDatabase   = "database"
)

const (
	defaultDBDriver     = "sqlite"
	defaultDBConnection = "./data/goaltrack.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	defaultTimezone     = "UTC"
	defaultContentPath  = "content"
)

type Config struct {
	// Application
	AppName     string
	AppEnv      string
	AppURL      string
	Port        string
	Timezone    string
	ContentPath string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret string
	JWTExpiry time.Duration

	// OAuth
	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string

	// Email
	EmailFrom    string
	ResendAPIKey string

	// Blog
	BlogSource            string // "database" or "contentful"
	ContentfulSpaceID     string
	ContentfulAccessToken string
	ContentfulEnvironment string

	// Observability (optional)
	SentryDSN      string
	MetricsEnabled bool

	// Export storage (S3-compatible, optional: archive export is disabled without a bucket)
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3Endpoint      string
	S3PresignExpiry time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		AppName:     envString("APP_NAME", "GoalTrack"),
		AppEnv:      envRequired("APP_ENV"), // 'development' or 'production'
		AppURL:      envRequired("APP_URL"), // base URL for OAuth redirects and email links
		Port:        envString("PORT", "8090"),
		Timezone:    envString("APP_TIMEZONE", defaultTimezone),
		ContentPath: envString("CONTENT_PATH", defaultContentPath),

		DBDriver:     envString("DB_DRIVER", defaultDBDriver),
		DBConnection: envString("DB_CONNECTION", defaultDBConnection),

		JWTSecret: envRequired("JWT_SECRET"),
		JWTExpiry: envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days

		GoogleClientID:     envString("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: envString("GOOGLE_CLIENT_SECRET", ""),
		GitHubClientID:     envString("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: envString("GITHUB_CLIENT_SECRET", ""),

		EmailFrom:    envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		BlogSource:            envString("BLOG_SOURCE", BlogSourceDatabase),
		ContentfulSpaceID:     envString("CONTENTFUL_SPACE_ID", ""),
		ContentfulAccessToken: envString("CONTENTFUL_ACCESS_TOKEN", ""),
		ContentfulEnvironment: envString("CONTENTFUL_ENVIRONMENT", "master"),

		SentryDSN:      envString("SENTRY_DSN", ""),
		MetricsEnabled: envBool("METRICS_ENABLED", true),

		S3Region:        envString("S3_REGION", "us-east-1"),
		S3Bucket:        envString("S3_BUCKET", ""),
		S3AccessKey:     envString("S3_ACCESS_KEY", ""),
		S3SecretKey:     envString("S3_SECRET_KEY", ""),
		S3Endpoint:      envString("S3_ENDPOINT", ""),
		S3PresignExpiry: envDuration("S3_PRESIGN_EXPIRY", 1*time.Hour),
	}

	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// LoadTools reads only what the maintenance CLI needs. Nothing is required.
func LoadTools() *Config {
	_ = godotenv.Load()

	return &Config{
		AppEnv:       envString("APP_ENV", "development"),
		Timezone:     envString("APP_TIMEZONE", defaultTimezone),
		ContentPath:  envString("CONTENT_PATH", defaultContentPath),
		DBDriver:     envString("DB_DRIVER", defaultDBDriver),
		DBConnection: envString("DB_CONNECTION", defaultDBConnection),
	}
}

// validateProduction ensures all required services are configured for production deployments.
// Development falls back to log-only email and the local blog table.
func validateProduction(cfg *Config) {
	if cfg.ResendAPIKey == "" {
		slog.Error("production deployment requires RESEND_API_KEY",
			"hint", "set APP_ENV=development for local testing with email log mode")
		os.Exit(1)
	}

	if cfg.BlogSource == BlogSourceContentful && (cfg.ContentfulSpaceID == "" || cfg.ContentfulAccessToken == "") {
		slog.Error("BLOG_SOURCE=contentful requires CONTENTFUL_SPACE_ID and CONTENTFUL_ACCESS_TOKEN")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// ExportStorageEnabled reports whether archive exports can be uploaded.
func (c *Config) ExportStorageEnabled() bool {
	return c.S3Bucket != ""
}

// Sanitized returns a copy of the config with only public/safe fields.
// Secrets and credentials are excluded so the copy is safe to put in the request context.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:    c.AppName,
		AppEnv:     c.AppEnv,
		AppURL:     c.AppURL,
		Port:       c.Port,
		Timezone:   c.Timezone,
		BlogSource: c.BlogSource,

		GoogleClientID: c.GoogleClientID,
		GitHubClientID: c.GitHubClientID,
	}
}
