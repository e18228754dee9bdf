package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver         string
	DBConnection     string
	DBMaxOpenConns   int
	DBAcquireTimeout time.Duration

	// Security
	JWTSecret       string
	JWTExpiry       time.Duration
	BcryptCost      int
	AuthRateLimit   int // 0 disables the limiter
	AuthRateWindow  time.Duration
	CORSOrigins     []string
	MaxJSONBodySize int64

	// Email
	EmailFrom    string
	ResendAPIKey string

	// Observability (optional)
	SentryDSN string

	// Storage: "local" writes under UploadDir, "s3" uses any S3-compatible bucket
	StorageDriver string
	UploadDir     string
	S3Region      string
	S3Bucket      string
	S3AccessKey   string
	S3SecretKey   string
	S3Endpoint    string // Optional: for S3-compatible services (MinIO, R2, etc.)
}

var defaultCORSOrigins = []string{
	"http://localhost:5173",
	"http://localhost:5174",
	"http://localhost:5175",
	"http://127.0.0.1:5173",
	"http://127.0.0.1:5174",
	"http://127.0.0.1:5175",
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "Blog"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:  envString("APP_URL", "http://localhost:5173"),
		Port:    envString("PORT", "5000"),

		// Database
		DBDriver:         envString("DB_DRIVER", "sqlite"),
		DBConnection:     envString("DB_CONNECTION", "./data/blog.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"),
		DBMaxOpenConns:   envInt("DB_MAX_OPEN_CONNS", 10),
		DBAcquireTimeout: envDuration("DB_ACQUIRE_TIMEOUT", 60*time.Second),

		// Security
		JWTSecret:       envRequired("JWT_SECRET"),
		JWTExpiry:       envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days
		BcryptCost:      envInt("BCRYPT_COST", 12),
		AuthRateLimit:   envInt("AUTH_RATE_LIMIT", 20),
		AuthRateWindow:  envDuration("AUTH_RATE_WINDOW", 15*time.Minute),
		CORSOrigins:     envList("CORS_ORIGINS", defaultCORSOrigins),
		MaxJSONBodySize: int64(envInt("MAX_JSON_BODY_SIZE", 10<<20)),

		// Email (RESEND_API_KEY optional in development, required in production)
		EmailFrom:    envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage
		StorageDriver: envString("STORAGE_DRIVER", "local"),
		UploadDir:     envString("UPLOAD_DIR", "uploads"),
	}

	if cfg.StorageDriver == "s3" {
		cfg.S3Region = envRequired("S3_REGION")
		cfg.S3Bucket = envRequired("S3_BUCKET")
		cfg.S3AccessKey = envString("S3_ACCESS_KEY", "")
		cfg.S3SecretKey = envString("S3_SECRET_KEY", "")
		cfg.S3Endpoint = envString("S3_ENDPOINT", "")
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures all required services are configured for production deployments.
// Development allows email to run in log mode for easier local testing.
func validateProduction(cfg *Config) {
	if cfg.ResendAPIKey == "" {
		slog.Error("production deployment requires RESEND_API_KEY",
			"hint", "set APP_ENV=development for local testing with email log mode")
		os.Exit(1)
	}
	if len(cfg.JWTSecret) < 32 {
		slog.Error("production deployment requires a JWT_SECRET of at least 32 bytes")
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

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
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

// envList reads a comma separated list, dropping empty entries.
func envList(key string, def []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
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

// UsesLocalStorage reports whether uploads live on the local disk and
// should be served from /uploads/.
func (c *Config) UsesLocalStorage() bool {
	return c.StorageDriver == "" || c.StorageDriver == "local"
}
