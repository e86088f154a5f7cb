package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	Environment string
	HTTPAddr    string
	DatabaseURL string

	// Optional infrastructure. Empty values disable the feature.
	RedisAddr   string
	NatsURL     string
	AuditDBPath string

	// Payment gateway credentials. KeyID is public (shared with clients for
	// checkout); KeySecret signs and verifies settlement proofs.
	GatewayBaseURL   string
	GatewayKeyID     string
	GatewayKeySecret string

	// Operator (admin dashboard) authentication.
	AdminEmail        string
	AdminPasswordHash string
	AdminJWTSecret    string

	MaxBodyBytes          int64
	RateLimitCapacity     int
	RateLimitRefillPerSec float64
}

// Load reads configuration from the environment. A local .env file is loaded
// first when present, matching how the deployment platform injects vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment:           getenv("APP_ENV", "development"),
		HTTPAddr:              getenv("API_ADDR", ":8080"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		NatsURL:               os.Getenv("NATS_URL"),
		AuditDBPath:           getenv("AUDIT_DB_PATH", "audit.db"),
		GatewayBaseURL:        getenv("GATEWAY_BASE_URL", "https://api.razorpay.com"),
		GatewayKeyID:          os.Getenv("GATEWAY_KEY_ID"),
		GatewayKeySecret:      os.Getenv("GATEWAY_KEY_SECRET"),
		AdminEmail:            os.Getenv("ADMIN_EMAIL"),
		AdminPasswordHash:     os.Getenv("ADMIN_PASSWORD_HASH"),
		AdminJWTSecret:        os.Getenv("ADMIN_JWT_SECRET"),
		MaxBodyBytes:          int64(getenvInt("API_MAX_BODY_BYTES", 1<<20)),
		RateLimitCapacity:     getenvInt("API_RATE_LIMIT_CAPACITY", 20),
		RateLimitRefillPerSec: float64(getenvInt("API_RATE_LIMIT_REFILL_PER_SEC", 10)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var missing []string

	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.GatewayKeyID == "" {
		missing = append(missing, "GATEWAY_KEY_ID")
	}
	if c.GatewayKeySecret == "" {
		missing = append(missing, "GATEWAY_KEY_SECRET")
	}
	if c.AdminJWTSecret == "" {
		missing = append(missing, "ADMIN_JWT_SECRET")
	}

	if len(missing) > 0 {
		return errors.New("missing required environment variables: " + strings.Join(missing, ", "))
	}

	// Operator login is mandatory outside development; locally the admin
	// surface can stay locked without credentials.
	if c.Environment == "production" || c.Environment == "staging" {
		if c.AdminEmail == "" || c.AdminPasswordHash == "" {
			return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD_HASH are required in " + c.Environment)
		}
	}

	return nil
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
