package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment constants
const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

// Cache backend constants
const (
	CacheTypeMemory = "memory"
	CacheTypeRedis  = "redis"
)

type Config struct {
	// Server settings
	ServerAddr string
	Env        string // "dev" or "prod"

	// JWT settings
	JWTSecret     string
	JWTExpiration time.Duration

	// Microsoft OAuth (login / token issuance)
	MicrosoftClientID     string
	MicrosoftClientSecret string
	MicrosoftTenantID     string
	MicrosoftRedirectURL  string

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string // Database connection string (DSN or path)

	// Report cache
	CacheType      string // "memory" or "redis"
	ReportCacheTTL time.Duration

	// Redis (shared by the redis cache and the redis rate limit store)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// Observability
	EnableMetrics bool

	// Rate limiting
	EnableRateLimit   bool
	RequestsPerMinute int

	// Server timeouts
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	// Determine database driver and DSN
	driver := getEnv("DATABASE_DRIVER", "sqlite")
	var dsn string
	if driver == "sqlite" {
		dsn = getEnv("DATABASE_DSN", "marketpulse.db")
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	env := getEnv("ENV", EnvDev)

	// The OAuth consent screens redirect back to the frontend, which differs
	// per environment.
	redirectURL := getEnv("GOOGLE_REDIRECT_URL_PROD", "")
	msRedirectURL := getEnv("MICROSOFT_REDIRECT_URL_PROD", "")
	if env == EnvDev {
		redirectURL = getEnv("GOOGLE_REDIRECT_URL_DEV", "http://localhost:3000/google-oauth")
		msRedirectURL = getEnv("MICROSOFT_REDIRECT_URL_DEV", "http://localhost:3000/login")
	}

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		Env:        env,

		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTExpiration: getEnvDuration("JWT_EXPIRES_IN", 24*time.Hour),

		MicrosoftClientID:     getEnv("MICROSOFT_CLIENT_ID", ""),
		MicrosoftClientSecret: getEnv("MICROSOFT_CLIENT_SECRET", ""),
		MicrosoftTenantID:     getEnv("MICROSOFT_TENANT_ID", "common"),
		MicrosoftRedirectURL:  msRedirectURL,

		DatabaseDriver: driver,
		DatabaseDSN:    dsn,

		CacheType:      getEnv("CACHE_TYPE", CacheTypeMemory),
		ReportCacheTTL: getEnvDuration("REPORT_CACHE_TTL", time.Hour),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  redirectURL,

		EnableMetrics: getEnvBool("ENABLE_METRICS", false),

		EnableRateLimit:   getEnvBool("ENABLE_RATE_LIMIT", true),
		RequestsPerMinute: getEnvInt("RATE_LIMIT_RPM", 60),

		ReadTimeout:     getEnvDuration("READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    getEnvDuration("WRITE_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// Validate checks the configuration a running server cannot do without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.MicrosoftClientID == "" || c.MicrosoftClientSecret == "" {
		return fmt.Errorf("MICROSOFT_CLIENT_ID and MICROSOFT_CLIENT_SECRET are required")
	}
	if c.GoogleClientID == "" || c.GoogleClientSecret == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required")
	}
	if c.GoogleRedirectURL == "" {
		return fmt.Errorf("GOOGLE_REDIRECT_URL_%s is required", envSuffix(c.Env))
	}
	if c.DatabaseDriver != "sqlite" && c.DatabaseDriver != "postgres" {
		return fmt.Errorf("unsupported database driver: %s", c.DatabaseDriver)
	}
	if c.DatabaseDriver == "postgres" && c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required for the postgres driver")
	}
	if c.CacheType != CacheTypeMemory && c.CacheType != CacheTypeRedis {
		return fmt.Errorf("unsupported cache type: %s", c.CacheType)
	}
	if c.ReportCacheTTL <= 0 {
		return fmt.Errorf("REPORT_CACHE_TTL must be positive")
	}
	return nil
}

func envSuffix(env string) string {
	if env == EnvDev {
		return "DEV"
	}
	return "PROD"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
