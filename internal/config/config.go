package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultSessionSecret = "change-me-in-production"

// Config holds the whole application configuration, populated from the
// environment (a .env file is loaded first by each cmd).
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	MinIO    MinIOConfig
	Worker   WorkerConfig
	Cache    CacheConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	LogLevel    string
	CORSOrigins []string
}

// DatabaseConfig carries the call-site retry policy and tracer threshold;
// connection settings are read by LoadDatabaseConfig.
type DatabaseConfig struct {
	RetryAttempts      int
	RetryStep          time.Duration
	RetryMax           time.Duration
	SlowQueryThreshold time.Duration
}

type RedisConfig struct {
	Host      string
	Password  string
	DB        int
	KeyPrefix string
}

type SessionConfig struct {
	Secret       string
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
	// Failed logins per email before the account is locked for LockoutTTL.
	MaxFailedLogins int
	LockoutTTL      time.Duration
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

type WorkerConfig struct {
	Concurrency int
	// SlugAuditCron is a cron spec; empty disables the nightly audit.
	SlugAuditCron string
	Timezone      string
}

type CacheConfig struct {
	// ResponseTTL is how long list/detail bodies stay cached; zero disables.
	ResponseTTL time.Duration
}

// Load reads config from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "CineNacional API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			RetryAttempts:      getEnvInt("DB_QUERY_RETRY_ATTEMPTS", 3),
			RetryStep:          getEnvDuration("DB_QUERY_RETRY_STEP", 100*time.Millisecond),
			RetryMax:           getEnvDuration("DB_QUERY_RETRY_MAX", time.Second),
			SlowQueryThreshold: getEnvDuration("DB_SLOW_QUERY_THRESHOLD", time.Second),
		},
		Redis: RedisConfig{
			Host:      getEnv("REDIS_HOST", "localhost:6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvInt("REDIS_DB", 0),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "cn:"),
		},
		Session: SessionConfig{
			Secret:          getEnv("SESSION_SECRET", defaultSessionSecret),
			TTL:             getEnvDuration("SESSION_TTL", 24*time.Hour),
			CookieName:      getEnv("SESSION_COOKIE", "cn_session"),
			CookieSecure:    getEnvBool("SESSION_COOKIE_SECURE", false),
			MaxFailedLogins: getEnvInt("LOGIN_MAX_FAILED", 5),
			LockoutTTL:      getEnvDuration("LOGIN_LOCKOUT_TTL", 15*time.Minute),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "cinenacional"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			PublicURL: getEnv("MINIO_PUBLIC_URL", "http://localhost:9000"),
		},
		Worker: WorkerConfig{
			Concurrency:   getEnvInt("WORKER_CONCURRENCY", 10),
			SlugAuditCron: getEnv("SLUG_AUDIT_CRON", "0 3 * * *"),
			Timezone:      getEnv("WORKER_TIMEZONE", "America/Argentina/Buenos_Aires"),
		},
		Cache: CacheConfig{
			ResponseTTL: getEnvDuration("CACHE_RESPONSE_TTL", 5*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Validate checks the config is usable. Every problem is reported at once.
func (c *Config) Validate() error {
	var errs []error

	if c.IsProduction() {
		if c.Session.Secret == defaultSessionSecret {
			errs = append(errs, errors.New("SESSION_SECRET must be set in production"))
		}
		if os.Getenv("DB_PASSWORD") == "" {
			errs = append(errs, errors.New("DB_PASSWORD must be set in production"))
		}
	}
	if len(c.Session.Secret) < 16 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 16 characters"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.Session.MaxFailedLogins < 1 {
		errs = append(errs, errors.New("LOGIN_MAX_FAILED must be at least 1"))
	}
	if c.Database.RetryAttempts < 1 {
		errs = append(errs, errors.New("DB_QUERY_RETRY_ATTEMPTS must be at least 1"))
	}
	if c.Database.RetryStep < 0 || c.Database.RetryMax < c.Database.RetryStep {
		errs = append(errs, errors.New("DB_QUERY_RETRY_STEP must be >= 0 and <= DB_QUERY_RETRY_MAX"))
	}
	if c.Cache.ResponseTTL < 0 {
		errs = append(errs, errors.New("CACHE_RESPONSE_TTL must not be negative"))
	}
	if c.Worker.Concurrency < 1 {
		errs = append(errs, errors.New("WORKER_CONCURRENCY must be at least 1"))
	}
	if _, err := time.LoadLocation(c.Worker.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("WORKER_TIMEZONE: %w", err))
	}

	return errors.Join(errs...)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
