package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"cinenacional-backend/internal/infrastructure/database"
)

// strictEnv reads typed variables and collects every parse failure,
// so a bad deploy reports all broken DB_* settings at once.
type strictEnv struct {
	errs []error
}

func (e *strictEnv) int(key string, def int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return n
}

func (e *strictEnv) duration(key string, def time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return d
}

// LoadDatabaseConfig reads the PostgreSQL connection and pool settings.
func LoadDatabaseConfig() (*database.DBConfig, error) {
	var env strictEnv

	cfg := &database.DBConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     env.int("DB_PORT", 5432),
		Username: getEnv("DB_USER", "cinenacional"),
		Password: getEnv("DB_PASSWORD", "secret"),
		DBName:   getEnv("DB_NAME", "cinenacional_dev"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),

		MaxConns:          int32(env.int("DB_MAX_CONNECTIONS", 25)),
		MinConns:          int32(env.int("DB_MIN_CONNECTIONS", 5)),
		MaxConnLifetime:   env.duration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
		MaxConnIdleTime:   env.duration("DB_MAX_CONN_IDLE_TIME", time.Minute),
		HealthCheckPeriod: env.duration("DB_HEALTH_CHECK_PERIOD", time.Minute),

		MaxRetries:     env.int("DB_MAX_RETRIES", 5),
		RetryDelay:     env.duration("DB_RETRY_DELAY", time.Second),
		ConnectTimeout: env.duration("DB_CONNECT_TIMEOUT", 10*time.Second),

		SlowQueryThreshold: env.duration("DB_SLOW_QUERY_THRESHOLD", time.Second),
	}
	if err := errors.Join(env.errs...); err != nil {
		return nil, err
	}
	if cfg.MinConns > cfg.MaxConns {
		return nil, fmt.Errorf("DB_MIN_CONNECTIONS (%d) exceeds DB_MAX_CONNECTIONS (%d)", cfg.MinConns, cfg.MaxConns)
	}
	return cfg, nil
}
