package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "cn_session", cfg.Session.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 3, cfg.Database.RetryAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.Database.RetryStep)
	assert.Equal(t, time.Second, cfg.Database.SlowQueryThreshold)
	assert.Equal(t, "0 3 * * *", cfg.Worker.SlugAuditCron)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("CORS_ORIGINS", "https://cinenacional.com, https://admin.cinenacional.com")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("CACHE_RESPONSE_TTL", "not-a-duration")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, []string{"https://cinenacional.com", "https://admin.cinenacional.com"}, cfg.App.CORSOrigins)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, 5*time.Minute, cfg.Cache.ResponseTTL)
}

func TestValidate_Production(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET must be set in production")
	assert.Contains(t, err.Error(), "DB_PASSWORD must be set in production")
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := &Config{
		App:      AppConfig{Environment: "development"},
		Database: DatabaseConfig{RetryAttempts: 0, RetryStep: time.Second, RetryMax: time.Millisecond},
		Session:  SessionConfig{Secret: "short", TTL: 0, MaxFailedLogins: 0},
		Worker:   WorkerConfig{Concurrency: 0, Timezone: "Mars/Olympus"},
	}

	err := cfg.Validate()

	require.Error(t, err)
	for _, want := range []string{
		"SESSION_SECRET must be at least 16",
		"SESSION_TTL",
		"LOGIN_MAX_FAILED",
		"DB_QUERY_RETRY_ATTEMPTS",
		"DB_QUERY_RETRY_STEP",
		"WORKER_CONCURRENCY",
		"WORKER_TIMEZONE",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoadDatabaseConfig(t *testing.T) {
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_SLOW_QUERY_THRESHOLD", "250ms")

	db, err := LoadDatabaseConfig()

	require.NoError(t, err)
	assert.Equal(t, 6543, db.Port)
	assert.Equal(t, 250*time.Millisecond, db.SlowQueryThreshold)
	assert.Contains(t, db.DSN(), ":6543/")

	t.Setenv("DB_PORT", "x")
	t.Setenv("DB_CONNECT_TIMEOUT", "soon")
	_, err = LoadDatabaseConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PORT")
	assert.Contains(t, err.Error(), "DB_CONNECT_TIMEOUT")
}

func TestLoadDatabaseConfig_PoolBounds(t *testing.T) {
	t.Setenv("DB_MIN_CONNECTIONS", "30")
	t.Setenv("DB_MAX_CONNECTIONS", "10")

	_, err := LoadDatabaseConfig()
	assert.ErrorContains(t, err, "exceeds")
}
