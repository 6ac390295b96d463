package database

import (
	"context"
	"fmt"
	"time"

	"cinenacional-backend/internal/shared/retry"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// DBConfig holds the PostgreSQL connection and pool settings.
type DBConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	DBName   string
	SSLMode  string

	// Pool
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration

	// Connect retry (exponential: RetryDelay * 2^(attempt-1))
	MaxRetries     int
	RetryDelay     time.Duration
	ConnectTimeout time.Duration

	// Queries slower than this are logged; zero disables the tracer.
	SlowQueryThreshold time.Duration
}

// PostgresDB owns the connection pool.
type PostgresDB struct {
	Pool   *pgxpool.Pool
	Config *DBConfig
}

// NewPostgresDB creates an unconnected PostgresDB; call Connect before use.
func NewPostgresDB(config *DBConfig) *PostgresDB {
	return &PostgresDB{Config: config}
}

// DSN renders the connection string.
func (c *DBConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		c.Username, c.Password, c.Host, c.Port, c.DBName, sslMode,
	)
}

func (db *PostgresDB) configurePool() (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(db.Config.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = db.Config.MaxConns
	config.MinConns = db.Config.MinConns
	config.MaxConnLifetime = db.Config.MaxConnLifetime
	config.MaxConnIdleTime = db.Config.MaxConnIdleTime
	config.HealthCheckPeriod = db.Config.HealthCheckPeriod
	config.ConnConfig.ConnectTimeout = db.Config.ConnectTimeout

	if db.Config.SlowQueryThreshold > 0 {
		config.ConnConfig.Tracer = NewSlowQueryTracer(db.Config.SlowQueryThreshold, log.Logger)
	}

	return config, nil
}

// connectWithRetry opens the pool and verifies it with a ping, backing off
// exponentially between attempts.
func (db *PostgresDB) connectWithRetry(ctx context.Context, config *pgxpool.Config) (*pgxpool.Pool, error) {
	policy := retry.Policy{
		MaxAttempts: db.Config.MaxRetries,
		Backoff:     retry.Exponential(db.Config.RetryDelay, 30*time.Second),
		Retryable:   func(error) bool { return true },
	}

	attempt := 0
	pool, err := retry.DoValue(ctx, policy, func(ctx context.Context) (*pgxpool.Pool, error) {
		attempt++
		log.Info().Int("attempt", attempt).Int("max", policy.MaxAttempts).Msg("[DATABASE] connecting")

		connectCtx, cancel := context.WithTimeout(ctx, db.Config.ConnectTimeout)
		defer cancel()

		pool, err := pgxpool.NewWithConfig(connectCtx, config)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("[DATABASE] connect failed")
			return nil, err
		}
		if err := pool.Ping(connectCtx); err != nil {
			pool.Close()
			log.Warn().Err(err).Int("attempt", attempt).Msg("[DATABASE] ping failed")
			return nil, err
		}
		return pool, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect after %d attempts: %w", attempt, err)
	}
	return pool, nil
}

// Connect configures the pool and connects with retry.
func (db *PostgresDB) Connect(ctx context.Context) error {
	config, err := db.configurePool()
	if err != nil {
		return fmt.Errorf("pool configuration failed: %w", err)
	}

	pool, err := db.connectWithRetry(ctx, config)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	db.Pool = pool

	log.Info().Str("host", db.Config.Host).Str("db", db.Config.DBName).Msg("[DATABASE] PostgreSQL connection established")
	return nil
}

// HealthCheck pings the database within 5s.
func (db *PostgresDB) HealthCheck(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.Pool.Ping(healthCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
