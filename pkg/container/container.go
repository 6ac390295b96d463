package container

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinenacional-backend/internal/config"
	"cinenacional-backend/internal/domains/company"
	"cinenacional-backend/internal/domains/genre"
	"cinenacional-backend/internal/domains/image"
	"cinenacional-backend/internal/domains/location"
	"cinenacional-backend/internal/domains/movie"
	"cinenacional-backend/internal/domains/person"
	"cinenacional-backend/internal/domains/theme"
	"cinenacional-backend/internal/domains/user"
	userHandler "cinenacional-backend/internal/domains/user/handler"
	userRepo "cinenacional-backend/internal/domains/user/repository"
	userService "cinenacional-backend/internal/domains/user/service"
	"cinenacional-backend/internal/domains/venue"
	infraCache "cinenacional-backend/internal/infrastructure/cache"
	"cinenacional-backend/internal/infrastructure/database"
	"cinenacional-backend/internal/infrastructure/queue"
	"cinenacional-backend/internal/infrastructure/storage"
	"cinenacional-backend/internal/shared/crud"
	"cinenacional-backend/internal/shared/slug"
	"cinenacional-backend/pkg/jwt"
	"cinenacional-backend/pkg/logger"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// Container is the dependency graph shared by cmd/api, cmd/worker and cmd/cnctl.
// The core (config, Postgres, Redis, slugs, sessions) is always built;
// object storage and the task queue are opt-in.
type Container struct {
	Config *config.Config
	DB     *database.PostgresDB
	Cache  *infraCache.RedisCache
	JWT    *jwt.Manager

	Slugs    *database.SlugRegistry
	Resolver *slug.Resolver
	CRUD     crud.Deps

	UserRepo    user.Repository
	UserService user.Service
	UserHandler *userHandler.UserHandler

	People *person.Repository
	Images *database.Table[image.Image]

	// Set by WithObjects / WithQueue.
	Objects        *storage.MinIOStorage
	ImageProcessor *storage.ImageProcessor
	Tasks          *queue.Client
}

type options struct {
	objects bool
	queue   bool
}

type Option func(*options)

// WithObjects connects MinIO for the image pipeline.
func WithObjects() Option { return func(o *options) { o.objects = true } }

// WithQueue opens an asynq client for enqueueing tasks.
func WithQueue() Option { return func(o *options) { o.queue = true } }

// NewContainer builds the graph. Postgres and Redis failures are fatal.
func NewContainer(ctx context.Context, opts ...Option) (*Container, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.App.Environment, cfg.App.LogLevel)
	c := &Container{Config: cfg}

	if err := c.initDatabase(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}
	if err := c.initCache(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}
	c.initCore()

	if o.objects {
		objects, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			c.Cleanup()
			return nil, fmt.Errorf("failed to connect to minio: %w", err)
		}
		c.Objects = objects
		c.ImageProcessor = storage.NewImageProcessor()
		log.Info().Str("bucket", cfg.MinIO.Bucket).Msg("object storage ready")
	}
	if o.queue {
		c.Tasks = queue.NewClient(c.RedisOpt())
	}

	log.Info().Str("env", cfg.App.Environment).Msg("container initialized")
	return c, nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}
	db := database.NewPostgresDB(dbConfig)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.Connect(connectCtx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

func (c *Container) initCache(ctx context.Context) error {
	r := c.Config.Redis
	rc := infraCache.NewRedisCache(r.Host, r.Password, r.DB, r.KeyPrefix)
	if err := rc.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.Cache = rc
	return nil
}

func (c *Container) initCore() {
	cfg := c.Config
	pool := c.DB.Pool

	c.JWT = jwt.NewManager(cfg.Session.Secret, cfg.Session.TTL)
	c.Slugs = database.NewSlugRegistry(pool)
	c.Resolver = slug.NewResolver(c.Slugs)
	c.CRUD = crud.Deps{
		Resolver: c.Resolver,
		Cache:    c.Cache,
		CacheTTL: cfg.Cache.ResponseTTL,
		Retry:    database.RetryPolicy(cfg.Database.RetryAttempts, cfg.Database.RetryStep, cfg.Database.RetryMax),
		Logger:   logger.Component("crud"),
	}

	c.UserRepo = userRepo.NewPostgresRepository(pool, c.Cache)
	c.UserService = userService.NewUserService(c.UserRepo, c.Cache, c.JWT, userService.LoginPolicy{
		MaxFailed:  cfg.Session.MaxFailedLogins,
		LockoutTTL: cfg.Session.LockoutTTL,
	})
	c.UserHandler = userHandler.NewUserHandler(c.UserService, userHandler.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.CookieSecure,
	})

	c.People = person.NewRepository(pool, c.Cache)
	c.Images = image.NewStore(pool)
}

// RedisOpt is the asynq connection to the same Redis as the cache.
func (c *Container) RedisOpt() asynq.RedisClientOpt {
	r := c.Config.Redis
	return asynq.RedisClientOpt{Addr: r.Host, Password: r.Password, DB: r.DB}
}

// Resources builds every catalogue resource served under /api/v1.
// Requires WithObjects and WithQueue for /images.
func (c *Container) Resources() ([]crud.Resource, error) {
	if c.Objects == nil || c.Tasks == nil {
		return nil, errors.New("resources need object storage and the task queue")
	}
	pool := c.DB.Pool
	deps := c.CRUD

	builders := []func() (crud.Resource, error){
		func() (crud.Resource, error) { return genre.Resource(genre.NewStore(pool), deps) },
		func() (crud.Resource, error) { return theme.Resource(theme.NewStore(pool), deps) },
		func() (crud.Resource, error) {
			return location.Resource(location.NewStore(pool), location.NewTree(pool), deps)
		},
		func() (crud.Resource, error) { return person.Resource(person.NewStore(pool), c.People, deps) },
		func() (crud.Resource, error) { return movie.Resource(movie.NewStore(pool), deps) },
		func() (crud.Resource, error) {
			return company.Resource(company.Production, company.NewStore(pool, company.Production), deps)
		},
		func() (crud.Resource, error) {
			return company.Resource(company.Distribution, company.NewStore(pool, company.Distribution), deps)
		},
		func() (crud.Resource, error) { return venue.Resource(venue.NewStore(pool), deps) },
		func() (crud.Resource, error) {
			uploads := image.NewUploader(c.Images, c.Objects, c.ImageProcessor, c.Tasks, deps)
			return image.Resource(c.Images, uploads, c.Tasks, deps)
		},
	}

	resources := make([]crud.Resource, 0, len(builders))
	for _, build := range builders {
		res, err := build()
		if err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	return resources, nil
}

// ImageTasks returns the worker side of the image pipeline.
func (c *Container) ImageTasks() (*image.Processor, error) {
	if c.Objects == nil {
		return nil, errors.New("image tasks need object storage")
	}
	deps := c.CRUD
	deps.Logger = logger.Component("worker")
	return image.NewProcessor(c.Images, c.Objects, c.ImageProcessor, deps), nil
}

// SlugAuditor runs slug audits against the live tables.
func (c *Container) SlugAuditor() *slug.Auditor {
	return slug.NewAuditor(c.Slugs, logger.Component("slug-audit"))
}

// HealthCheck pings every connected backend; the map holds "up" or the error.
func (c *Container) HealthCheck(ctx context.Context) (map[string]string, bool) {
	checks := map[string]func(context.Context) error{
		"postgres": c.DB.HealthCheck,
		"redis":    c.Cache.HealthCheck,
	}
	if c.Objects != nil {
		checks["minio"] = c.Objects.HealthCheck
	}

	status := make(map[string]string, len(checks))
	healthy := true
	for name, check := range checks {
		if err := check(ctx); err != nil {
			status[name] = err.Error()
			healthy = false
			continue
		}
		status[name] = "up"
	}
	return status, healthy
}

func (c *Container) Cleanup() {
	if c.Tasks != nil {
		if err := c.Tasks.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close task client")
		}
	}
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis")
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close database")
		}
	}
}
