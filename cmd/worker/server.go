package main

import (
	"context"
	"time"

	"cinenacional-backend/internal/shared"
	"cinenacional-backend/pkg/container"
	"cinenacional-backend/pkg/logger"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// asynqServer wraps asynq.Server with logging on shutdown.
type asynqServer struct {
	*asynq.Server
}

func setupAsynqServer(c *container.Container, handlers *HandlerRegistry) *asynqServer {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	taskLog := logger.Component("worker")
	srv := asynq.NewServer(
		c.RedisOpt(),
		asynq.Config{
			Queues:          shared.QueueWeights,
			Concurrency:     c.Config.Worker.Concurrency,
			ShutdownTimeout: 30 * time.Second,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				taskLog.Error().Err(err).
					Str("task", task.Type()).
					Int("retry", retried).
					Int("max_retry", maxRetry).
					Msg("task failed")
			}),
		},
	)

	go func() {
		log.Info().Int("concurrency", c.Config.Worker.Concurrency).Msg("[Worker] starting")
		if err := srv.Run(mux); err != nil {
			log.Fatal().Err(err).Msg("[Worker] failed")
		}
	}()

	return &asynqServer{Server: srv}
}

// Shutdown waits for in-flight tasks up to the configured timeout.
func (s *asynqServer) Shutdown() {
	log.Info().Msg("[Worker] shutting down (waiting max 30s)")
	s.Server.Shutdown()
	log.Info().Msg("[Worker] stopped")
}
