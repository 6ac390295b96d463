package main

import (
	"cinenacional-backend/internal/infrastructure/queue"
	"cinenacional-backend/pkg/container"
	"cinenacional-backend/pkg/logger"

	"github.com/rs/zerolog/log"
)

// asynqScheduler wraps queue.Scheduler with shutdown logging.
type asynqScheduler struct {
	*queue.Scheduler
}

func setupScheduler(c *container.Container) (*asynqScheduler, error) {
	w := c.Config.Worker
	scheduler, err := queue.NewScheduler(c.RedisOpt(), w.Timezone, logger.Component("scheduler"))
	if err != nil {
		return nil, err
	}
	if err := scheduler.RegisterSlugAudit(w.SlugAuditCron); err != nil {
		return nil, err
	}
	if err := scheduler.Start(); err != nil {
		return nil, err
	}
	log.Info().Str("timezone", w.Timezone).Msg("[Scheduler] started")
	return &asynqScheduler{Scheduler: scheduler}, nil
}

func (s *asynqScheduler) Shutdown() {
	log.Info().Msg("[Scheduler] shutting down")
	s.Scheduler.Shutdown()
	log.Info().Msg("[Scheduler] stopped")
}
