package queue

import (
	"fmt"
	"time"

	"cinenacional-backend/internal/shared"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	logger    zerolog.Logger
}

// NewScheduler builds a cron scheduler evaluated in timezone (UTC if empty).
func NewScheduler(opt asynq.RedisClientOpt, timezone string, logger zerolog.Logger) (*Scheduler, error) {
	loc := time.UTC
	if timezone != "" {
		var err error
		if loc, err = time.LoadLocation(timezone); err != nil {
			return nil, fmt.Errorf("invalid worker timezone %q: %w", timezone, err)
		}
	}
	s := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Location: loc,
		LogLevel: asynq.WarnLevel,
	})
	return &Scheduler{scheduler: s, logger: logger}, nil
}

// RegisterSlugAudit schedules the slug audit with fixes applied.
// An empty spec leaves it unscheduled.
func (s *Scheduler) RegisterSlugAudit(spec string) error {
	if spec == "" {
		s.logger.Info().Msg("slug audit cron disabled")
		return nil
	}
	task, err := NewTask(shared.TypeSlugAudit, shared.SlugAuditPayload{Apply: true})
	if err != nil {
		return err
	}
	id, err := s.scheduler.Register(spec, task, Options(shared.TypeSlugAudit)...)
	if err != nil {
		return fmt.Errorf("register %s: %w", shared.TypeSlugAudit, err)
	}
	s.logger.Info().Str("task", shared.TypeSlugAudit).Str("cron", spec).Str("entry", id).Msg("scheduled task registered")
	return nil
}

// Start runs the scheduler in the background.
func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
