package main

import (
	"context"
	"fmt"

	"cinenacional-backend/internal/domains/image"
	"cinenacional-backend/internal/infrastructure/queue"
	"cinenacional-backend/internal/shared"
	"cinenacional-backend/internal/shared/crud"
	"cinenacional-backend/internal/shared/slug"
	"cinenacional-backend/pkg/container"

	"github.com/hibiken/asynq"
)

// auditor is the part of *slug.Auditor the audit task needs.
type auditor interface {
	Audit(ctx context.Context, kinds []slug.Kind, apply bool) (slug.Report, error)
}

// HandlerRegistry holds all task handlers.
type HandlerRegistry struct {
	images    *image.Processor
	slugAudit *slugAuditHandler
}

func initializeHandlers(c *container.Container) (*HandlerRegistry, error) {
	images, err := c.ImageTasks()
	if err != nil {
		return nil, err
	}
	return &HandlerRegistry{
		images:    images,
		slugAudit: &slugAuditHandler{auditor: c.SlugAuditor(), deps: c.CRUD},
	}, nil
}

// RegisterHandlers registers all handlers with the mux.
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeProcessImage, h.images.ProcessTask)
	mux.HandleFunc(shared.TypeDeleteImages, h.images.DeleteTask)
	mux.HandleFunc(shared.TypeSlugAudit, h.slugAudit.ProcessTask)
}

type slugAuditHandler struct {
	auditor auditor
	deps    crud.Deps
}

func (h *slugAuditHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload shared.SlugAuditPayload
	if err := queue.Decode(t, &payload); err != nil {
		return err
	}
	kinds := make([]slug.Kind, 0, len(payload.Kinds))
	for _, raw := range payload.Kinds {
		k, err := slug.ParseKind(raw)
		if err != nil {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		kinds = append(kinds, k)
	}

	report, err := h.auditor.Audit(ctx, kinds, payload.Apply)
	if err != nil {
		return fmt.Errorf("slug audit: %w", err)
	}

	if touched := report.Touched(); len(touched) > 0 {
		h.deps.Invalidate(ctx, touched...)
	}
	h.deps.Logger.Info().
		Int("checked", report.Checked).
		Int("fixes", len(report.Fixes)).
		Bool("applied", report.Applied).
		Msg("slug audit finished")
	return nil
}
