package crud

import (
	"context"
	"errors"

	"cinenacional-backend/internal/shared/apperror"
	"cinenacional-backend/internal/shared/response"
	"cinenacional-backend/internal/shared/retry"
	"cinenacional-backend/internal/shared/utils"

	"github.com/gin-gonic/gin"
)

// Member serves GET, PUT and DELETE on /{resource}/:id.
type Member[T Entity, U any] struct {
	base
	cfg ItemConfig[T, U]
}

// NewItem validates cfg and returns the item handlers.
func NewItem[T Entity, U any](cfg ItemConfig[T, U], deps Deps) (*Member[T, U], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Slug != nil && deps.Resolver == nil {
		return nil, wrapConfigErr(cfg.Resource, errors.New("slug rule needs a resolver"))
	}
	return &Member[T, U]{
		base: base{resource: cfg.Resource, entity: cfg.Entity, deps: deps, invalidates: cfg.Invalidates},
		cfg:  cfg,
	}, nil
}

// CanUpdate reports whether PUT is served.
func (h *Member[T, U]) CanUpdate() bool {
	return h.cfg.BuildUpdate != nil
}

// Get handles GET /{resource}/:id.
func (h *Member[T, U]) Get(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		h.fail(c, "get", invalidID())
		return
	}

	gen, cacheable := h.generation(ctx)
	key := h.itemKey(gen, id)
	if cacheable {
		if raw, ok := h.cached(ctx, key); ok {
			serveCached(c, raw)
			return
		}
	}

	item, err := h.find(ctx, id)
	if err != nil {
		h.fail(c, "get", StoreError(err, h.entity))
		return
	}

	body := formatOne(h.cfg.Format, item)
	if cacheable {
		h.store(ctx, key, body)
	}
	response.OK(c, body)
}

// Update handles PUT /{resource}/:id.
func (h *Member[T, U]) Update(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		h.fail(c, "update", invalidID())
		return
	}

	var in U
	if err := c.ShouldBindJSON(&in); err != nil {
		h.fail(c, "update", apperror.Validation("JSON inválido", map[string]any{"body": err.Error()}))
		return
	}
	if err := validateBody(h.cfg.ValidateBody, &in); err != nil {
		h.fail(c, "update", err)
		return
	}

	existing, err := h.find(ctx, id)
	if err != nil {
		h.fail(c, "update", StoreError(err, h.entity))
		return
	}

	if err := h.update(ctx, id, in, existing); err != nil {
		h.fail(c, "update", StoreError(err, h.entity))
		return
	}
	h.invalidate(ctx)

	updated, err := h.find(ctx, id)
	if err != nil {
		h.fail(c, "update", StoreError(err, h.entity))
		return
	}
	response.OK(c, formatOne(h.cfg.Format, updated))
}

// update regenerates the slug when its source text changed, then writes.
// Like create, a duplicate key re-runs resolve+write once.
func (h *Member[T, U]) update(ctx context.Context, id int64, in U, existing T) error {
	payload, err := h.cfg.BuildUpdate(ctx, in, existing)
	if err != nil {
		return err
	}

	rule := h.cfg.Slug
	reslug := false
	if rule != nil {
		text := rule.Source(in)
		reslug = text != "" && text != rule.Current(existing)
	}

	for attempt := 1; ; attempt++ {
		if reslug {
			s, err := h.deps.Resolver.Resolve(ctx, rule.Source(in), rule.Kind, &id)
			if err != nil {
				return err
			}
			payload.Set(slugField(rule.Field), s)
		}

		_, err := retry.DoValue(ctx, h.deps.Retry, func(ctx context.Context) (T, error) {
			return h.cfg.Store.Update(ctx, id, payload)
		})
		if errors.Is(err, ErrDuplicate) && reslug && attempt == 1 {
			h.deps.Logger.Warn().Str("resource", h.resource).Int64("id", id).Msg("slug taken concurrently, retrying update")
			continue
		}
		return err
	}
}

// Delete handles DELETE /{resource}/:id.
func (h *Member[T, U]) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		h.fail(c, "delete", invalidID())
		return
	}

	for _, guard := range h.cfg.Guards {
		count, err := retry.DoValue(ctx, h.deps.Retry, func(ctx context.Context) (int64, error) {
			return h.cfg.Store.CountRelation(ctx, id, guard.Relation)
		})
		if err != nil {
			h.fail(c, "delete", StoreError(err, h.entity))
			return
		}
		if count > 0 {
			blocked := apperror.Conflict(guard.Status, guard.Message(count))
			if guard.Extra != nil {
				blocked = blocked.WithExtra(guard.Extra(count))
			}
			h.fail(c, "delete", blocked)
			return
		}
	}

	var existing T
	if h.cfg.AfterDelete != nil {
		var err error
		if existing, err = h.find(ctx, id); err != nil {
			h.fail(c, "delete", StoreError(err, h.entity))
			return
		}
	}

	err := h.deps.Retry.Do(ctx, func(ctx context.Context) error {
		return h.cfg.Store.Delete(ctx, id)
	})
	if err != nil {
		h.fail(c, "delete", StoreError(err, h.entity))
		return
	}
	h.invalidate(ctx)

	if h.cfg.AfterDelete != nil {
		if err := h.cfg.AfterDelete(ctx, existing); err != nil {
			h.deps.Logger.Error().Err(err).Str("resource", h.resource).Int64("id", id).Msg("after-delete hook failed")
		}
	}

	response.NoContent(c)
}

func (h *Member[T, U]) find(ctx context.Context, id int64) (T, error) {
	return retry.DoValue(ctx, h.deps.Retry, func(ctx context.Context) (T, error) {
		return h.cfg.Store.FindByID(ctx, id, ShapeDetail)
	})
}

func invalidID() error {
	return apperror.Validation("ID inválido", map[string]any{"id": "debe ser un número entero positivo"})
}
