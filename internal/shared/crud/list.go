package crud

import (
	"context"
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"

	"cinenacional-backend/internal/shared/apperror"
	"cinenacional-backend/internal/shared/response"
	"cinenacional-backend/internal/shared/retry"
	"cinenacional-backend/internal/shared/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// Collection serves GET and POST on /{resource}.
type Collection[T Entity, C any] struct {
	base
	cfg ListConfig[T, C]
}

// NewListCreate validates cfg and returns the collection handlers.
func NewListCreate[T Entity, C any](cfg ListConfig[T, C], deps Deps) (*Collection[T, C], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Slug != nil && deps.Resolver == nil {
		return nil, wrapConfigErr(cfg.Resource, errors.New("slug rule needs a resolver"))
	}
	if cfg.Pagination.DefaultLimit == 0 {
		cfg.Pagination.DefaultLimit = defaultLimit
	}
	if cfg.Pagination.MaxLimit == 0 {
		cfg.Pagination.MaxLimit = max(defaultMaxLimit, cfg.Pagination.DefaultLimit)
	}
	return &Collection[T, C]{
		base: base{resource: cfg.Resource, entity: cfg.Entity, deps: deps, invalidates: cfg.Invalidates},
		cfg:  cfg,
	}, nil
}

// CanCreate reports whether POST is served.
func (h *Collection[T, C]) CanCreate() bool {
	return h.cfg.BuildCreate != nil
}

// List handles GET /{resource}.
func (h *Collection[T, C]) List(c *gin.Context) {
	ctx := c.Request.Context()
	values := c.Request.URL.Query()

	q, page, err := h.parseQuery(values)
	if err != nil {
		h.fail(c, "list", err)
		return
	}

	gen, cacheable := h.generation(ctx)
	key := h.listKey(gen, values.Encode())
	if cacheable {
		if raw, ok := h.cached(ctx, key); ok {
			serveCached(c, raw)
			return
		}
	}

	var (
		items []T
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = retry.DoValue(gctx, h.deps.Retry, func(ctx context.Context) (int64, error) {
			return h.cfg.Store.Count(ctx, q)
		})
		return err
	})
	g.Go(func() error {
		var err error
		items, err = retry.DoValue(gctx, h.deps.Retry, func(ctx context.Context) ([]T, error) {
			return h.cfg.Store.List(ctx, q)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		h.fail(c, "list", StoreError(err, h.entity))
		return
	}

	body := response.Page{
		Items:      formatAll(h.cfg.Format, items),
		ItemsKey:   h.cfg.Pagination.ItemsKey,
		Total:      total,
		Page:       page,
		Limit:      q.Limit,
		TotalPages: utils.CeilDiv(total, q.Limit),
	}.Body()

	if cacheable {
		h.store(ctx, key, body)
	}
	response.OK(c, body)
}

// Create handles POST /{resource}.
func (h *Collection[T, C]) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var in C
	if err := c.ShouldBindJSON(&in); err != nil {
		h.fail(c, "create", apperror.Validation("JSON inválido", map[string]any{"body": err.Error()}))
		return
	}
	if err := validateBody(h.cfg.ValidateBody, &in); err != nil {
		h.fail(c, "create", err)
		return
	}

	created, err := h.create(ctx, in)
	if err != nil {
		h.fail(c, "create", StoreError(err, h.entity))
		return
	}
	h.invalidate(ctx)

	if h.cfg.DetailOnCreate {
		detail, err := retry.DoValue(ctx, h.deps.Retry, func(ctx context.Context) (T, error) {
			return h.cfg.Store.FindByID(ctx, created.EntityID(), ShapeDetail)
		})
		if err != nil {
			h.fail(c, "create", StoreError(err, h.entity))
			return
		}
		created = detail
	}

	response.Created(c, formatOne(h.cfg.Format, created))
}

// create resolves the slug and writes once. A duplicate key means another
// request took the slug in between, so the resolve+write runs one more time.
func (h *Collection[T, C]) create(ctx context.Context, in C) (T, error) {
	var zero T

	payload, err := h.cfg.BuildCreate(ctx, in)
	if err != nil {
		return zero, err
	}

	for attempt := 1; ; attempt++ {
		if h.cfg.Slug != nil {
			s, err := h.deps.Resolver.Resolve(ctx, h.cfg.Slug.Source(in), h.cfg.Slug.Kind, nil)
			if err != nil {
				return zero, err
			}
			payload.Set(slugField(h.cfg.Slug.Field), s)
		}

		created, err := retry.DoValue(ctx, h.deps.Retry, func(ctx context.Context) (T, error) {
			return h.cfg.Store.Create(ctx, payload)
		})
		if errors.Is(err, ErrDuplicate) && h.cfg.Slug != nil && attempt == 1 {
			h.deps.Logger.Warn().Str("resource", h.resource).Msg("slug taken concurrently, retrying create")
			continue
		}
		if err != nil {
			return zero, err
		}
		return created, nil
	}
}

func (h *Collection[T, C]) parseQuery(values url.Values) (ListQuery, int, error) {
	p := h.cfg.Pagination
	page := positiveInt(values.Get("page"), 1)
	limit := min(positiveInt(values.Get("limit"), p.DefaultLimit), p.MaxLimit)
	// offset+limit must stay within int
	page = min(page, math.MaxInt/limit)

	q := ListQuery{
		Sort:   h.cfg.Sort.DefaultField,
		Desc:   h.cfg.Sort.DefaultDesc,
		Limit:  limit,
		Offset: (page - 1) * limit,
		Shape:  ShapeList,
	}

	if s := firstOf(values, "sort", "sortBy"); contains(h.cfg.Sort.Fields, s) {
		q.Sort = s
	}
	switch strings.ToLower(firstOf(values, "order", "sortOrder")) {
	case "asc":
		q.Desc = false
	case "desc":
		q.Desc = true
	}

	if search := strings.TrimSpace(values.Get("search")); search != "" && len(h.cfg.Search) > 0 {
		q.Search = search
		q.SearchFields = h.cfg.Search
	}

	if h.cfg.Filters != nil {
		filters, err := h.cfg.Filters(values)
		if err != nil {
			return ListQuery{}, 0, apperror.Validation(err.Error(), nil)
		}
		q.Filters = filters
	}
	return q, page, nil
}

// firstOf returns the first non-empty parameter among keys.
func firstOf(values url.Values, keys ...string) string {
	for _, k := range keys {
		if v := values.Get(k); v != "" {
			return v
		}
	}
	return ""
}

func positiveInt(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
