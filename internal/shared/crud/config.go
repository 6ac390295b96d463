package crud

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"cinenacional-backend/internal/shared/retry"
	"cinenacional-backend/internal/shared/slug"
	"cinenacional-backend/pkg/cache"

	"github.com/rs/zerolog"
)

// SlugResolver produces a unique slug for a kind.
type SlugResolver interface {
	Resolve(ctx context.Context, text string, kind slug.Kind, excludeID *int64) (string, error)
}

// Deps are the collaborators shared by every resource.
type Deps struct {
	Resolver SlugResolver
	// Cache is optional; when nil, responses are not cached.
	Cache    cache.Cache
	CacheTTL time.Duration
	// Retry wraps every store call.
	Retry  retry.Policy
	Logger zerolog.Logger
}

// Sort lists the sortable fields and the default ordering.
type Sort struct {
	Fields       []string
	DefaultField string
	DefaultDesc  bool
}

// Pagination configures paging of list responses.
type Pagination struct {
	DefaultLimit int
	MaxLimit     int
	// ItemsKey renames the "data" key of the list body.
	ItemsKey string
}

const (
	defaultLimit    = 20
	defaultMaxLimit = 100
)

// SlugRule makes create fill Field (default "slug") from the request.
type SlugRule[C any] struct {
	Kind   slug.Kind
	Field  string
	Source func(C) string
}

// UpdateSlugRule regenerates the slug on update when the source text changes.
type UpdateSlugRule[T, U any] struct {
	Kind  slug.Kind
	Field string
	// Source is the new text from the request; "" means unchanged.
	Source func(U) string
	// Current is the text the existing slug was derived from.
	Current func(T) string
}

// DeleteGuard blocks deletion while Relation has records.
type DeleteGuard struct {
	Relation string
	// Status defaults to 409.
	Status  int
	Message func(count int64) string
	// Extra adds top-level fields to the blocked response.
	Extra func(count int64) map[string]any
}

// ListConfig configures GET and POST on a collection.
// T is the stored entity, C the create request body.
type ListConfig[T, C any] struct {
	Resource string
	Entity   string
	Store    Store[T]

	Search     []string
	Sort       Sort
	Pagination Pagination
	// Filters derives extra filters from the query string; an error is a 400.
	Filters func(q url.Values) ([]Filter, error)

	// ValidateBody checks the create body. When nil and C implements
	// validation.Validatable, that is used instead.
	ValidateBody func(in *C) error
	BuildCreate  func(ctx context.Context, in C) (Payload, error)
	Slug         *SlugRule[C]
	// DetailOnCreate re-fetches the created record with ShapeDetail.
	DetailOnCreate bool

	Format func(T) any
	// Invalidates names other resources whose cached responses a write here makes stale.
	Invalidates []string
}

// ItemConfig configures GET, PUT and DELETE on a single record.
// U is the update request body.
type ItemConfig[T, U any] struct {
	Resource string
	Entity   string
	Store    Store[T]

	ValidateBody func(in *U) error
	BuildUpdate  func(ctx context.Context, in U, existing T) (Payload, error)
	Slug         *UpdateSlugRule[T, U]
	Guards       []DeleteGuard
	// AfterDelete runs once the row is gone; its error is only logged.
	AfterDelete func(ctx context.Context, deleted T) error

	Format      func(T) any
	Invalidates []string
}

// Validate checks the configuration once at startup.
func (cfg *ListConfig[T, C]) Validate() error {
	var errs []error
	if cfg.Resource == "" {
		errs = append(errs, errors.New("resource is required"))
	}
	if cfg.Entity == "" {
		errs = append(errs, errors.New("entity is required"))
	}
	if cfg.Store == nil {
		errs = append(errs, errors.New("store is required"))
	}
	if cfg.Sort.DefaultField == "" {
		errs = append(errs, errors.New("sort.defaultField is required"))
	} else if !contains(cfg.Sort.Fields, cfg.Sort.DefaultField) {
		errs = append(errs, fmt.Errorf("sort.defaultField %q is not in sort.fields", cfg.Sort.DefaultField))
	}
	if cfg.Pagination.DefaultLimit < 0 || cfg.Pagination.MaxLimit < 0 {
		errs = append(errs, errors.New("pagination limits must not be negative"))
	}
	if cfg.Pagination.MaxLimit > 0 && cfg.Pagination.DefaultLimit > cfg.Pagination.MaxLimit {
		errs = append(errs, errors.New("pagination.defaultLimit exceeds maxLimit"))
	}
	if cfg.Slug != nil {
		if cfg.BuildCreate == nil {
			errs = append(errs, errors.New("slug rule needs buildCreate"))
		}
		if !cfg.Slug.Kind.Valid() {
			errs = append(errs, fmt.Errorf("slug kind %q is unknown", cfg.Slug.Kind))
		}
		if cfg.Slug.Source == nil {
			errs = append(errs, errors.New("slug.source is required"))
		}
	}
	if schema, ok := cfg.Store.(Schema); ok {
		for _, f := range cfg.Search {
			if !schema.HasField(f) {
				errs = append(errs, fmt.Errorf("search field %q is not a column", f))
			}
		}
		for _, f := range cfg.Sort.Fields {
			if !schema.HasField(f) {
				errs = append(errs, fmt.Errorf("sort field %q is not a column", f))
			}
		}
	}
	return wrapConfigErr(cfg.Resource, errors.Join(errs...))
}

// Validate checks the configuration once at startup.
func (cfg *ItemConfig[T, U]) Validate() error {
	var errs []error
	if cfg.Resource == "" {
		errs = append(errs, errors.New("resource is required"))
	}
	if cfg.Entity == "" {
		errs = append(errs, errors.New("entity is required"))
	}
	if cfg.Store == nil {
		errs = append(errs, errors.New("store is required"))
	}
	if cfg.Slug != nil {
		if cfg.BuildUpdate == nil {
			errs = append(errs, errors.New("slug rule needs buildUpdate"))
		}
		if !cfg.Slug.Kind.Valid() {
			errs = append(errs, fmt.Errorf("slug kind %q is unknown", cfg.Slug.Kind))
		}
		if cfg.Slug.Source == nil || cfg.Slug.Current == nil {
			errs = append(errs, errors.New("slug.source and slug.current are required"))
		}
	}
	schema, hasSchema := cfg.Store.(Schema)
	for i, g := range cfg.Guards {
		if g.Relation == "" {
			errs = append(errs, fmt.Errorf("guard %d: relation is required", i))
		} else if hasSchema && !schema.HasRelation(g.Relation) {
			errs = append(errs, fmt.Errorf("guard %d: relation %q is unknown", i, g.Relation))
		}
		if g.Message == nil {
			errs = append(errs, fmt.Errorf("guard %d: message is required", i))
		}
		if g.Status != 0 && (g.Status < 400 || g.Status > 499) {
			errs = append(errs, fmt.Errorf("guard %d: status %d is not a client error", i, g.Status))
		}
	}
	return wrapConfigErr(cfg.Resource, errors.Join(errs...))
}

func wrapConfigErr(resource string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("crud config %q: %w", resource, err)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func slugField(f string) string {
	if f == "" {
		return "slug"
	}
	return f
}
