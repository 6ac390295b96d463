package crud

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"cinenacional-backend/internal/shared/apperror"
	"cinenacional-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// Entity is implemented by every stored record.
type Entity interface {
	EntityID() int64
}

// base carries what list and item handlers share: naming, deps and the response cache.
type base struct {
	resource    string
	entity      string
	deps        Deps
	invalidates []string
}

func (b *base) fail(c *gin.Context, action string, err error) {
	appErr := apperror.From(err)
	if appErr.Kind == apperror.KindInternal {
		b.deps.Logger.Error().
			Err(appErr.Unwrap()).
			Str("action", action+" "+b.resource).
			Str("request_id", c.GetString("request_id")).
			Msg("request failed")
	}
	response.Error(c, appErr)
}

func cachePrefix(resource string) string {
	return "crud:" + resource + ":"
}

// generationKey sits outside cachePrefix so invalidation never deletes it.
func generationKey(resource string) string {
	return "crudgen:" + resource
}

// generation is the resource's cache generation, bumped by every invalidation.
// Entries are keyed by the generation read before the store query, so a body
// read before a concurrent write lands under a key no later request asks for.
// ok is false when the cache is off or unreadable; then nothing is cached.
func (b *base) generation(ctx context.Context) (gen int64, ok bool) {
	if b.deps.Cache == nil || b.deps.CacheTTL <= 0 {
		return 0, false
	}
	if _, err := b.deps.Cache.Get(ctx, generationKey(b.resource), &gen); err != nil {
		b.deps.Logger.Warn().Err(err).Str("resource", b.resource).Msg("cache generation read failed")
		return 0, false
	}
	return gen, true
}

func (b *base) listKey(gen int64, rawQuery string) string {
	return cachePrefix(b.resource) + "g" + strconv.FormatInt(gen, 10) + ":list:" + rawQuery
}

func (b *base) itemKey(gen int64, id int64) string {
	return cachePrefix(b.resource) + "g" + strconv.FormatInt(gen, 10) + ":item:" + strconv.FormatInt(id, 10)
}

// cached returns a stored JSON body. Cache failures only degrade to a miss.
func (b *base) cached(ctx context.Context, key string) (json.RawMessage, bool) {
	var raw json.RawMessage
	found, err := b.deps.Cache.Get(ctx, key, &raw)
	if err != nil {
		b.deps.Logger.Warn().Err(err).Str("key", key).Msg("cache get failed")
		return nil, false
	}
	return raw, found && len(raw) > 0
}

func (b *base) store(ctx context.Context, key string, body any) {
	if err := b.deps.Cache.Set(ctx, key, body, b.deps.CacheTTL); err != nil {
		b.deps.Logger.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// invalidate drops every cached response of this resource and its dependents.
func (b *base) invalidate(ctx context.Context) {
	b.deps.Invalidate(ctx, append([]string{b.resource}, b.invalidates...)...)
}

// Invalidate drops the cached responses of the named resources. Handlers
// that write outside the factory (uploads, workers) call it directly.
func (d Deps) Invalidate(ctx context.Context, resources ...string) {
	if d.Cache == nil {
		return
	}
	for _, r := range resources {
		if _, err := d.Cache.Increment(ctx, generationKey(r)); err != nil {
			d.Logger.Warn().Err(err).Str("resource", r).Msg("cache generation bump failed")
		}
		if err := d.Cache.DeletePattern(ctx, cachePrefix(r)+"*"); err != nil {
			d.Logger.Warn().Err(err).Str("resource", r).Msg("cache invalidation failed")
		}
	}
}

func serveCached(c *gin.Context, raw json.RawMessage) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

func formatOne[T any](format func(T) any, v T) any {
	if format == nil {
		return v
	}
	return format(v)
}

func formatAll[T any](format func(T) any, items []T) []any {
	out := make([]any, 0, len(items))
	for _, it := range items {
		out = append(out, formatOne(format, it))
	}
	return out
}
