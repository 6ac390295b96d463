package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cinenacional-backend/internal/infrastructure/queue"
	"cinenacional-backend/internal/shared"
	"cinenacional-backend/internal/shared/crud"
	"cinenacional-backend/internal/shared/crud/crudtest"
	"cinenacional-backend/internal/shared/slug"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuditor struct {
	kinds  []slug.Kind
	apply  bool
	report slug.Report
	err    error
}

func (f *fakeAuditor) Audit(_ context.Context, kinds []slug.Kind, apply bool) (slug.Report, error) {
	f.kinds, f.apply = kinds, apply
	f.report.Applied = apply
	return f.report, f.err
}

func auditTask(t *testing.T, p shared.SlugAuditPayload) *asynq.Task {
	t.Helper()
	task, err := queue.NewTask(shared.TypeSlugAudit, p)
	require.NoError(t, err)
	return task
}

func TestSlugAudit_InvalidatesFixedResources(t *testing.T) {
	cache := crudtest.NewCache()
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "crud:people:list:", "[]", time.Minute))
	require.NoError(t, cache.Set(ctx, "crud:genres:list:", "[]", time.Minute))

	a := &fakeAuditor{report: slug.Report{Checked: 4, Fixes: []slug.Fix{
		{Kind: slug.KindPerson, ID: 1, NewSlug: "juan-perez"},
		{Kind: slug.KindPerson, ID: 2, NewSlug: "juan-perez-2"},
	}}}
	h := &slugAuditHandler{auditor: a, deps: crud.Deps{Cache: cache, Logger: zerolog.Nop()}}

	require.NoError(t, h.ProcessTask(ctx, auditTask(t, shared.SlugAuditPayload{Kinds: []string{"person"}, Apply: true})))

	assert.Equal(t, []slug.Kind{slug.KindPerson}, a.kinds)
	assert.True(t, a.apply)
	found, _ := cache.Exists(ctx, "crud:people:list:")
	assert.False(t, found)
	found, _ = cache.Exists(ctx, "crud:genres:list:")
	assert.True(t, found)
}

func TestSlugAudit_Errors(t *testing.T) {
	h := &slugAuditHandler{auditor: &fakeAuditor{}, deps: crud.Deps{Logger: zerolog.Nop()}}
	err := h.ProcessTask(context.Background(), auditTask(t, shared.SlugAuditPayload{Kinds: []string{"festival"}}))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	h.auditor = &fakeAuditor{err: errors.New("db down")}
	err = h.ProcessTask(context.Background(), auditTask(t, shared.SlugAuditPayload{}))
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestProbeRouter(t *testing.T) {
	healthy := true
	r := probeRouter(func(context.Context) (map[string]string, bool) {
		return map[string]string{"redis": "up"}, healthy
	})

	get := func(path string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w.Code
	}

	assert.Equal(t, http.StatusOK, get("/health"))
	assert.Equal(t, http.StatusOK, get("/ready"))
	healthy = false
	assert.Equal(t, http.StatusServiceUnavailable, get("/ready"))
	assert.Equal(t, http.StatusOK, get("/health"))
}
