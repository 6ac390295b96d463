package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cinenacional-backend/internal/domains/genre"
	"cinenacional-backend/internal/shared/crud"
	"cinenacional-backend/internal/shared/crud/crudtest"
	"cinenacional-backend/internal/shared/middleware"
	"cinenacional-backend/internal/shared/slug"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct{}

func (stubAuth) Login(c *gin.Context)   { c.JSON(http.StatusOK, gin.H{"token": "t"}) }
func (stubAuth) Logout(c *gin.Context)  { c.Status(http.StatusNoContent) }
func (stubAuth) Session(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }

type tokenAuth map[string]string

func (a tokenAuth) Authenticate(_ context.Context, token string) (*middleware.Session, error) {
	role, ok := a[token]
	if !ok {
		return nil, errors.New("revoked")
	}
	return &middleware.Session{ID: token, UserID: 1, Role: role}, nil
}

func newRouter(t *testing.T, healthy bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := crudtest.NewTaggedStore[genre.Genre]()
	res, err := genre.Resource(store, crudtest.Deps(crudtest.SlugChecker{slug.KindGenre: store}))
	require.NoError(t, err)

	return SetupRouter(RouterDeps{
		CORSOrigins: []string{"http://localhost:3000"},
		Registry:    prometheus.NewRegistry(),
		Health: func(context.Context) (map[string]string, bool) {
			if !healthy {
				return map[string]string{"postgres": "up", "redis": "connection refused"}, false
			}
			return map[string]string{"postgres": "up", "redis": "up"}, true
		},
		Auth:          stubAuth{},
		Authenticator: tokenAuth{"editor-token": middleware.RoleEditor, "viewer-token": "VIEWER"},
		CookieName:    "cn_session",
		Resources:     []crud.Resource{res},
	})
}

func serve(r http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := serve(newRouter(t, true), http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = serve(newRouter(t, false), http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestMetricsExposeRequests(t *testing.T) {
	r := newRouter(t, true)
	serve(r, http.MethodGet, "/api/v1/genres", "", "")

	w := serve(r, http.MethodGet, "/metrics", "", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `cinenacional_http_requests_total{method="GET",route="/api/v1/genres",status="200"} 1`)
}

func TestWritesRequireEditorSession(t *testing.T) {
	r := newRouter(t, true)
	body := `{"name":"Drama"}`

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, "/api/v1/genres", body, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, "/api/v1/genres", body, "viewer-token").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, "/api/v1/genres", body, "stale").Code)

	w := serve(r, http.MethodPost, "/api/v1/genres", body, "editor-token")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"slug":"drama"`)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/genres", "", "").Code)
}

func TestAuthRoutes(t *testing.T) {
	r := newRouter(t, true)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/api/v1/auth/login", `{}`, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/v1/auth/session", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/auth/session", "", "editor-token").Code)
	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodPost, "/api/v1/auth/logout", "", "editor-token").Code)
}
