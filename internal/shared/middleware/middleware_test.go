package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuth map[string]*Session

func (f fakeAuth) Authenticate(_ context.Context, token string) (*Session, error) {
	if s, ok := f[token]; ok {
		return s, nil
	}
	return nil, errors.New("revoked")
}

func protectedRouter(auth Authenticator) (*gin.Engine, *int) {
	hits := 0
	r := gin.New()
	r.POST("/genres", RequireEditor(auth, "cn_session"), func(c *gin.Context) {
		hits++
		s, ok := CurrentSession(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"by": s.Email})
	})
	return r, &hits
}

func TestRequireEditor(t *testing.T) {
	auth := fakeAuth{
		"admin":  {ID: "a", UserID: 1, Email: "admin@cn", Role: RoleAdmin},
		"editor": {ID: "e", UserID: 2, Email: "editor@cn", Role: RoleEditor},
		"user":   {ID: "u", UserID: 3, Email: "user@cn", Role: "USER"},
	}

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"no credentials", func(*http.Request) {}, http.StatusUnauthorized},
		{"bearer admin", func(r *http.Request) { r.Header.Set("Authorization", "Bearer admin") }, http.StatusCreated},
		{"cookie editor", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "cn_session", Value: "editor"}) }, http.StatusCreated},
		{"lowercase scheme", func(r *http.Request) { r.Header.Set("Authorization", "bearer editor") }, http.StatusCreated},
		{"plain user", func(r *http.Request) { r.Header.Set("Authorization", "Bearer user") }, http.StatusUnauthorized},
		{"revoked", func(r *http.Request) { r.Header.Set("Authorization", "Bearer gone") }, http.StatusUnauthorized},
		{"basic scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic admin") }, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, hits := protectedRouter(auth)
			req := httptest.NewRequest(http.MethodPost, "/genres", strings.NewReader(`{}`))
			tt.setup(req)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error":"No autorizado"}`, w.Body.String())
				assert.Zero(t, *hits)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	generated := w.Body.String()
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(*gin.Context) { panic("kaput") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Error interno del servidor"}`, w.Body.String())
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := gin.New()
	r.Use(m.Handler())
	r.GET("/genres/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, path := range []string{"/genres/1", "/genres/2", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Equal(t, 2, testutil.CollectAndCount(m.requests))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/genres/:id", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
}
