package crudtest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cinenacional-backend/internal/shared/crud"
	"cinenacional-backend/internal/shared/retry"
	"cinenacional-backend/internal/shared/slug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// EditorHeader marks a request as coming from an editor session.
const EditorHeader = "X-Test-Editor"

// Deps returns crud.Deps resolving slugs through checker, without cache or retries.
func Deps(checker slug.Checker) crud.Deps {
	return crud.Deps{
		Resolver: slug.NewResolver(checker),
		Retry:    retry.None,
		Logger:   zerolog.Nop(),
	}
}

// Router mounts res under /api/v1. Writes need EditorHeader.
func Router(res crud.Resource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	res.Register(r.Group("/api/v1"), func(c *gin.Context) {
		if c.GetHeader(EditorHeader) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No autorizado"})
			return
		}
		c.Next()
	})
	return r
}

// Do sends a JSON request to h.
func Do(h http.Handler, method, target string, body any, editor bool) *httptest.ResponseRecorder {
	var raw []byte
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if editor {
		req.Header.Set(EditorHeader, "1")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// Decode parses a JSON object body.
func Decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}
