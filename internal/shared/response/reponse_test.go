package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cinenacional-backend/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Error(c, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestError_HidesInternalCause(t *testing.T) {
	status, body := render(t, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, map[string]any{"error": "Error interno del servidor"}, body)
}

func TestError_MergesExtraWithoutOverwriting(t *testing.T) {
	err := apperror.Conflict(0, "No se puede eliminar").WithExtra(map[string]any{
		"movieCount": 3,
		"error":      "ignored",
	})
	status, body := render(t, err)

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "No se puede eliminar", body["error"])
	assert.EqualValues(t, 3, body["movieCount"])
	assert.NotContains(t, body, "details")
}

func TestError_ValidationDetails(t *testing.T) {
	status, body := render(t, apperror.Validation("", map[string]any{"title": "requerido"}))

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Datos inválidos", body["error"])
	assert.Equal(t, map[string]any{"title": "requerido"}, body["details"])
}

func TestPage_Body(t *testing.T) {
	body := Page{Items: []int{1}, ItemsKey: "people", Total: 21, Page: 2, Limit: 10, TotalPages: 3}.Body()

	assert.Equal(t, []int{1}, body["people"])
	assert.NotContains(t, body, "data")
	assert.Equal(t, 3, body["totalPages"])

	assert.Contains(t, Page{}.Body(), "data")
}
