package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		kind   Kind
		status int
	}{
		{"validation", Validation("", map[string]any{"name": "requerido"}), KindValidation, http.StatusBadRequest},
		{"unauthorized", Unauthorized(""), KindUnauthorized, http.StatusUnauthorized},
		{"not found", NotFound("Género"), KindNotFound, http.StatusNotFound},
		{"conflict default", Conflict(0, "tiene películas"), KindConflict, http.StatusConflict},
		{"conflict custom", Conflict(http.StatusBadRequest, "tiene funciones"), KindConflict, http.StatusBadRequest},
		{"internal", Internal(errors.New("boom")), KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestFrom(t *testing.T) {
	nf := NotFound("Persona")
	wrapped := fmt.Errorf("get person: %w", nf)

	assert.Same(t, nf, From(wrapped))
	assert.True(t, Is(wrapped, KindNotFound))

	plain := errors.New("db down")
	got := From(plain)
	assert.Equal(t, KindInternal, got.Kind)
	assert.ErrorIs(t, got, plain)
	assert.NotContains(t, got.Message, "db down")
}
