package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"cinenacional-backend/internal/shared/crud"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	assert.NoError(t, MapError(nil))
	assert.ErrorIs(t, MapError(pgx.ErrNoRows), crud.ErrNotFound)
	assert.ErrorIs(t, MapError(fmt.Errorf("scan: %w", pgx.ErrNoRows)), crud.ErrNotFound)

	dup := &pgconn.PgError{Code: "23505", ConstraintName: "movies_slug_key"}
	err := MapError(dup)
	assert.ErrorIs(t, err, crud.ErrDuplicate)
	assert.Contains(t, err.Error(), "movies_slug_key")

	fk := &pgconn.PgError{Code: "23503", ConstraintName: "people_birth_location_id_fkey"}
	assert.ErrorIs(t, MapError(fk), crud.ErrReference)

	other := errors.New("boom")
	assert.Equal(t, other, MapError(other))
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"cancelled", context.Canceled, false},
		{"serialization", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"connection failure", &pgconn.PgError{Code: "08006"}, true},
		{"cannot connect now", &pgconn.PgError{Code: "57P03"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"syntax", &pgconn.PgError{Code: "42601"}, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestRetryPolicy(t *testing.T) {
	p := RetryPolicy(3, 100*time.Millisecond, time.Second)
	assert.Equal(t, 3, p.MaxAttempts)
	assert.True(t, p.Retryable(&pgconn.PgError{Code: "40001"}))
	assert.Equal(t, 200*time.Millisecond, p.Backoff(2))
	assert.Equal(t, time.Second, p.Backoff(50))
}
