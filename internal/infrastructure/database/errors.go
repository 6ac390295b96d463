package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cinenacional-backend/internal/shared/crud"
	"cinenacional-backend/internal/shared/retry"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeCannotConnectNow     = "57P03"
)

// MapError translates driver errors into crud sentinels, keeping the cause.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return crud.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, crud.ErrDuplicate)
		case codeForeignKeyViolation:
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, crud.ErrReference)
		}
	}
	return err
}

// IsTransient reports whether a failed call can be safely tried again:
// connection-level failures, serialization conflicts and deadlocks.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"),
			pgErr.Code == codeSerializationFailure,
			pgErr.Code == codeDeadlockDetected,
			pgErr.Code == codeCannotConnectNow:
			return true
		}
		return false
	}
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}

// RetryPolicy is the call-site policy for store operations: linear backoff
// of attempt*step capped at max, retrying only transient errors.
func RetryPolicy(maxAttempts int, step, max time.Duration) retry.Policy {
	return retry.Policy{
		MaxAttempts: maxAttempts,
		Backoff:     retry.Linear(step, max),
		Retryable:   IsTransient,
	}
}
