package crud

import (
	"errors"

	"cinenacional-backend/internal/shared/apperror"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// validateBody runs fn, or the body's own Validate method when fn is nil.
func validateBody[C any](fn func(*C) error, in *C) error {
	var err error
	switch {
	case fn != nil:
		err = fn(in)
	default:
		if v, ok := any(in).(validation.Validatable); ok {
			err = v.Validate()
		} else if v, ok := any(*in).(validation.Validatable); ok {
			err = v.Validate()
		}
	}
	if err == nil {
		return nil
	}
	return ValidationError(err)
}

// ValidationError converts ozzo validation output into a 400 with field details.
func ValidationError(err error) error {
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return apperror.Internal(err)
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		details := map[string]any{}
		flatten("", fields, details)
		return apperror.Validation("Datos inválidos", details)
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.Validation(err.Error(), nil)
}

func flatten(prefix string, errs validation.Errors, out map[string]any) {
	for field, err := range errs {
		key := field
		if prefix != "" {
			key = prefix + "." + field
		}
		var nested validation.Errors
		if errors.As(err, &nested) {
			flatten(key, nested, out)
			continue
		}
		out[key] = err.Error()
	}
}

// StoreError maps store sentinels onto the HTTP taxonomy.
func StoreError(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return apperror.NotFound(entity)
	case errors.Is(err, ErrDuplicate):
		return apperror.Conflict(0, "Ya existe un registro con esos datos")
	case errors.Is(err, ErrReference):
		return apperror.Conflict(0, "La operación referencia un registro inexistente o en uso")
	default:
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperror.Internal(err)
	}
}
