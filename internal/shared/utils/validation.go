package utils

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// NotBlank fails when a string is empty after trimming.
func NotBlank(msg string) validation.RuleFunc {
	return func(value any) error {
		var s string
		switch v := value.(type) {
		case string:
			s = v
		case *string:
			if v != nil {
				s = *v
			}
		}
		if strings.TrimSpace(s) == "" {
			return validation.NewError("validation_required", msg)
		}
		return nil
	}
}

// TrimPtr trims s and turns an empty result into nil.
func TrimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
