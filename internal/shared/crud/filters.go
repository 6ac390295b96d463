package crud

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// IntParam reads a positive integer query parameter. ok is false when absent.
func IntParam(q url.Values, key string) (v int64, ok bool, err error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return 0, false, fmt.Errorf("parámetro %s inválido", key)
	}
	return n, true, nil
}

// BoolParam reads "true"/"false". ok is false when absent.
func BoolParam(q url.Values, key string) (v bool, ok bool, err error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return false, false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false, fmt.Errorf("parámetro %s inválido", key)
	}
	return b, true, nil
}

// EnumParam reads a value that must be one of allowed (case-insensitive,
// returned upper-cased as stored). ok is false when absent.
func EnumParam(q url.Values, key string, allowed ...string) (v string, ok bool, err error) {
	raw := strings.ToUpper(strings.TrimSpace(q.Get(key)))
	if raw == "" {
		return "", false, nil
	}
	if !contains(allowed, raw) {
		return "", false, fmt.Errorf("parámetro %s inválido: debe ser uno de %s", key, strings.Join(allowed, ", "))
	}
	return raw, true, nil
}
