package utils

import (
	"strconv"
	"strings"
)

// ParseID parses a positive numeric route id. "12abc", "-3" and "" are rejected.
func ParseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// WordCount counts whitespace separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// CeilDiv returns ceil(total/size), 0 when size is not positive.
func CeilDiv(total int64, size int) int {
	if size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
