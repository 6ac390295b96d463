package utils

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FallbackPrefix prefixes slugs derived from a hash when the text has no usable letters.
const FallbackPrefix = "title-"

var (
	nonAlnum     = regexp.MustCompile(`[^a-z0-9]+`)
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	fallbackSlug = regexp.MustCompile(`^title-[0-9a-z]+$`)
)

// GenerateSlug maps a title or full name to a URL-safe slug.
//
//	"Película"           → "pelicula"
//	"  Hola   Mundo!!  " → "hola-mundo"
//	")("                 → "title-<base36 hash>"
func GenerateSlug(text string) string {
	// Step 1: lowercase, then split accented letters into base + combining mark
	// and drop the marks: "Película" → "pelicula"
	slug := RemoveDiacritics(strings.ToLower(text))

	// Step 2: every run of anything that is not a-z/0-9 becomes one hyphen
	slug = nonAlnum.ReplaceAllString(slug, "-")

	// Step 3: trim leading/trailing hyphens
	slug = strings.Trim(slug, "-")

	if len(slug) < 2 {
		return HashSlug(text)
	}
	return slug
}

// combiningDiacritic matches the Combining Diacritical Marks block only;
// marks from other blocks survive and become separators.
func combiningDiacritic(r rune) bool { return r >= 0x0300 && r <= 0x036f }

// RemoveDiacritics strips combining diacritical marks after canonical decomposition.
func RemoveDiacritics(input string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.Predicate(combiningDiacritic)))
	out, _, err := transform.String(t, input)
	if err != nil {
		return input
	}
	return out
}

// HashSlug returns the "title-<hash>" fallback for text.
func HashSlug(text string) string {
	return FallbackPrefix + strconv.FormatInt(abs(int64(TextHash(text))), 36)
}

// TextHash is the base-31 rolling hash over UTF-16 code units, wrapped to int32.
func TextHash(text string) int32 {
	var h int32
	for _, unit := range utf16.Encode([]rune(text)) {
		h = (h << 5) - h + int32(unit)
	}
	return h
}

// IsValidSlug reports whether s is in canonical slug form (regular or fallback).
func IsValidSlug(s string) bool {
	return slugPattern.MatchString(s) || fallbackSlug.MatchString(s)
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
