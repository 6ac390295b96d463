// Package slug resolves unique slugs for catalogue entities.
package slug

import (
	"context"
	"fmt"
	"strconv"

	"cinenacional-backend/internal/shared/utils"
)

// Kind identifies the collection a slug must be unique in.
type Kind string

const (
	KindLocation            Kind = "location"
	KindMovie               Kind = "movie"
	KindPerson              Kind = "person"
	KindGenre               Kind = "genre"
	KindProductionCompany   Kind = "production-company"
	KindDistributionCompany Kind = "distribution-company"
)

// Kinds lists every sluggable kind.
var Kinds = []Kind{
	KindLocation,
	KindMovie,
	KindPerson,
	KindGenre,
	KindProductionCompany,
	KindDistributionCompany,
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

func (k Kind) String() string { return string(k) }

var kindResources = map[Kind]string{
	KindLocation:            "locations",
	KindMovie:               "movies",
	KindPerson:              "people",
	KindGenre:               "genres",
	KindProductionCompany:   "production-companies",
	KindDistributionCompany: "distribution-companies",
}

// Resource is the API collection whose cached responses carry k's slugs.
func (k Kind) Resource() string { return kindResources[k] }

// ParseKind converts user input ("genre", "production-company") into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown slug kind %q", s)
	}
	return k, nil
}

// Checker reports whether slug is already taken within kind,
// ignoring the record whose id equals excludeID when it is set.
type Checker interface {
	SlugExists(ctx context.Context, kind Kind, slug string, excludeID *int64) (bool, error)
}

// Resolver turns display text into a slug that no other record of the same kind uses.
type Resolver struct {
	checker Checker
}

// NewResolver creates a resolver backed by checker.
func NewResolver(checker Checker) *Resolver {
	return &Resolver{checker: checker}
}

// Resolve returns the first free candidate among base, base-1, base-2, ...
//
// The check is not atomic with the caller's write: a unique constraint on the
// slug column is the final guard, and callers retry once on a duplicate key.
func (r *Resolver) Resolve(ctx context.Context, text string, kind Kind, excludeID *int64) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("resolve slug: unknown kind %q", kind)
	}

	base := utils.GenerateSlug(text)
	if base == "" {
		base = utils.HashSlug(text)
	}

	candidate := base
	for counter := 1; ; counter++ {
		exists, err := r.checker.SlugExists(ctx, kind, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("check %s slug %q: %w", kind, candidate, err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(counter)
	}
}
