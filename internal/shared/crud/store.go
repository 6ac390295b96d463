// Package crud builds list/create and get/update/delete gin handlers
// from typed resource configurations.
package crud

import (
	"context"
	"errors"
)

// Store errors. Persistence adapters translate driver errors into these.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
	ErrReference = errors.New("referenced record missing or still in use")
)

// Shape selects how much of a record is loaded.
type Shape int

const (
	// ShapeList loads base columns plus list-level relation counts.
	ShapeList Shape = iota
	// ShapeDetail additionally loads detail counts and linked records.
	ShapeDetail
)

func (s Shape) String() string {
	if s == ShapeDetail {
		return "detail"
	}
	return "list"
}

// Op is a filter operator.
type Op string

const (
	OpEq     Op = "eq"
	OpGte    Op = "gte"
	OpLte    Op = "lte"
	OpIsNull Op = "is_null"
	OpHas    Op = "has"     // linked through Field (a relation) to the id in Value
	OpHasAny Op = "has_any" // Value bool: has at least one / has none
)

// Filter restricts a list query. Field is a column, or a relation for OpHas/OpHasAny.
type Filter struct {
	Field string
	Op    Op
	Value any
}

func Eq(field string, v any) Filter { return Filter{Field: field, Op: OpEq, Value: v} }
func Gte(field string, v any) Filter { return Filter{Field: field, Op: OpGte, Value: v} }
func Lte(field string, v any) Filter { return Filter{Field: field, Op: OpLte, Value: v} }
func IsNull(field string) Filter { return Filter{Field: field, Op: OpIsNull} }
func Has(relation string, id int64) Filter { return Filter{Field: relation, Op: OpHas, Value: id} }
func HasAny(relation string, yes bool) Filter { return Filter{Field: relation, Op: OpHasAny, Value: yes} }

// ListQuery is what a list request asks of the store.
type ListQuery struct {
	Search       string
	SearchFields []string
	Filters      []Filter
	Sort         string
	Desc         bool
	Limit        int
	Offset       int
	Shape        Shape
}

// Payload is a write: column values plus replacement sets for link relations.
type Payload struct {
	Fields map[string]any
	Links  map[string][]int64
}

// NewPayload returns an empty payload ready for Set/Link.
func NewPayload() Payload {
	return Payload{Fields: map[string]any{}, Links: map[string][]int64{}}
}

// Set assigns a column value.
func (p *Payload) Set(field string, v any) {
	if p.Fields == nil {
		p.Fields = map[string]any{}
	}
	p.Fields[field] = v
}

// Link replaces the ids linked through relation.
func (p *Payload) Link(relation string, ids []int64) {
	if p.Links == nil {
		p.Links = map[string][]int64{}
	}
	p.Links[relation] = ids
}

// Empty reports whether the payload writes nothing.
func (p Payload) Empty() bool {
	return len(p.Fields) == 0 && len(p.Links) == 0
}

// Store is the persistence surface a resource needs.
type Store[T any] interface {
	List(ctx context.Context, q ListQuery) ([]T, error)
	Count(ctx context.Context, q ListQuery) (int64, error)
	// FindByID returns ErrNotFound when no record has id.
	FindByID(ctx context.Context, id int64, shape Shape) (T, error)
	Create(ctx context.Context, p Payload) (T, error)
	Update(ctx context.Context, id int64, p Payload) (T, error)
	Delete(ctx context.Context, id int64) error
	CountRelation(ctx context.Context, id int64, relation string) (int64, error)
}

// Schema is implemented by stores that can vouch for field names at startup.
type Schema interface {
	HasField(name string) bool
	HasRelation(name string) bool
}
