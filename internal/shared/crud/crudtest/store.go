// Package crudtest provides in-memory doubles for exercising crud handlers.
package crudtest

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"cinenacional-backend/internal/shared/crud"
	"cinenacional-backend/internal/shared/slug"
)

// Store is an in-memory crud.Store. Rows are materialized and read through
// the Build, Apply and Field callbacks so any entity type can be used.
type Store[T crud.Entity] struct {
	mu     sync.Mutex
	rows   map[int64]T
	links  map[int64]map[string][]int64
	nextID int64

	Build func(id int64, fields map[string]any) T
	Apply func(row *T, fields map[string]any)
	Field func(row T, name string) string

	// Relations holds the count returned by CountRelation per id and relation.
	Relations map[int64]map[string]int64
	// Unique lists fields whose values may not repeat, e.g. "slug".
	Unique []string
	// BeforeWrite runs before every create/update; a non-nil error aborts the write.
	BeforeWrite func(fields map[string]any) error
	// AfterRead runs after FindByID has read its row, outside the store lock.
	AfterRead func()
	// Err, when set, is returned by every call.
	Err error

	Writes int
	Reads  int
}

// NewStore returns an empty store.
func NewStore[T crud.Entity](build func(int64, map[string]any) T, apply func(*T, map[string]any), field func(T, string) string) *Store[T] {
	return &Store[T]{
		rows:      map[int64]T{},
		links:     map[int64]map[string][]int64{},
		Relations: map[int64]map[string]int64{},
		Build:     build,
		Apply:     apply,
		Field:     field,
	}
}

// Seed inserts a row directly and returns it.
func (s *Store[T]) Seed(fields map[string]any) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	row := s.Build(s.nextID, fields)
	s.rows[s.nextID] = row
	return row
}

// SetRelation fixes the CountRelation answer for id.
func (s *Store[T]) SetRelation(id int64, relation string, n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Relations[id] == nil {
		s.Relations[id] = map[string]int64{}
	}
	s.Relations[id][relation] = n
}

// Linked returns the ids linked to id through relation.
func (s *Store[T]) Linked(id int64, relation string) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.links[id][relation]
}

// Len is the number of stored rows.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// HasValue reports whether any row other than excludeID has field == value.
func (s *Store[T]) HasValue(field, value string, excludeID *int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasValue(field, value, excludeID)
}

func (s *Store[T]) hasValue(field, value string, excludeID *int64) bool {
	for id, row := range s.rows {
		if excludeID != nil && *excludeID == id {
			continue
		}
		if s.Field(row, field) == value {
			return true
		}
	}
	return false
}

func (s *Store[T]) List(_ context.Context, q crud.ListQuery) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	s.Reads++

	rows := s.match(q)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := s.Field(rows[i], q.Sort), s.Field(rows[j], q.Sort)
		if a == b {
			return rows[i].EntityID() < rows[j].EntityID()
		}
		less := lessValue(a, b)
		if q.Desc {
			return !less
		}
		return less
	})

	if q.Offset >= len(rows) {
		return []T{}, nil
	}
	end := len(rows)
	if q.Limit > 0 && q.Offset+q.Limit < end {
		end = q.Offset + q.Limit
	}
	return rows[q.Offset:end], nil
}

func (s *Store[T]) Count(_ context.Context, q crud.ListQuery) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	return int64(len(s.match(q))), nil
}

func (s *Store[T]) FindByID(_ context.Context, id int64, _ crud.Shape) (T, error) {
	row, err := s.findByID(id)
	if s.AfterRead != nil {
		s.AfterRead()
	}
	return row, err
}

func (s *Store[T]) findByID(id int64) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if s.Err != nil {
		return zero, s.Err
	}
	s.Reads++
	row, ok := s.rows[id]
	if !ok {
		return zero, crud.ErrNotFound
	}
	return row, nil
}

func (s *Store[T]) Create(_ context.Context, p crud.Payload) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if err := s.beforeWrite(p, nil); err != nil {
		return zero, err
	}
	s.nextID++
	row := s.Build(s.nextID, p.Fields)
	s.rows[s.nextID] = row
	s.setLinks(s.nextID, p.Links)
	s.Writes++
	return row, nil
}

func (s *Store[T]) Update(_ context.Context, id int64, p crud.Payload) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	row, ok := s.rows[id]
	if !ok {
		return zero, crud.ErrNotFound
	}
	if err := s.beforeWrite(p, &id); err != nil {
		return zero, err
	}
	s.Apply(&row, p.Fields)
	s.rows[id] = row
	s.setLinks(id, p.Links)
	s.Writes++
	return row, nil
}

func (s *Store[T]) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.rows[id]; !ok {
		return crud.ErrNotFound
	}
	delete(s.rows, id)
	delete(s.links, id)
	s.Writes++
	return nil
}

func (s *Store[T]) CountRelation(_ context.Context, id int64, relation string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	return s.Relations[id][relation], nil
}

func (s *Store[T]) beforeWrite(p crud.Payload, self *int64) error {
	if s.Err != nil {
		return s.Err
	}
	if s.BeforeWrite != nil {
		if err := s.BeforeWrite(p.Fields); err != nil {
			return err
		}
	}
	for _, field := range s.Unique {
		v, ok := p.Fields[field]
		if !ok {
			continue
		}
		if s.hasValue(field, fmt.Sprint(v), self) {
			return fmt.Errorf("%s %q: %w", field, v, crud.ErrDuplicate)
		}
	}
	return nil
}

func (s *Store[T]) setLinks(id int64, links map[string][]int64) {
	for rel, ids := range links {
		if s.links[id] == nil {
			s.links[id] = map[string][]int64{}
		}
		s.links[id][rel] = append([]int64(nil), ids...)
	}
}

func (s *Store[T]) match(q crud.ListQuery) []T {
	ids := make([]int64, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := []T{}
	for _, id := range ids {
		row := s.rows[id]
		if q.Search != "" && !s.matchesSearch(row, q) {
			continue
		}
		if !s.matchesFilters(id, row, q.Filters) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func (s *Store[T]) matchesSearch(row T, q crud.ListQuery) bool {
	needle := strings.ToLower(q.Search)
	for _, f := range q.SearchFields {
		if strings.Contains(strings.ToLower(s.Field(row, f)), needle) {
			return true
		}
	}
	return false
}

func (s *Store[T]) matchesFilters(id int64, row T, filters []crud.Filter) bool {
	for _, f := range filters {
		switch f.Op {
		case crud.OpEq:
			if s.Field(row, f.Field) != fmt.Sprint(f.Value) {
				return false
			}
		case crud.OpIsNull:
			if s.Field(row, f.Field) != "" {
				return false
			}
		case crud.OpGte, crud.OpLte:
			got, err1 := strconv.ParseFloat(s.Field(row, f.Field), 64)
			want, err2 := strconv.ParseFloat(fmt.Sprint(f.Value), 64)
			if err1 != nil || err2 != nil {
				return false
			}
			if (f.Op == crud.OpGte && got < want) || (f.Op == crud.OpLte && got > want) {
				return false
			}
		case crud.OpHas:
			found := false
			for _, linked := range s.links[id][f.Field] {
				if linked == f.Value {
					found = true
				}
			}
			if !found {
				return false
			}
		case crud.OpHasAny:
			has := s.Relations[id][f.Field] > 0
			if has != f.Value.(bool) {
				return false
			}
		}
	}
	return true
}

func lessValue(a, b string) bool {
	x, errA := strconv.ParseFloat(a, 64)
	y, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		return x < y
	}
	return strings.ToLower(a) < strings.ToLower(b)
}

// SlugChecker answers slug.Checker from stores keyed by kind.
type SlugChecker map[slug.Kind]interface {
	HasValue(field, value string, excludeID *int64) bool
}

func (c SlugChecker) SlugExists(_ context.Context, kind slug.Kind, s string, excludeID *int64) (bool, error) {
	store, ok := c[kind]
	if !ok {
		return false, nil
	}
	return store.HasValue("slug", s, excludeID), nil
}
