package crudtest

import (
	"context"
	"testing"

	"cinenacional-backend/internal/shared/crud"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taggedRow struct {
	ID       int64   `db:"id"`
	Name     string  `db:"name"`
	Year     *int    `db:"year"`
	ParentID *int64  `db:"parent_id"`
	Active   bool    `db:"is_active"`
	Note     *string `db:"note"`
}

func (r taggedRow) EntityID() int64 { return r.ID }

func TestTaggedStore(t *testing.T) {
	s := NewTaggedStore[taggedRow]()
	ctx := context.Background()
	year := 1985

	created, err := s.Create(ctx, crud.Payload{Fields: map[string]any{
		"name": "La historia oficial", "year": &year, "parent_id": int64(3), "is_active": true, "note": nil,
	}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	require.NotNil(t, created.Year)
	assert.Equal(t, 1985, *created.Year)
	require.NotNil(t, created.ParentID)
	assert.Equal(t, int64(3), *created.ParentID)
	assert.True(t, created.Active)
	assert.Nil(t, created.Note)

	s.Seed(map[string]any{"name": "Nueve reinas"})

	roots, err := s.List(ctx, crud.ListQuery{Filters: []crud.Filter{crud.IsNull("parent_id")}, Sort: "name"})
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, "Nueve reinas", roots[0].Name)

	updated, err := s.Update(ctx, 1, crud.Payload{Fields: map[string]any{"parent_id": nil}})
	require.NoError(t, err)
	assert.Nil(t, updated.ParentID)
	assert.Equal(t, "La historia oficial", updated.Name)
}
