package database

import (
	"testing"

	"cinenacional-backend/internal/shared/crud"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genreSpec() TableSpec {
	return TableSpec{
		Name:     "genres",
		Columns:  []string{"id", "name", "slug", "description"},
		Writable: []string{"name", "slug", "description"},
		Relations: map[string]Relation{
			"movies": {Table: "movie_genres", Key: "genre_id", Target: "movie_id"},
		},
		ListCounts: []string{"movies"},
		Timestamps: true,
	}
}

func TestBuildList(t *testing.T) {
	spec := genreSpec()

	sql, args, err := spec.BuildList(crud.ListQuery{
		Search:       "dra_ma",
		SearchFields: []string{"name", "slug"},
		Sort:         "name",
		Desc:         true,
		Limit:        10,
		Offset:       10,
	})

	require.NoError(t, err)
	assert.Equal(t,
		"SELECT t.id, t.name, t.slug, t.description, "+
			"(SELECT COUNT(*) FROM movie_genres r WHERE r.genre_id = t.id) AS movies_count "+
			"FROM genres t WHERE (t.name ILIKE $1 OR t.slug ILIKE $1) "+
			"ORDER BY t.name DESC, t.id ASC LIMIT $2 OFFSET $3",
		sql)
	assert.Equal(t, []any{`%dra\_ma%`, 10, 10}, args)
}

func TestBuildCount_SharesFilters(t *testing.T) {
	spec := genreSpec()
	spec.Columns = append(spec.Columns, "parent_id", "year")

	sql, args, err := spec.BuildCount(crud.ListQuery{
		Filters: []crud.Filter{
			crud.IsNull("parent_id"),
			crud.Gte("year", 1990),
			crud.Lte("year", 1999),
			crud.Has("movies", 7),
			crud.HasAny("movies", false),
		},
		Limit: 20,
	})

	require.NoError(t, err)
	assert.Equal(t,
		"SELECT COUNT(*) FROM genres t WHERE t.parent_id IS NULL AND t.year >= $1 AND t.year <= $2 "+
			"AND EXISTS (SELECT 1 FROM movie_genres r WHERE r.genre_id = t.id AND r.movie_id = $3) "+
			"AND NOT EXISTS (SELECT 1 FROM movie_genres r WHERE r.genre_id = t.id)",
		sql)
	assert.Equal(t, []any{1990, 1999, int64(7)}, args)
}

func TestBuildList_RejectsUnknownIdentifiers(t *testing.T) {
	spec := genreSpec()

	_, _, err := spec.BuildList(crud.ListQuery{Sort: "name; DROP TABLE genres"})
	assert.Error(t, err)

	_, _, err = spec.BuildList(crud.ListQuery{Search: "x", SearchFields: []string{"password"}})
	assert.Error(t, err)

	_, _, err = spec.BuildCount(crud.ListQuery{Filters: []crud.Filter{crud.Eq("nope", 1)}})
	assert.Error(t, err)

	_, _, err = spec.BuildCount(crud.ListQuery{Filters: []crud.Filter{crud.Has("people", 1)}})
	assert.Error(t, err)
}

func TestBuildInsert(t *testing.T) {
	spec := genreSpec()

	sql, args, err := spec.BuildInsert(map[string]any{"slug": "drama", "name": "Drama"})

	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO genres AS t (name, slug) VALUES ($1, $2) RETURNING t.id, t.name, t.slug, t.description, "+
			"(SELECT COUNT(*) FROM movie_genres r WHERE r.genre_id = t.id) AS movies_count",
		sql)
	assert.Equal(t, []any{"Drama", "drama"}, args)

	_, _, err = spec.BuildInsert(map[string]any{"id": 3})
	assert.Error(t, err)

	_, _, err = spec.BuildInsert(nil)
	assert.Error(t, err)
}

func TestBuildUpdate(t *testing.T) {
	spec := genreSpec()

	sql, args, err := spec.BuildUpdate(4, map[string]any{"name": "Comedia", "description": nil})

	require.NoError(t, err)
	assert.Equal(t, "UPDATE genres SET description = $1, name = $2, updated_at = NOW() WHERE id = $3", sql)
	assert.Equal(t, []any{nil, "Comedia", int64(4)}, args)
}

func TestSelectList_DetailAddsCounts(t *testing.T) {
	spec := genreSpec()
	spec.Relations["children"] = Relation{Table: "genres", Key: "parent_id"}
	spec.DetailCounts = []string{"children", "movies"}

	got := spec.selectList(crud.ShapeDetail)

	assert.Contains(t, got, "AS movies_count")
	assert.Contains(t, got, "(SELECT COUNT(*) FROM genres r WHERE r.parent_id = t.id) AS children_count")
	assert.NotContains(t, spec.selectList(crud.ShapeList), "children_count")
}
