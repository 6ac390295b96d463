package genre

import (
	"context"
	"net/http"
	"testing"

	"cinenacional-backend/internal/shared/crud"
	"cinenacional-backend/internal/shared/crud/crudtest"
	"cinenacional-backend/internal/shared/slug"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*gin.Engine, *crudtest.Store[Genre]) {
	t.Helper()
	store := crudtest.NewTaggedStore[Genre]()
	store.Unique = []string{"slug"}
	res, err := Resource(store, crudtest.Deps(crudtest.SlugChecker{slug.KindGenre: store}))
	require.NoError(t, err)
	return crudtest.Router(res), store
}

func TestCreateGenre(t *testing.T) {
	r, store := setup(t)
	store.Seed(map[string]any{"name": "Acción", "slug": "accion"})

	w := crudtest.Do(r, http.MethodPost, "/api/v1/genres", GenreInput{Name: "  Acción "}, true)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := crudtest.Decode(t, w)
	assert.Equal(t, "Acción", body["name"])
	assert.Equal(t, "accion-1", body["slug"])
}

func TestCreateGenre_Validation(t *testing.T) {
	r, _ := setup(t)

	w := crudtest.Do(r, http.MethodPost, "/api/v1/genres", GenreInput{Name: "   "}, true)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := crudtest.Decode(t, w)
	assert.Contains(t, body, "details")
}

func TestCreateGenre_RequiresEditor(t *testing.T) {
	r, store := setup(t)

	w := crudtest.Do(r, http.MethodPost, "/api/v1/genres", GenreInput{Name: "Drama"}, false)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, store.Len())
}

func TestUpdateGenre_Reslug(t *testing.T) {
	r, store := setup(t)
	g := store.Seed(map[string]any{"name": "Comedia", "slug": "comedia"})

	w := crudtest.Do(r, http.MethodPut, "/api/v1/genres/1", GenreInput{Name: "Comedia dramática"}, true)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got, _ := store.FindByID(context.Background(), g.ID, crud.ShapeList)
	assert.Equal(t, "comedia-dramatica", got.Slug)
}

func TestDeleteGenre_Guard(t *testing.T) {
	r, store := setup(t)
	store.Seed(map[string]any{"name": "Drama", "slug": "drama"})
	store.SetRelation(1, "movies", 4)

	w := crudtest.Do(r, http.MethodDelete, "/api/v1/genres/1", nil, true)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "No se puede eliminar el género porque tiene 4 película(s) asociada(s)", crudtest.Decode(t, w)["error"])
	assert.Equal(t, 1, store.Len())

	store.SetRelation(1, "movies", 0)
	w = crudtest.Do(r, http.MethodDelete, "/api/v1/genres/1", nil, true)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestTableSpec_ListCountsMovies(t *testing.T) {
	sql, _, err := Table.BuildList(crud.ListQuery{Sort: "name", Limit: 20})
	require.NoError(t, err)
	assert.Contains(t, sql, "(SELECT COUNT(*) FROM movie_genres r WHERE r.genre_id = t.id) AS movies_count")
}
