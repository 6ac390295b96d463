package theme

import (
	"net/http"
	"testing"

	"cinenacional-backend/internal/shared/crud/crudtest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*gin.Engine, *crudtest.Store[Theme]) {
	t.Helper()
	store := crudtest.NewTaggedStore[Theme]()
	store.Unique = []string{"name"}
	res, err := Resource(store, crudtest.Deps(crudtest.SlugChecker{}))
	require.NoError(t, err)
	return crudtest.Router(res), store
}

func TestListThemes_DefaultsToName(t *testing.T) {
	r, store := setup(t)
	store.Seed(map[string]any{"name": "Tango"})
	store.Seed(map[string]any{"name": "Dictadura"})
	store.Seed(map[string]any{"name": "Fútbol"})

	w := crudtest.Do(r, http.MethodGet, "/api/v1/themes", nil, false)

	require.Equal(t, http.StatusOK, w.Code)
	body := crudtest.Decode(t, w)
	assert.EqualValues(t, 50, body["limit"])
	items := body["data"].([]any)
	require.Len(t, items, 3)
	assert.Equal(t, "Dictadura", items[0].(map[string]any)["name"])
	assert.Equal(t, "Tango", items[2].(map[string]any)["name"])
}

func TestCreateTheme_DuplicateName(t *testing.T) {
	r, store := setup(t)
	store.Seed(map[string]any{"name": "Exilio"})

	w := crudtest.Do(r, http.MethodPost, "/api/v1/themes", ThemeInput{Name: "Exilio"}, true)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 1, store.Len())
}

func TestCreateTheme_NoSlug(t *testing.T) {
	r, _ := setup(t)

	w := crudtest.Do(r, http.MethodPost, "/api/v1/themes", ThemeInput{Name: " Memoria "}, true)

	require.Equal(t, http.StatusCreated, w.Code)
	body := crudtest.Decode(t, w)
	assert.Equal(t, "Memoria", body["name"])
	assert.NotContains(t, body, "slug")
}

func TestDeleteTheme_Guard(t *testing.T) {
	r, store := setup(t)
	store.Seed(map[string]any{"name": "Tango"})
	store.SetRelation(1, "movies", 2)

	w := crudtest.Do(r, http.MethodDelete, "/api/v1/themes/1", nil, true)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "No se puede eliminar el theme porque está asignado a 2 película(s)", crudtest.Decode(t, w)["error"])
}

func TestGetTheme_NotFound(t *testing.T) {
	r, _ := setup(t)

	w := crudtest.Do(r, http.MethodGet, "/api/v1/themes/99", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = crudtest.Do(r, http.MethodGet, "/api/v1/themes/abc", nil, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
