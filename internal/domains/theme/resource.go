// Package theme serves /themes. Themes have no slug; the name itself is unique.
package theme

import (
	"context"
	"fmt"
	"strings"

	"cinenacional-backend/internal/infrastructure/database"
	"cinenacional-backend/internal/shared/crud"
	"cinenacional-backend/internal/shared/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Table = database.TableSpec{
	Name:     "themes",
	Columns:  []string{"id", "name", "description", "created_at", "updated_at"},
	Writable: []string{"name", "description"},
	Relations: map[string]database.Relation{
		"movies": {Table: "movie_themes", Key: "theme_id", Target: "movie_id"},
	},
	ListCounts: []string{"movies"},
	Timestamps: true,
}

func NewStore(pool *pgxpool.Pool) *database.Table[Theme] {
	return database.NewTable[Theme](pool, Table, nil)
}

func payload(in ThemeInput) crud.Payload {
	p := crud.NewPayload()
	p.Set("name", strings.TrimSpace(in.Name))
	p.Set("description", utils.TrimPtr(in.Description))
	return p
}

func Resource(store crud.Store[Theme], deps crud.Deps) (crud.Resource, error) {
	build := func(_ context.Context, in ThemeInput) (crud.Payload, error) { return payload(in), nil }

	list, err := crud.NewListCreate(crud.ListConfig[Theme, ThemeInput]{
		Resource:    "themes",
		Entity:      "Theme",
		Store:       store,
		Search:      []string{"name"},
		Sort:        crud.Sort{Fields: []string{"name", "created_at", "id"}, DefaultField: "name"},
		Pagination:  crud.Pagination{DefaultLimit: 50, MaxLimit: 500},
		BuildCreate: build,
	}, deps)
	if err != nil {
		return crud.Resource{}, err
	}

	item, err := crud.NewItem(crud.ItemConfig[Theme, ThemeInput]{
		Resource: "themes",
		Entity:   "Theme",
		Store:    store,
		BuildUpdate: func(ctx context.Context, in ThemeInput, _ Theme) (crud.Payload, error) {
			return build(ctx, in)
		},
		Guards: []crud.DeleteGuard{{
			Relation: "movies",
			Message: func(n int64) string {
				return fmt.Sprintf("No se puede eliminar el theme porque está asignado a %d película(s)", n)
			},
		}},
		Invalidates: []string{"movies"},
	}, deps)
	if err != nil {
		return crud.Resource{}, err
	}

	return crud.Resource{Path: "/themes", Collection: list, Member: item}, nil
}
