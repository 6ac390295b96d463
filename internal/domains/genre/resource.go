// Package genre serves the /genres catalogue resource.
package genre

import (
	"context"
	"fmt"
	"strings"

	"cinenacional-backend/internal/infrastructure/database"
	"cinenacional-backend/internal/shared/crud"
	"cinenacional-backend/internal/shared/slug"
	"cinenacional-backend/internal/shared/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Table = database.TableSpec{
	Name:     "genres",
	Columns:  []string{"id", "name", "slug", "description", "created_at", "updated_at"},
	Writable: []string{"name", "slug", "description"},
	Relations: map[string]database.Relation{
		"movies": {Table: "movie_genres", Key: "genre_id", Target: "movie_id"},
	},
	ListCounts: []string{"movies"},
	Timestamps: true,
}

func NewStore(pool *pgxpool.Pool) *database.Table[Genre] {
	return database.NewTable[Genre](pool, Table, nil)
}

func payload(in GenreInput) crud.Payload {
	p := crud.NewPayload()
	p.Set("name", strings.TrimSpace(in.Name))
	p.Set("description", utils.TrimPtr(in.Description))
	return p
}

// Resource wires the genre handlers over store.
func Resource(store crud.Store[Genre], deps crud.Deps) (crud.Resource, error) {
	list, err := crud.NewListCreate(crud.ListConfig[Genre, GenreInput]{
		Resource: "genres",
		Entity:   "Género",
		Store:    store,
		Search:   []string{"name"},
		Sort:     crud.Sort{Fields: []string{"name", "created_at", "id"}, DefaultField: "name"},
		BuildCreate: func(_ context.Context, in GenreInput) (crud.Payload, error) {
			return payload(in), nil
		},
		Slug: &crud.SlugRule[GenreInput]{
			Kind:   slug.KindGenre,
			Source: func(in GenreInput) string { return in.Name },
		},
		Invalidates: []string{"movies"},
	}, deps)
	if err != nil {
		return crud.Resource{}, err
	}

	item, err := crud.NewItem(crud.ItemConfig[Genre, GenreInput]{
		Resource: "genres",
		Entity:   "Género",
		Store:    store,
		BuildUpdate: func(_ context.Context, in GenreInput, _ Genre) (crud.Payload, error) {
			return payload(in), nil
		},
		Slug: &crud.UpdateSlugRule[Genre, GenreInput]{
			Kind:    slug.KindGenre,
			Source:  func(in GenreInput) string { return strings.TrimSpace(in.Name) },
			Current: func(g Genre) string { return g.Name },
		},
		Guards: []crud.DeleteGuard{{
			Relation: "movies",
			Message: func(n int64) string {
				return fmt.Sprintf("No se puede eliminar el género porque tiene %d película(s) asociada(s)", n)
			},
		}},
		Invalidates: []string{"movies"},
	}, deps)
	if err != nil {
		return crud.Resource{}, err
	}

	return crud.Resource{Path: "/genres", Collection: list, Member: item}, nil
}
