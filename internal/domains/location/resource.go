// Package location serves /locations, a self-referencing place tree.
package location

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"cinenacional-backend/internal/infrastructure/database"
	"cinenacional-backend/internal/shared/apperror"
	"cinenacional-backend/internal/shared/crud"
	"cinenacional-backend/internal/shared/slug"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Table = database.TableSpec{
	Name:     "locations",
	Columns:  []string{"id", "name", "slug", "parent_id", "latitude", "longitude", "created_at", "updated_at"},
	Writable: []string{"name", "slug", "parent_id", "latitude", "longitude"},
	Relations: map[string]database.Relation{
		"children": {Table: "locations", Key: "parent_id"},
		"people":   {Table: "people", Key: "birth_location_id"},
	},
	ListCounts:   []string{"children"},
	DetailCounts: []string{"people"},
	Timestamps:   true,
}

func NewStore(pool *pgxpool.Pool) *database.Table[Location] {
	return database.NewTable[Location](pool, Table, nil)
}

// filters maps ?parentId=<id> and ?parentId=null (roots only).
func filters(q url.Values) ([]crud.Filter, error) {
	if strings.EqualFold(strings.TrimSpace(q.Get("parentId")), "null") {
		return []crud.Filter{crud.IsNull("parent_id")}, nil
	}
	id, ok, err := crud.IntParam(q, "parentId")
	if err != nil || !ok {
		return nil, err
	}
	return []crud.Filter{crud.Eq("parent_id", id)}, nil
}

func payload(in LocationInput) crud.Payload {
	p := crud.NewPayload()
	p.Set("name", strings.TrimSpace(in.Name))
	p.Set("parent_id", in.ParentID)
	p.Set("latitude", in.Latitude)
	p.Set("longitude", in.Longitude)
	return p
}

// Resource wires the location handlers. tree guards against cycles on update.
func Resource(store crud.Store[Location], tree Ancestry, deps crud.Deps) (crud.Resource, error) {
	list, err := crud.NewListCreate(crud.ListConfig[Location, LocationInput]{
		Resource:   "locations",
		Entity:     "Lugar",
		Store:      store,
		Search:     []string{"name"},
		Sort:       crud.Sort{Fields: []string{"name", "created_at", "id"}, DefaultField: "name"},
		Pagination: crud.Pagination{DefaultLimit: 50, MaxLimit: 500},
		Filters:    filters,
		BuildCreate: func(_ context.Context, in LocationInput) (crud.Payload, error) {
			return payload(in), nil
		},
		Slug: &crud.SlugRule[LocationInput]{
			Kind:   slug.KindLocation,
			Source: func(in LocationInput) string { return in.Name },
		},
		Invalidates: []string{"people"},
	}, deps)
	if err != nil {
		return crud.Resource{}, err
	}

	item, err := crud.NewItem(crud.ItemConfig[Location, LocationInput]{
		Resource: "locations",
		Entity:   "Lugar",
		Store:    store,
		BuildUpdate: func(ctx context.Context, in LocationInput, existing Location) (crud.Payload, error) {
			if in.ParentID != nil {
				if *in.ParentID == existing.ID {
					return crud.Payload{}, apperror.Validation("Un lugar no puede ser su propio padre", nil)
				}
				below, err := tree.IsDescendant(ctx, existing.ID, *in.ParentID)
				if err != nil {
					return crud.Payload{}, err
				}
				if below {
					return crud.Payload{}, apperror.Validation("No se puede asignar un descendiente como padre", nil)
				}
			}
			return payload(in), nil
		},
		Slug: &crud.UpdateSlugRule[Location, LocationInput]{
			Kind:    slug.KindLocation,
			Source:  func(in LocationInput) string { return strings.TrimSpace(in.Name) },
			Current: func(l Location) string { return l.Name },
		},
		Guards: []crud.DeleteGuard{
			{
				Relation: "children",
				Message: func(n int64) string {
					return fmt.Sprintf("No se puede eliminar el lugar porque tiene %d lugar(es) dependiente(s)", n)
				},
			},
			{
				Relation: "people",
				Message: func(n int64) string {
					return fmt.Sprintf("No se puede eliminar el lugar porque está asociado a %d persona(s)", n)
				},
			},
		},
		Invalidates: []string{"people"},
	}, deps)
	if err != nil {
		return crud.Resource{}, err
	}

	return crud.Resource{Path: "/locations", Collection: list, Member: item}, nil
}
