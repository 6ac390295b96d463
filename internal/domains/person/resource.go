// Package person serves /people: cast and crew members, their external
// links, and the tooling to split and review their names.
package person

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"cinenacional-backend/internal/infrastructure/database"
	"cinenacional-backend/internal/shared/crud"
	"cinenacional-backend/internal/shared/slug"
	"cinenacional-backend/internal/shared/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Table = database.TableSpec{
	Name: "people",
	Columns: []string{
		"id", "first_name", "last_name", "slug", "real_name", "gender", "birth_date", "death_date",
		"birth_location_id", "biography", "is_active", "created_at", "updated_at",
	},
	Writable: []string{
		"first_name", "last_name", "slug", "real_name", "gender", "birth_date", "death_date",
		"birth_location_id", "biography", "is_active",
	},
	Relations: map[string]database.Relation{
		"roles": {Table: "person_roles", Key: "person_id", Target: "movie_id"},
		"cast":  {Table: "movie_cast", Key: "person_id", Target: "movie_id"},
		"crew":  {Table: "movie_crew", Key: "person_id", Target: "movie_id"},
		"links": {Table: "person_links", Key: "person_id"},
	},
	ListCounts:   []string{"roles"},
	DetailCounts: []string{"cast", "crew", "links"},
	Timestamps:   true,
}

func NewStore(pool *pgxpool.Pool) *database.Table[Person] {
	return database.NewTable[Person](pool, Table, hydrateLinks)
}

func filters(q url.Values) ([]crud.Filter, error) {
	var out []crud.Filter
	gender, ok, err := crud.EnumParam(q, "gender", Genders...)
	if err != nil {
		return nil, err
	}
	if ok {
		out = append(out, crud.Eq("gender", gender))
	}
	hasLinks, ok, err := crud.BoolParam(q, "hasLinks")
	if err != nil {
		return nil, err
	}
	if ok {
		out = append(out, crud.HasAny("links", hasLinks))
	}
	return out, nil
}

func payload(in PersonInput) crud.Payload {
	p := crud.NewPayload()
	p.Set("first_name", utils.TrimPtr(in.FirstName))
	p.Set("last_name", utils.TrimPtr(in.LastName))
	p.Set("real_name", utils.TrimPtr(in.RealName))
	p.Set("gender", upper(in.Gender))
	p.Set("birth_date", parseDate(in.BirthDate))
	p.Set("death_date", parseDate(in.DeathDate))
	p.Set("birth_location_id", in.BirthLocationID)
	p.Set("biography", utils.TrimPtr(in.Biography))
	if in.IsActive != nil {
		p.Set("is_active", *in.IsActive)
	}
	return p
}

// Resource wires the people handlers plus GET /people/review-names.
func Resource(store crud.Store[Person], dir Directory, deps crud.Deps) (crud.Resource, error) {
	list, err := crud.NewListCreate(crud.ListConfig[Person, PersonInput]{
		Resource: "people",
		Entity:   "Persona",
		Store:    store,
		Search:   []string{"first_name", "last_name", "real_name"},
		Sort: crud.Sort{
			Fields:       []string{"last_name", "first_name", "birth_date", "created_at", "id"},
			DefaultField: "last_name",
		},
		Pagination: crud.Pagination{DefaultLimit: 50, MaxLimit: 200},
		Filters:    filters,
		BuildCreate: func(_ context.Context, in PersonInput) (crud.Payload, error) {
			p := payload(in)
			if in.IsActive == nil {
				p.Set("is_active", true)
			}
			return p, nil
		},
		Slug: &crud.SlugRule[PersonInput]{
			Kind:   slug.KindPerson,
			Source: PersonInput.FullName,
		},
	}, deps)
	if err != nil {
		return crud.Resource{}, err
	}

	item, err := crud.NewItem(crud.ItemConfig[Person, PersonInput]{
		Resource: "people",
		Entity:   "Persona",
		Store:    store,
		BuildUpdate: func(_ context.Context, in PersonInput, _ Person) (crud.Payload, error) {
			return payload(in), nil
		},
		Slug: &crud.UpdateSlugRule[Person, PersonInput]{
			Kind:    slug.KindPerson,
			Source:  PersonInput.FullName,
			Current: Person.FullName,
		},
		Guards: []crud.DeleteGuard{{
			Relation: "roles",
			Message: func(n int64) string {
				return fmt.Sprintf("No se puede eliminar esta persona porque está asociada a %d película(s)", n)
			},
			Extra: func(n int64) map[string]any { return map[string]any{"roleCount": n} },
		}},
		Invalidates: []string{"movies"},
	}, deps)
	if err != nil {
		return crud.Resource{}, err
	}

	return crud.Resource{
		Path:       "/people",
		Collection: list,
		Member:     item,
		Extra: []crud.Route{
			{Method: http.MethodGet, Path: "/review-names", Handler: reviewHandler(dir), Protected: true},
		},
	}, nil
}
