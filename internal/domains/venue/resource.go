// Package venue serves /screening-venues.
package venue

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"cinenacional-backend/internal/infrastructure/database"
	"cinenacional-backend/internal/shared/crud"
	"cinenacional-backend/internal/shared/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Table = database.TableSpec{
	Name: "screening_venues",
	Columns: []string{
		"id", "name", "type", "description", "website", "address", "city", "province", "country",
		"is_active", "created_at", "updated_at",
	},
	Writable: []string{
		"name", "type", "description", "website", "address", "city", "province", "country", "is_active",
	},
	Relations: map[string]database.Relation{
		"screenings": {Table: "movie_screenings", Key: "venue_id", Target: "movie_id"},
	},
	ListCounts: []string{"screenings"},
	Timestamps: true,
}

func NewStore(pool *pgxpool.Pool) *database.Table[Venue] {
	return database.NewTable[Venue](pool, Table, nil)
}

func filters(q url.Values) ([]crud.Filter, error) {
	var out []crud.Filter
	typ, ok, err := crud.EnumParam(q, "type", Types...)
	if err != nil {
		return nil, err
	}
	if ok {
		out = append(out, crud.Eq("type", typ))
	}
	active, ok, err := crud.BoolParam(q, "isActive")
	if err != nil {
		return nil, err
	}
	if ok {
		out = append(out, crud.Eq("is_active", active))
	}
	return out, nil
}

func payload(in VenueInput) crud.Payload {
	p := crud.NewPayload()
	p.Set("name", strings.TrimSpace(in.Name))
	p.Set("type", strings.ToUpper(strings.TrimSpace(in.Type)))
	p.Set("description", utils.TrimPtr(in.Description))
	p.Set("website", utils.TrimPtr(in.Website))
	p.Set("address", utils.TrimPtr(in.Address))
	p.Set("city", utils.TrimPtr(in.City))
	p.Set("province", utils.TrimPtr(in.Province))
	p.Set("country", utils.TrimPtr(in.Country))
	if in.IsActive != nil {
		p.Set("is_active", *in.IsActive)
	}
	return p
}

func Resource(store crud.Store[Venue], deps crud.Deps) (crud.Resource, error) {
	list, err := crud.NewListCreate(crud.ListConfig[Venue, VenueInput]{
		Resource:   "screening-venues",
		Entity:     "Pantalla de estreno",
		Store:      store,
		Search:     []string{"name", "description", "city"},
		Sort:       crud.Sort{Fields: []string{"name", "type", "city", "created_at", "id"}, DefaultField: "name"},
		Pagination: crud.Pagination{ItemsKey: "venues"},
		Filters:    filters,
		BuildCreate: func(_ context.Context, in VenueInput) (crud.Payload, error) {
			p := payload(in)
			if in.IsActive == nil {
				p.Set("is_active", true)
			}
			return p, nil
		},
	}, deps)
	if err != nil {
		return crud.Resource{}, err
	}

	item, err := crud.NewItem(crud.ItemConfig[Venue, VenueInput]{
		Resource: "screening-venues",
		Entity:   "Pantalla de estreno",
		Store:    store,
		BuildUpdate: func(_ context.Context, in VenueInput, _ Venue) (crud.Payload, error) {
			return payload(in), nil
		},
		Guards: []crud.DeleteGuard{{
			Relation: "screenings",
			Status:   http.StatusBadRequest,
			Message: func(n int64) string {
				return fmt.Sprintf("No se puede eliminar la pantalla porque tiene %d estreno(s) asociado(s)", n)
			},
		}},
		Invalidates: []string{"movies"},
	}, deps)
	if err != nil {
		return crud.Resource{}, err
	}

	return crud.Resource{Path: "/screening-venues", Collection: list, Member: item}, nil
}
