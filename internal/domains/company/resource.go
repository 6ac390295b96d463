// Package company serves /production-companies and /distribution-companies.
package company

import (
	"context"
	"fmt"
	"strings"

	"cinenacional-backend/internal/infrastructure/database"
	"cinenacional-backend/internal/shared/crud"
	"cinenacional-backend/internal/shared/slug"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TableSpec describes the table behind kind.
func TableSpec(kind Kind) database.TableSpec {
	return database.TableSpec{
		Name:     kind.Table,
		Columns:  []string{"id", "name", "slug", "created_at", "updated_at"},
		Writable: []string{"name", "slug"},
		Relations: map[string]database.Relation{
			"movies": {Table: kind.LinkTable, Key: "company_id", Target: "movie_id"},
		},
		ListCounts: []string{"movies"},
		Timestamps: true,
	}
}

func NewStore(pool *pgxpool.Pool, kind Kind) *database.Table[Company] {
	return database.NewTable[Company](pool, TableSpec(kind), nil)
}

func payload(in CompanyInput) crud.Payload {
	p := crud.NewPayload()
	p.Set("name", strings.TrimSpace(in.Name))
	return p
}

// Resource wires the handlers of one company kind.
func Resource(kind Kind, store crud.Store[Company], deps crud.Deps) (crud.Resource, error) {
	slugKind, err := slug.ParseKind(kind.SlugKind)
	if err != nil {
		return crud.Resource{}, err
	}

	list, err := crud.NewListCreate(crud.ListConfig[Company, CompanyInput]{
		Resource:   kind.Resource,
		Entity:     kind.Entity,
		Store:      store,
		Search:     []string{"name"},
		Sort:       crud.Sort{Fields: []string{"name", "created_at", "id"}, DefaultField: "name"},
		Pagination: crud.Pagination{DefaultLimit: 50, MaxLimit: 500},
		BuildCreate: func(_ context.Context, in CompanyInput) (crud.Payload, error) {
			return payload(in), nil
		},
		Slug: &crud.SlugRule[CompanyInput]{
			Kind:   slugKind,
			Source: func(in CompanyInput) string { return in.Name },
		},
	}, deps)
	if err != nil {
		return crud.Resource{}, err
	}

	item, err := crud.NewItem(crud.ItemConfig[Company, CompanyInput]{
		Resource: kind.Resource,
		Entity:   kind.Entity,
		Store:    store,
		BuildUpdate: func(_ context.Context, in CompanyInput, _ Company) (crud.Payload, error) {
			return payload(in), nil
		},
		Slug: &crud.UpdateSlugRule[Company, CompanyInput]{
			Kind:    slugKind,
			Source:  func(in CompanyInput) string { return strings.TrimSpace(in.Name) },
			Current: func(c Company) string { return c.Name },
		},
		Guards: []crud.DeleteGuard{{
			Relation: "movies",
			Message: func(n int64) string {
				return fmt.Sprintf("No se puede eliminar %s porque tiene %d película(s) asociada(s)", kind.Article, n)
			},
		}},
		Invalidates: []string{"movies"},
	}, deps)
	if err != nil {
		return crud.Resource{}, err
	}

	return crud.Resource{Path: "/" + kind.Resource, Collection: list, Member: item}, nil
}
