// Package image serves /images and runs the variant pipeline behind it.
package image

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"

	"cinenacional-backend/internal/infrastructure/database"
	"cinenacional-backend/internal/infrastructure/queue"
	"cinenacional-backend/internal/shared"
	"cinenacional-backend/internal/shared/crud"
	"cinenacional-backend/internal/shared/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	resourceName = "images"
	entityName   = "Imagen"
)

var Table = database.TableSpec{
	Name: "images",
	Columns: []string{
		"id", "movie_id", "person_id", "object_key", "url", "caption", "content_type",
		"width", "height", "status", "variants", "created_at", "updated_at",
	},
	Writable: []string{
		"movie_id", "person_id", "object_key", "url", "caption", "content_type",
		"width", "height", "status", "variants",
	},
	Timestamps: true,
}

func NewStore(pool *pgxpool.Pool) *database.Table[Image] {
	return database.NewTable[Image](pool, Table, nil)
}

func filters(q url.Values) ([]crud.Filter, error) {
	var out []crud.Filter
	for _, key := range []struct{ param, column string }{{"movieId", "movie_id"}, {"personId", "person_id"}} {
		id, ok, err := crud.IntParam(q, key.param)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, crud.Eq(key.column, id))
		}
	}
	if s := q.Get("status"); s != "" {
		if !slices.Contains(Statuses, s) {
			return nil, fmt.Errorf("parámetro status inválido: debe ser uno de %v", Statuses)
		}
		out = append(out, crud.Eq("status", s))
	}
	return out, nil
}

// Resource wires /images. Uploads go through the multipart POST served by
// uploads; the JSON create of the factory is not offered.
func Resource(store crud.Store[Image], uploads *Uploader, tasks queue.Enqueuer, deps crud.Deps) (crud.Resource, error) {
	list, err := crud.NewListCreate(crud.ListConfig[Image, ImageUpdate]{
		Resource: resourceName,
		Entity:   entityName,
		Store:    store,
		Search:   []string{"caption"},
		Sort: crud.Sort{
			Fields:       []string{"created_at", "id", "status"},
			DefaultField: "created_at",
			DefaultDesc:  true,
		},
		Filters: filters,
	}, deps)
	if err != nil {
		return crud.Resource{}, err
	}

	item, err := crud.NewItem(crud.ItemConfig[Image, ImageUpdate]{
		Resource: resourceName,
		Entity:   entityName,
		Store:    store,
		BuildUpdate: func(_ context.Context, in ImageUpdate, _ Image) (crud.Payload, error) {
			p := crud.NewPayload()
			p.Set("caption", utils.TrimPtr(in.Caption))
			p.Set("movie_id", in.MovieID)
			p.Set("person_id", in.PersonID)
			return p, nil
		},
		AfterDelete: func(ctx context.Context, img Image) error {
			return tasks.Enqueue(ctx, shared.TypeDeleteImages, shared.DeleteImagesPayload{
				ImageID: img.ID,
				Prefix:  img.Prefix(),
			})
		},
		Invalidates: []string{"movies", "people"},
	}, deps)
	if err != nil {
		return crud.Resource{}, err
	}

	return crud.Resource{
		Path:       "/images",
		Collection: list,
		Member:     item,
		Extra: []crud.Route{
			{Method: http.MethodPost, Path: "", Handler: uploads.Upload},
			{Method: http.MethodPost, Path: "/:id/reprocess", Handler: uploads.Reprocess},
		},
	}, nil
}
