// Package movie serves /movies and their genre, theme and company links.
package movie

import (
	"context"
	"net/url"
	"strings"

	"cinenacional-backend/internal/infrastructure/database"
	"cinenacional-backend/internal/shared/crud"
	"cinenacional-backend/internal/shared/slug"
	"cinenacional-backend/internal/shared/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var Table = database.TableSpec{
	Name: "movies",
	Columns: []string{
		"id", "title", "original_title", "slug", "year", "release_date", "duration",
		"synopsis", "rating", "created_at", "updated_at",
	},
	Writable: []string{
		"title", "original_title", "slug", "year", "release_date", "duration", "synopsis", "rating",
	},
	Relations: map[string]database.Relation{
		"genres":                 {Table: "movie_genres", Key: "movie_id", Target: "genre_id"},
		"themes":                 {Table: "movie_themes", Key: "movie_id", Target: "theme_id"},
		"production_companies":   {Table: "movie_production_companies", Key: "movie_id", Target: "company_id"},
		"distribution_companies": {Table: "movie_distribution_companies", Key: "movie_id", Target: "company_id"},
		"cast":                   {Table: "movie_cast", Key: "movie_id", Target: "person_id"},
		"crew":                   {Table: "movie_crew", Key: "movie_id", Target: "person_id"},
		"screenings":             {Table: "movie_screenings", Key: "movie_id", Target: "venue_id"},
	},
	DetailCounts: []string{"cast", "crew", "screenings"},
	Timestamps:   true,
}

func NewStore(pool *pgxpool.Pool) *database.Table[Movie] {
	return database.NewTable[Movie](pool, Table, hydrateGenres)
}

// hydrateGenres attaches genre summaries to detail reads.
func hydrateGenres(ctx context.Context, q database.Querier, items []Movie, shape crud.Shape) error {
	if shape != crud.ShapeDetail {
		return nil
	}
	ids := make([]int64, len(items))
	for i, m := range items {
		ids[i] = m.ID
	}
	rows, err := q.Query(ctx, `
		SELECT g.id, mg.movie_id, g.name, g.slug
		  FROM movie_genres mg
		  JOIN genres g ON g.id = mg.genre_id
		 WHERE mg.movie_id = ANY($1)
		 ORDER BY g.name`, ids)
	if err != nil {
		return err
	}
	refs, err := pgx.CollectRows(rows, pgx.RowToStructByName[GenreRef])
	if err != nil {
		return err
	}
	byMovie := map[int64][]GenreRef{}
	for _, g := range refs {
		byMovie[g.MovieID] = append(byMovie[g.MovieID], g)
	}
	for i := range items {
		items[i].Genres = byMovie[items[i].ID]
		if items[i].Genres == nil {
			items[i].Genres = []GenreRef{}
		}
	}
	return nil
}

func filters(q url.Values) ([]crud.Filter, error) {
	var out []crud.Filter
	for _, f := range []struct {
		param string
		build func(int64) crud.Filter
	}{
		{"year", func(v int64) crud.Filter { return crud.Eq("year", v) }},
		{"yearFrom", func(v int64) crud.Filter { return crud.Gte("year", v) }},
		{"yearTo", func(v int64) crud.Filter { return crud.Lte("year", v) }},
		{"genreId", func(v int64) crud.Filter { return crud.Has("genres", v) }},
	} {
		v, ok, err := crud.IntParam(q, f.param)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, f.build(v))
		}
	}
	return out, nil
}

func payload(in MovieInput) crud.Payload {
	p := crud.NewPayload()
	p.Set("title", strings.TrimSpace(in.Title))
	p.Set("original_title", utils.TrimPtr(in.OriginalTitle))
	p.Set("year", in.Year)
	p.Set("release_date", parseDate(in.ReleaseDate))
	p.Set("duration", in.Duration)
	p.Set("synopsis", utils.TrimPtr(in.Synopsis))
	p.Set("rating", in.Rating)
	links := map[string][]int64{
		"genres":                 in.GenreIDs,
		"themes":                 in.ThemeIDs,
		"production_companies":   in.ProductionCompanyIDs,
		"distribution_companies": in.DistributionCompanyIDs,
	}
	for rel, ids := range links {
		if ids != nil {
			p.Link(rel, dedupe(ids))
		}
	}
	return p
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func Resource(store crud.Store[Movie], deps crud.Deps) (crud.Resource, error) {
	list, err := crud.NewListCreate(crud.ListConfig[Movie, MovieInput]{
		Resource: "movies",
		Entity:   "Película",
		Store:    store,
		Search:   []string{"title", "original_title"},
		Sort: crud.Sort{
			Fields:       []string{"title", "year", "release_date", "created_at", "id"},
			DefaultField: "created_at",
			DefaultDesc:  true,
		},
		Filters: filters,
		BuildCreate: func(_ context.Context, in MovieInput) (crud.Payload, error) {
			return payload(in), nil
		},
		Slug: &crud.SlugRule[MovieInput]{
			Kind:   slug.KindMovie,
			Source: func(in MovieInput) string { return in.Title },
		},
		DetailOnCreate: true,
		Invalidates:    []string{"genres", "themes", "production-companies", "distribution-companies"},
	}, deps)
	if err != nil {
		return crud.Resource{}, err
	}

	item, err := crud.NewItem(crud.ItemConfig[Movie, MovieInput]{
		Resource: "movies",
		Entity:   "Película",
		Store:    store,
		BuildUpdate: func(_ context.Context, in MovieInput, _ Movie) (crud.Payload, error) {
			return payload(in), nil
		},
		Slug: &crud.UpdateSlugRule[Movie, MovieInput]{
			Kind:    slug.KindMovie,
			Source:  func(in MovieInput) string { return strings.TrimSpace(in.Title) },
			Current: func(m Movie) string { return m.Title },
		},
		Invalidates: []string{"genres", "themes", "production-companies", "distribution-companies", "screening-venues"},
	}, deps)
	if err != nil {
		return crud.Resource{}, err
	}

	return crud.Resource{Path: "/movies", Collection: list, Member: item}, nil
}
