package person

import (
	"context"
	"time"

	"cinenacional-backend/internal/infrastructure/database"
	"cinenacional-backend/internal/shared/crud"
	"cinenacional-backend/pkg/cache"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const (
	knownNamesKey = "people:known-names"
	knownNamesTTL = 5 * time.Minute
)

// Directory provides the lookups behind name review and splitting.
type Directory interface {
	KnownNames(ctx context.Context) (NameSet, error)
	// ReviewCandidates returns people with four or more words in a name part.
	ReviewCandidates(ctx context.Context) ([]ReviewCase, error)
}

type Repository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

// NewRepository builds a Directory over pool; c may be nil.
func NewRepository(pool *pgxpool.Pool, c cache.Cache) *Repository {
	return &Repository{pool: pool, cache: c}
}

func (r *Repository) KnownNames(ctx context.Context) (NameSet, error) {
	var names []string
	if r.cache != nil {
		found, err := r.cache.Get(ctx, knownNamesKey, &names)
		if err != nil {
			log.Warn().Err(err).Msg("known names cache read failed")
		} else if found {
			return NewNameSet(names...), nil
		}
	}

	rows, err := r.pool.Query(ctx, "SELECT name FROM first_names")
	if err != nil {
		return nil, database.MapError(err)
	}
	names, err = pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, database.MapError(err)
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, knownNamesKey, names, knownNamesTTL); err != nil {
			log.Warn().Err(err).Msg("known names cache write failed")
		}
	}
	return NewNameSet(names...), nil
}

func (r *Repository) ReviewCandidates(ctx context.Context) ([]ReviewCase, error) {
	const q = `
		SELECT p.id,
		       COALESCE(p.first_name, '') AS first_name,
		       COALESCE(p.last_name, '')  AS last_name,
		       p.slug,
		       (SELECT COUNT(*) FROM person_roles r WHERE r.person_id = p.id) AS total_roles
		  FROM people p
		 WHERE p.first_name ~ '\S+\s+\S+\s+\S+\s+\S+'
		    OR p.last_name  ~ '\S+\s+\S+\s+\S+\s+\S+'
		 ORDER BY p.id`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, database.MapError(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[ReviewCase])
	if err != nil {
		return nil, database.MapError(err)
	}
	return out, nil
}

// hydrateLinks attaches external links to detail reads.
func hydrateLinks(ctx context.Context, q database.Querier, items []Person, shape crud.Shape) error {
	if shape != crud.ShapeDetail {
		return nil
	}
	ids := make([]int64, len(items))
	for i, p := range items {
		ids[i] = p.ID
	}
	rows, err := q.Query(ctx, "SELECT id, person_id, type, url FROM person_links WHERE person_id = ANY($1) ORDER BY id", ids)
	if err != nil {
		return err
	}
	links, err := pgx.CollectRows(rows, pgx.RowToStructByName[Link])
	if err != nil {
		return err
	}
	byPerson := map[int64][]Link{}
	for _, l := range links {
		byPerson[l.PersonID] = append(byPerson[l.PersonID], l)
	}
	for i := range items {
		items[i].Links = byPerson[items[i].ID]
	}
	return nil
}
