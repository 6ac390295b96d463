package database

import (
	"context"
	"fmt"

	"cinenacional-backend/internal/shared/crud"
	"cinenacional-backend/internal/shared/slug"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type slugTable struct {
	name string
	// text is the SQL expression the slug is derived from.
	text string
}

var slugTables = map[slug.Kind]slugTable{
	slug.KindLocation:            {name: "locations", text: "name"},
	slug.KindMovie:               {name: "movies", text: "title"},
	slug.KindPerson:              {name: "people", text: "TRIM(CONCAT_WS(' ', first_name, last_name))"},
	slug.KindGenre:               {name: "genres", text: "name"},
	slug.KindProductionCompany:   {name: "production_companies", text: "name"},
	slug.KindDistributionCompany: {name: "distribution_companies", text: "name"},
}

// SlugRegistry answers slug lookups for every sluggable table.
type SlugRegistry struct {
	pool *pgxpool.Pool
}

func NewSlugRegistry(pool *pgxpool.Pool) *SlugRegistry {
	return &SlugRegistry{pool: pool}
}

func tableFor(kind slug.Kind) (slugTable, error) {
	t, ok := slugTables[kind]
	if !ok {
		return slugTable{}, fmt.Errorf("no table for slug kind %q", kind)
	}
	return t, nil
}

// SlugExists implements slug.Checker.
func (r *SlugRegistry) SlugExists(ctx context.Context, kind slug.Kind, s string, excludeID *int64) (bool, error) {
	t, err := tableFor(kind)
	if err != nil {
		return false, err
	}
	sql := fmt.Sprintf(
		"SELECT EXISTS (SELECT 1 FROM %s WHERE slug = $1 AND ($2::bigint IS NULL OR id <> $2))",
		t.name,
	)
	var exists bool
	if err := r.pool.QueryRow(ctx, sql, s, excludeID).Scan(&exists); err != nil {
		return false, MapError(err)
	}
	return exists, nil
}

// InvalidSlugs lists rows whose slug is missing or not in canonical form.
func (r *SlugRegistry) InvalidSlugs(ctx context.Context, kind slug.Kind) ([]slug.Row, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	sql := fmt.Sprintf(
		`SELECT id, COALESCE(%s, '') AS text, COALESCE(slug, '') AS slug
		   FROM %s
		  WHERE slug IS NULL OR slug !~ '^[a-z0-9]+(-[a-z0-9]+)*$'
		  ORDER BY id`,
		t.text, t.name,
	)
	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, MapError(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[slug.Row])
	if err != nil {
		return nil, MapError(err)
	}
	return out, nil
}

// SetSlug overwrites the slug of one row.
func (r *SlugRegistry) SetSlug(ctx context.Context, kind slug.Kind, id int64, s string) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, fmt.Sprintf("UPDATE %s SET slug = $1 WHERE id = $2", t.name), s, id)
	if err != nil {
		return MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, crud.ErrNotFound)
	}
	return nil
}
