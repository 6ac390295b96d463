package location

import (
	"context"

	"cinenacional-backend/internal/infrastructure/database"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Ancestry answers questions about the parent chain.
type Ancestry interface {
	// IsDescendant reports whether candidate sits somewhere below id.
	IsDescendant(ctx context.Context, id, candidate int64) (bool, error)
}

// Tree walks parent_id with a recursive query.
type Tree struct {
	pool *pgxpool.Pool
}

func NewTree(pool *pgxpool.Pool) *Tree {
	return &Tree{pool: pool}
}

func (t *Tree) IsDescendant(ctx context.Context, id, candidate int64) (bool, error) {
	const q = `
		WITH RECURSIVE below AS (
			SELECT id FROM locations WHERE parent_id = $1
			UNION
			SELECT l.id FROM locations l JOIN below b ON l.parent_id = b.id
		)
		SELECT EXISTS (SELECT 1 FROM below WHERE id = $2)`
	var found bool
	if err := t.pool.QueryRow(ctx, q, id, candidate).Scan(&found); err != nil {
		return false, database.MapError(err)
	}
	return found, nil
}
