package slug

import (
	"context"
	"fmt"

	"cinenacional-backend/internal/shared/utils"

	"github.com/rs/zerolog"
)

// Row is a record whose slug needs attention.
type Row struct {
	ID   int64  `db:"id" json:"id"`
	Text string `db:"text" json:"text"`
	Slug string `db:"slug" json:"slug"`
}

// Repository finds and rewrites slugs of one kind at a time.
type Repository interface {
	Checker
	InvalidSlugs(ctx context.Context, kind Kind) ([]Row, error)
	SetSlug(ctx context.Context, kind Kind, id int64, slug string) error
}

// Fix is one proposed or applied slug change.
type Fix struct {
	Kind    Kind   `json:"kind"`
	ID      int64  `json:"id"`
	Text    string `json:"text"`
	OldSlug string `json:"oldSlug"`
	NewSlug string `json:"newSlug"`
}

// Report summarises an audit run.
type Report struct {
	Checked int   `json:"checked"`
	Fixes   []Fix `json:"fixes"`
	Applied bool  `json:"applied"`
}

// Touched returns the resources whose slugs the report changed, in kind order.
func (r Report) Touched() []string {
	if !r.Applied {
		return nil
	}
	seen := map[Kind]bool{}
	for _, f := range r.Fixes {
		seen[f.Kind] = true
	}
	var out []string
	for _, k := range Kinds {
		if seen[k] {
			out = append(out, k.Resource())
		}
	}
	return out
}

// Auditor repairs slugs that are empty or not in canonical form.
type Auditor struct {
	repo     Repository
	resolver *Resolver
	log      zerolog.Logger
}

func NewAuditor(repo Repository, logger zerolog.Logger) *Auditor {
	return &Auditor{repo: repo, resolver: NewResolver(repo), log: logger}
}

// Audit scans kinds (all when empty). With apply, each fix is written
// before the next slug is resolved, so fixes within a run never collide.
func (a *Auditor) Audit(ctx context.Context, kinds []Kind, apply bool) (Report, error) {
	if len(kinds) == 0 {
		kinds = Kinds
	}
	report := Report{Applied: apply, Fixes: []Fix{}}

	for _, kind := range kinds {
		rows, err := a.repo.InvalidSlugs(ctx, kind)
		if err != nil {
			return report, fmt.Errorf("list %s slugs: %w", kind, err)
		}
		for _, row := range rows {
			report.Checked++
			if row.Slug != "" && utils.IsValidSlug(row.Slug) {
				continue
			}
			id := row.ID
			next, err := a.resolver.Resolve(ctx, row.Text, kind, &id)
			if err != nil {
				return report, err
			}
			fix := Fix{Kind: kind, ID: row.ID, Text: row.Text, OldSlug: row.Slug, NewSlug: next}
			if apply {
				if err := a.repo.SetSlug(ctx, kind, row.ID, next); err != nil {
					return report, fmt.Errorf("set %s %d slug: %w", kind, row.ID, err)
				}
				a.log.Info().Str("kind", string(kind)).Int64("id", row.ID).
					Str("old", row.Slug).Str("new", next).Msg("slug repaired")
			}
			report.Fixes = append(report.Fixes, fix)
		}
	}
	return report, nil
}
