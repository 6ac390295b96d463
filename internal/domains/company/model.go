package company

import "time"

// Company is a production or distribution company; both share one shape.
type Company struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	MovieCount *int64 `json:"movieCount,omitempty" db:"movies_count"`
}

func (c Company) EntityID() int64 { return c.ID }

// Kind describes one of the two company tables.
type Kind struct {
	Resource  string
	Table     string
	LinkTable string
	SlugKind  string
	Entity    string
	// Article precedes the noun in delete messages ("la productora").
	Article string
}

var (
	Production = Kind{
		Resource:  "production-companies",
		Table:     "production_companies",
		LinkTable: "movie_production_companies",
		SlugKind:  "production-company",
		Entity:    "Productora",
		Article:   "la productora",
	}
	Distribution = Kind{
		Resource:  "distribution-companies",
		Table:     "distribution_companies",
		LinkTable: "movie_distribution_companies",
		SlugKind:  "distribution-company",
		Entity:    "Distribuidora",
		Article:   "la distribuidora",
	}
)
