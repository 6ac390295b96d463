package genre

import "time"

// Genre classifies movies (drama, comedia, documental...).
type Genre struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description *string   `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

	MovieCount *int64 `json:"movieCount,omitempty" db:"movies_count"`
}

func (g Genre) EntityID() int64 { return g.ID }
