package theme

import "time"

// Theme is a free-form subject tag (dictadura, fútbol, inmigración...).
type Theme struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

	MovieCount *int64 `json:"movieCount,omitempty" db:"movies_count"`
}

func (t Theme) EntityID() int64 { return t.ID }
