package venue

import "time"

var Types = []string{"CINEMA", "STREAMING", "TV_CHANNEL", "OTHER"}

// Venue is where a movie premiered: a cinema, a platform or a TV channel.
type Venue struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Type        string    `json:"type" db:"type"`
	Description *string   `json:"description" db:"description"`
	Website     *string   `json:"website" db:"website"`
	Address     *string   `json:"address" db:"address"`
	City        *string   `json:"city" db:"city"`
	Province    *string   `json:"province" db:"province"`
	Country     *string   `json:"country" db:"country"`
	IsActive    bool      `json:"isActive" db:"is_active"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

	ScreeningCount *int64 `json:"screeningCount,omitempty" db:"screenings_count"`
}

func (v Venue) EntityID() int64 { return v.ID }
