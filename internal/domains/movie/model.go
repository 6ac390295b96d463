package movie

import (
	"time"

	"github.com/shopspring/decimal"
)

type Movie struct {
	ID            int64            `json:"id" db:"id"`
	Title         string           `json:"title" db:"title"`
	OriginalTitle *string          `json:"originalTitle" db:"original_title"`
	Slug          string           `json:"slug" db:"slug"`
	Year          *int             `json:"year" db:"year"`
	ReleaseDate   *time.Time       `json:"releaseDate" db:"release_date"`
	Duration      *int             `json:"duration" db:"duration"`
	Synopsis      *string          `json:"synopsis" db:"synopsis"`
	Rating        *decimal.Decimal `json:"rating" db:"rating"`
	CreatedAt     time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time        `json:"updatedAt" db:"updated_at"`

	CastCount      *int64 `json:"castCount,omitempty" db:"cast_count"`
	CrewCount      *int64 `json:"crewCount,omitempty" db:"crew_count"`
	ScreeningCount *int64 `json:"screeningCount,omitempty" db:"screenings_count"`

	Genres []GenreRef `json:"genres,omitempty" db:"-"`
}

func (m Movie) EntityID() int64 { return m.ID }

// GenreRef is the genre summary embedded in a movie detail.
type GenreRef struct {
	ID      int64  `json:"id" db:"id"`
	MovieID int64  `json:"-" db:"movie_id"`
	Name    string `json:"name" db:"name"`
	Slug    string `json:"slug" db:"slug"`
}
