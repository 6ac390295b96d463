package movie

import (
	"errors"
	"strings"
	"time"

	"cinenacional-backend/internal/shared/utils"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// MovieInput is the body of POST and PUT. A nil id list leaves those
// links untouched on update; an empty one clears them.
type MovieInput struct {
	Title                  string           `json:"title"`
	OriginalTitle          *string          `json:"originalTitle"`
	Year                   *int             `json:"year"`
	ReleaseDate            *string          `json:"releaseDate"`
	Duration               *int             `json:"duration"`
	Synopsis               *string          `json:"synopsis"`
	Rating                 *decimal.Decimal `json:"rating"`
	GenreIDs               []int64          `json:"genreIds"`
	ThemeIDs               []int64          `json:"themeIds"`
	ProductionCompanyIDs   []int64          `json:"productionCompanyIds"`
	DistributionCompanyIDs []int64          `json:"distributionCompanyIds"`
}

func (in MovieInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.By(utils.NotBlank("el título es requerido")), validation.Length(1, 300)),
		validation.Field(&in.OriginalTitle, validation.Length(0, 300)),
		validation.Field(&in.Year,
			validation.NilOrNotEmpty.Error("año inválido"),
			validation.Min(1890).Error("año inválido"),
			validation.Max(2100).Error("año inválido")),
		validation.Field(&in.ReleaseDate, validation.Date(dateLayout).Error("fecha inválida, use AAAA-MM-DD")),
		validation.Field(&in.Duration,
			validation.NilOrNotEmpty.Error("la duración debe ser positiva"),
			validation.Min(1).Error("la duración debe ser positiva")),
		validation.Field(&in.Rating, validation.By(validRating)),
		validation.Field(&in.GenreIDs, validation.Each(validation.Required, validation.Min(int64(1)))),
		validation.Field(&in.ThemeIDs, validation.Each(validation.Required, validation.Min(int64(1)))),
		validation.Field(&in.ProductionCompanyIDs, validation.Each(validation.Required, validation.Min(int64(1)))),
		validation.Field(&in.DistributionCompanyIDs, validation.Each(validation.Required, validation.Min(int64(1)))),
	)
}

var maxRating = decimal.NewFromInt(10)

// validRating matches the NUMERIC(3,1) column: 0 to 10, one decimal place.
func validRating(value any) error {
	r, _ := value.(*decimal.Decimal)
	if r == nil {
		return nil
	}
	if r.IsNegative() || r.GreaterThan(maxRating) {
		return errors.New("la calificación debe estar entre 0 y 10")
	}
	if !r.Equal(r.Truncate(1)) {
		return errors.New("la calificación admite un solo decimal")
	}
	return nil
}

func parseDate(s *string) *time.Time {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(*s))
	if err != nil {
		return nil
	}
	return &t
}
