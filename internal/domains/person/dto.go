package person

import (
	"errors"
	"slices"
	"strings"
	"time"

	"cinenacional-backend/internal/shared/utils"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const dateLayout = "2006-01-02"

// PersonInput is the body of POST and PUT. At least one name is required.
type PersonInput struct {
	FirstName       *string `json:"firstName"`
	LastName        *string `json:"lastName"`
	RealName        *string `json:"realName"`
	Gender          *string `json:"gender"`
	BirthDate       *string `json:"birthDate"`
	DeathDate       *string `json:"deathDate"`
	BirthLocationID *int64  `json:"birthLocationId"`
	Biography       *string `json:"biography"`
	IsActive        *bool   `json:"isActive"`
}

func (in PersonInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.FirstName, validation.Length(0, 150)),
		validation.Field(&in.LastName,
			validation.Length(0, 150),
			validation.By(func(any) error {
				if in.FullName() == "" {
					return errors.New("se requiere nombre o apellido")
				}
				return nil
			}),
		),
		validation.Field(&in.Gender, validation.By(func(any) error {
			if g := upper(in.Gender); g != nil && !slices.Contains(Genders, *g) {
				return errors.New("género inválido")
			}
			return nil
		})),
		validation.Field(&in.BirthDate, validation.Date(dateLayout).Error("fecha inválida, use AAAA-MM-DD")),
		validation.Field(&in.DeathDate,
			validation.Date(dateLayout).Error("fecha inválida, use AAAA-MM-DD"),
			validation.By(func(any) error {
				birth, death := parseDate(in.BirthDate), parseDate(in.DeathDate)
				if birth != nil && death != nil && death.Before(*birth) {
					return errors.New("la fecha de fallecimiento no puede ser anterior al nacimiento")
				}
				return nil
			}),
		),
		validation.Field(&in.BirthLocationID, validation.NilOrNotEmpty, validation.Min(int64(1))),
	)
}

// FullName is the slug source: "first last", trimmed.
func (in PersonInput) FullName() string {
	return joinName(deref(in.FirstName), deref(in.LastName))
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

func upper(s *string) *string {
	s = utils.TrimPtr(s)
	if s == nil {
		return nil
	}
	u := strings.ToUpper(*s)
	return &u
}

// ReviewCase is a person whose name likely needs a manual split.
type ReviewCase struct {
	ID             int64  `json:"id" db:"id"`
	FirstName      string `json:"firstName" db:"first_name"`
	LastName       string `json:"lastName" db:"last_name"`
	Slug           string `json:"slug" db:"slug"`
	TotalRoles     int64  `json:"totalRoles" db:"total_roles"`
	FirstNameWords int    `json:"firstNameWords" db:"-"`
	LastNameWords  int    `json:"lastNameWords" db:"-"`
}

type ReviewResponse struct {
	Cases []ReviewCase `json:"cases"`
	Total int          `json:"total"`
}
