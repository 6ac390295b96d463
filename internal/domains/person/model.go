package person

import (
	"strings"
	"time"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

var Genders = []string{string(GenderMale), string(GenderFemale), string(GenderOther)}

// Person is anyone credited in cast or crew.
type Person struct {
	ID              int64      `json:"id" db:"id"`
	FirstName       *string    `json:"firstName" db:"first_name"`
	LastName        *string    `json:"lastName" db:"last_name"`
	Slug            string     `json:"slug" db:"slug"`
	RealName        *string    `json:"realName" db:"real_name"`
	Gender          *string    `json:"gender" db:"gender"`
	BirthDate       *time.Time `json:"birthDate" db:"birth_date"`
	DeathDate       *time.Time `json:"deathDate" db:"death_date"`
	BirthLocationID *int64     `json:"birthLocationId" db:"birth_location_id"`
	Biography       *string    `json:"biography" db:"biography"`
	IsActive        bool       `json:"isActive" db:"is_active"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`

	RoleCount *int64 `json:"roleCount,omitempty" db:"roles_count"`
	CastCount *int64 `json:"castCount,omitempty" db:"cast_count"`
	CrewCount *int64 `json:"crewCount,omitempty" db:"crew_count"`
	LinkCount *int64 `json:"linkCount,omitempty" db:"links_count"`

	Links []Link `json:"links,omitempty" db:"-"`
}

func (p Person) EntityID() int64 { return p.ID }

// FullName joins first and last name, skipping the empty ones.
func (p Person) FullName() string {
	return joinName(deref(p.FirstName), deref(p.LastName))
}

// Link is an external profile (IMDb, Wikipedia, Instagram...).
type Link struct {
	ID       int64  `json:"id" db:"id"`
	PersonID int64  `json:"-" db:"person_id"`
	Type     string `json:"type" db:"type"`
	URL      string `json:"url" db:"url"`
}

func joinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
