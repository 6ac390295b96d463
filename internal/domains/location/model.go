package location

import "time"

// Location is a node of the place hierarchy: country > province > city.
type Location struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	ParentID  *int64    `json:"parentId" db:"parent_id"`
	Latitude  *float64  `json:"latitude" db:"latitude"`
	Longitude *float64  `json:"longitude" db:"longitude"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	ChildCount  *int64 `json:"childCount,omitempty" db:"children_count"`
	PeopleCount *int64 `json:"peopleCount,omitempty" db:"people_count"`
}

func (l Location) EntityID() int64 { return l.ID }
