package image

import (
	"path"
	"time"
)

const (
	StatusPending = "pending"
	StatusReady   = "ready"
	StatusFailed  = "failed"
)

var Statuses = []string{StatusPending, StatusReady, StatusFailed}

// Image is an uploaded still or portrait attached to a movie or a person.
// Variants maps a variant name (large, medium, thumbnail) to its URL.
type Image struct {
	ID          int64             `json:"id" db:"id"`
	MovieID     *int64            `json:"movieId" db:"movie_id"`
	PersonID    *int64            `json:"personId" db:"person_id"`
	ObjectKey   string            `json:"objectKey" db:"object_key"`
	URL         string            `json:"url" db:"url"`
	Caption     *string           `json:"caption" db:"caption"`
	ContentType string            `json:"contentType" db:"content_type"`
	Width       *int              `json:"width" db:"width"`
	Height      *int              `json:"height" db:"height"`
	Status      string            `json:"status" db:"status"`
	Variants    map[string]string `json:"variants" db:"variants"`
	CreatedAt   time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time         `json:"updatedAt" db:"updated_at"`
}

func (i Image) EntityID() int64 { return i.ID }

// Prefix is the storage folder holding the original and its variants.
func (i Image) Prefix() string {
	return path.Dir(i.ObjectKey) + "/"
}

// VariantKey is where the named variant of the image is stored.
func VariantKey(objectKey, name string) string {
	return path.Join(path.Dir(objectKey), name+".jpg")
}
