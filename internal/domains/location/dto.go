package location

import (
	"cinenacional-backend/internal/shared/utils"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type LocationInput struct {
	Name      string   `json:"name"`
	ParentID  *int64   `json:"parentId"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (in LocationInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.By(utils.NotBlank("el nombre es requerido")), validation.Length(1, 150)),
		validation.Field(&in.ParentID,
			validation.NilOrNotEmpty.Error("parentId inválido"), validation.Min(int64(1)).Error("parentId inválido")),
		validation.Field(&in.Latitude, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&in.Longitude, validation.Min(-180.0), validation.Max(180.0)),
	)
}
