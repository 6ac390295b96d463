package genre

import (
	"cinenacional-backend/internal/shared/utils"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// GenreInput is the body of POST and PUT.
type GenreInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (in GenreInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name,
			validation.By(utils.NotBlank("el nombre es requerido")),
			validation.Length(1, 100).Error("el nombre no puede superar los 100 caracteres"),
		),
		validation.Field(&in.Description, validation.Length(0, 2000)),
	)
}
