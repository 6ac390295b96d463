package theme

import (
	"cinenacional-backend/internal/shared/utils"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type ThemeInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (in ThemeInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name,
			validation.By(utils.NotBlank("el nombre es requerido")),
			validation.Length(1, 100),
		),
		validation.Field(&in.Description, validation.Length(0, 2000)),
	)
}
