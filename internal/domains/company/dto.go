package company

import (
	"cinenacional-backend/internal/shared/utils"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type CompanyInput struct {
	Name string `json:"name"`
}

func (in CompanyInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.By(utils.NotBlank("el nombre es requerido")), validation.Length(1, 200)),
	)
}
