package venue

import (
	"errors"
	"slices"
	"strings"

	"cinenacional-backend/internal/shared/utils"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type VenueInput struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Description *string `json:"description"`
	Website     *string `json:"website"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	Province    *string `json:"province"`
	Country     *string `json:"country"`
	IsActive    *bool   `json:"isActive"`
}

func (in VenueInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.By(utils.NotBlank("El nombre es requerido")), validation.Length(1, 200)),
		validation.Field(&in.Type, validation.By(func(any) error {
			if !slices.Contains(Types, strings.ToUpper(strings.TrimSpace(in.Type))) {
				return errors.New("tipo inválido: debe ser " + strings.Join(Types, ", "))
			}
			return nil
		})),
		validation.Field(&in.Website, is.URL.Error("URL inválida")),
	)
}
