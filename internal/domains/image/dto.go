package image

import (
	"errors"

	"cinenacional-backend/internal/shared/utils"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ImageUpdate edits the caption and the owner of an uploaded image.
type ImageUpdate struct {
	Caption  *string `json:"caption"`
	MovieID  *int64  `json:"movieId"`
	PersonID *int64  `json:"personId"`
}

var errNoOwner = errors.New("Debe indicar movieId o personId")

func validateOwner(movieID, personID *int64) error {
	if movieID == nil && personID == nil {
		return errNoOwner
	}
	return nil
}

func (in ImageUpdate) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Caption, validation.Length(0, 500).Error("La descripción no puede superar 500 caracteres")),
		validation.Field(&in.MovieID, validation.By(func(any) error { return validateOwner(in.MovieID, in.PersonID) }),
			validation.NilOrNotEmpty.Error("movieId inválido"), validation.Min(int64(1)).Error("movieId inválido")),
		validation.Field(&in.PersonID,
			validation.NilOrNotEmpty.Error("personId inválido"), validation.Min(int64(1)).Error("personId inválido")),
	)
}

// uploadForm is the non-file part of the multipart upload.
type uploadForm struct {
	Caption  *string
	MovieID  *int64
	PersonID *int64
}

func parseUploadForm(caption, movieID, personID string) (uploadForm, map[string]any) {
	form := uploadForm{Caption: utils.TrimPtr(&caption)}
	details := map[string]any{}
	if movieID != "" {
		id, ok := utils.ParseID(movieID)
		if !ok {
			details["movieId"] = "movieId inválido"
		}
		form.MovieID = &id
	}
	if personID != "" {
		id, ok := utils.ParseID(personID)
		if !ok {
			details["personId"] = "personId inválido"
		}
		form.PersonID = &id
	}
	if len(details) == 0 {
		if err := validateOwner(form.MovieID, form.PersonID); err != nil {
			details["movieId"] = err.Error()
		}
	}
	if len(details) > 0 {
		return form, details
	}
	return form, nil
}
