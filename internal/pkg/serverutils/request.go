package serverutils

import (
	"ai-studyroom-be/internal/apperr"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct-tag validation and classifies failures as
// validation errors.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		return apperr.Wrap(apperr.ErrValidation, err)
	}
	return nil
}
