package api

import (
	"delegation-service/pkg/utils"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator with the service's custom rules registered
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("departuredate", validateDepartureDate)
	return v
}

func validateDepartureDate(fl validator.FieldLevel) bool {
	_, ok := utils.ParseDate(fl.Field().String())
	return ok
}
