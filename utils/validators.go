// File: /utils/validators.go
package utils

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator with the custom tags used by models and requests.
func NewValidator() *validator.Validate {
	v := validator.New()
	registerCustomValidations(v)
	return v
}

// RegisterBindingValidators adds the custom tags to gin's binding validator.
func RegisterBindingValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
	}
	return registerCustomValidations(v)
}

func registerCustomValidations(v *validator.Validate) error {
	return v.RegisterValidation("fraction", validateFraction)
}

// validateFraction accepts tank levels between 0 (empty) and 1 (full).
func validateFraction(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return f >= 0 && f <= 1
}

// ValidationMessages flattens validator errors into readable messages.
func ValidationMessages(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	messages := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", fe.Namespace()))
		case "fraction":
			messages = append(messages, fmt.Sprintf("%s must be between 0 and 1", fe.Namespace()))
		default:
			messages = append(messages, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(messages, "; ")
}

// CalculatorInputError returns a message for the first calculator value out of
// range, or "" when all of them are acceptable.
func CalculatorInputError(roadLength, fuelPrice, fuelConsumption float64) string {
	switch {
	case roadLength <= 0 || roadLength > 10000:
		return "Road length must be between 0 and 10000 km"
	case fuelPrice <= 0 || fuelPrice > 10:
		return "Fuel price must be between 0 and 10 per liter"
	case fuelConsumption <= 0 || fuelConsumption > 50:
		return "Fuel consumption must be between 0 and 50 L/100km"
	}
	return ""
}
