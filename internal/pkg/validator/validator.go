package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/staybook/booking-api/internal/pkg/normalize"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Loosely typed payload text validates as its string value
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		if s, ok := v.Interface().(normalize.FlexString); ok {
			return s.Value
		}
		return nil
	}, normalize.FlexString{})

	registerCustomValidations()
}

func registerCustomValidations() {
	validate.RegisterValidation("booking_mode", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(strings.TrimSpace(fl.Field().String())) {
		case "", "hotel", "pg":
			return true
		}
		return false
	})

	validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	errors := make(map[string]string)
	for _, err := range validationErrors {
		field := err.Field()
		switch err.Tag() {
		case "required", "notblank":
			errors[field] = "This field is required"
		case "email":
			errors[field] = "Invalid email format"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "booking_mode":
			errors[field] = "Invalid booking mode. Must be: hotel or pg"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}
