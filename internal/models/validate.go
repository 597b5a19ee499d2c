package models

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes the first field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("archetype", func(fl validator.FieldLevel) bool {
		return Archetype(fl.Field().String()).Valid()
	})
	return v
}

// ValidateUser checks an InsertUser. Only presence is enforced.
func ValidateUser(u InsertUser) error {
	return validateStruct(u)
}

// ValidateArgument checks an InsertArgument, including archetype membership.
func ValidateArgument(a InsertArgument) error {
	return validateStruct(a)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	return &ValidationError{Field: fe.Field(), Message: messageFor(fe)}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "archetype":
		names := make([]string, len(Archetypes))
		for i, a := range Archetypes {
			names[i] = string(a)
		}
		return fe.Field() + " must be one of: " + strings.Join(names, ", ")
	default:
		return fe.Field() + " is invalid"
	}
}
