package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"foodgram/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the custom field tags
// registered: username, password, hexcolor6, slug.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		mustRegister(v, "username", func(fl validator.FieldLevel) bool {
			return ValidateUsername(fl.Field().String()) == nil
		})
		mustRegister(v, "password", func(fl validator.FieldLevel) bool {
			return ValidatePassword(fl.Field().String()) == nil
		})
		mustRegister(v, "hexcolor6", func(fl validator.FieldLevel) bool {
			return ValidateHexColor(fl.Field().String()) == nil
		})
		mustRegister(v, "slug", func(fl validator.FieldLevel) bool {
			return ValidateSlug(fl.Field().String()) == nil
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// Struct validates a request DTO and converts failures into a field-keyed
// VALIDATION_ERROR. It returns nil for a valid value.
func Struct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return models.NewValidationError(err.Error())
	}

	fields := make(map[string][]string, len(verrs))
	first := ""
	for _, fe := range verrs {
		msg := fieldMessage(fe)
		if first == "" {
			first = msg
		}
		fields[fe.Field()] = append(fields[fe.Field()], msg)
	}

	reason := models.ReasonInvalidField
	if verrs[0].Tag() == "required" {
		reason = models.ReasonMissingField
	}
	return &models.AppError{
		Code:    models.CodeValidation,
		Reason:  reason,
		Message: first,
		Fields:  fields,
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "invalid email format"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "username":
		return ValidateUsername(fe.Value().(string)).Error()
	case "password":
		return ValidatePassword(fe.Value().(string)).Error()
	case "hexcolor6":
		return ValidateHexColor(fe.Value().(string)).Error()
	case "slug":
		return ValidateSlug(fe.Value().(string)).Error()
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
