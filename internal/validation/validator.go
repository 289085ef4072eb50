package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"wanderlog/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the process-wide validator with the domain rules registered
// as the "username", "password" and "visitdate" tags.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			return jsonName(fld.Tag.Get("json"), fld.Name)
		})
		mustRegister("username", func(fl validator.FieldLevel) bool {
			return ValidateUsername(fl.Field().String()) == nil
		})
		mustRegister("password", func(fl validator.FieldLevel) bool {
			return ValidatePassword(fl.Field().String()) == nil
		})
		mustRegister("visitdate", func(fl validator.FieldLevel) bool {
			return ValidateDateOfVisit(fl.Field().String()) == nil
		})
	})
	return validate
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validator: %v", tag, err))
	}
}

func jsonName(tag, fallback string) string {
	name, _, _ := strings.Cut(tag, ",")
	switch name {
	case "-":
		return ""
	case "":
		return fallback
	}
	return name
}

// Struct validates s and returns a models.AppError with code VALIDATION_ERROR
// naming the first failing field.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return models.NewValidationError(err.Error())
	}

	appErr := models.NewValidationError(message(fieldErrs[0]))
	if len(fieldErrs) > 1 {
		appErr.Err = errors.New(joinMessages(fieldErrs[1:]))
	}
	return appErr
}

func joinMessages(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, message(fe))
	}
	return strings.Join(msgs, "; ")
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "username":
		return ValidateUsername(fe.Value().(string)).Error()
	case "password":
		return ValidatePassword(fe.Value().(string)).Error()
	case "visitdate":
		return ValidateDateOfVisit(fe.Value().(string)).Error()
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// AsDate parses a YYYY-MM-DD date.
func AsDate(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}
