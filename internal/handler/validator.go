package handler

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "authgate/internal/errors"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// messageSource lets a request type name the message for a failed rule.
type messageSource interface {
	validationMessage(field, tag string) string
}

// RequestValidator adapts go-playground/validator to echo.Validator. Fields
// are checked in declaration order and each field stops at its first failing
// tag, so the first reported error is the highest-precedence rule.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator builds a validator with the "username" rule registered.
func NewRequestValidator() *RequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return &RequestValidator{validate: v}
}

// Validate implements echo.Validator. It returns *errors.ValidationError for
// rule failures.
func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	first := fieldErrs[0]
	message := fmt.Sprintf("%s is invalid", first.Field())
	if src, ok := i.(messageSource); ok {
		if m := src.validationMessage(first.Field(), first.Tag()); m != "" {
			message = m
		}
	}
	return &apperrors.ValidationError{Field: first.Field(), Message: message}
}
