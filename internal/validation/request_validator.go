package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "consolidator/internal/errors"
)

// RequestValidator validates request structs using struct tags
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates a validator with the custom tags registered
func NewRequestValidator() *RequestValidator {
	v := validator.New()

	v.RegisterValidation("filename", isValidFilename)

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &RequestValidator{validate: v}
}

// ValidateStruct returns a VALIDATION error listing every failing field
func (rv *RequestValidator) ValidateStruct(v interface{}) error {
	err := rv.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewAppError(apperrors.ErrTypeValidation, "invalid request", err)
	}

	fields := make([]apperrors.ValidationError, 0, len(fieldErrs))
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg := formatValidationError(fe)
		fields = append(fields, apperrors.ValidationError{Field: fe.Field(), Message: msg})
		messages = append(messages, msg)
	}
	return apperrors.NewAppValidationError(strings.Join(messages, "; ")).
		WithContext("fields", fields)
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s)", field, param)
	case "max":
		return fmt.Sprintf("%s must contain at most %s item(s)", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "filename":
		return fmt.Sprintf("%s must be a plain file name", field)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isValidFilename rejects empty names and names carrying directories.
// Repeated dots inside a name ("ENEL S.A..csv") are allowed.
func isValidFilename(fl validator.FieldLevel) bool {
	filename := fl.Field().String()
	if strings.TrimSpace(filename) == "" {
		return false
	}
	if filename == "." || filename == ".." || strings.ContainsAny(filename, `/\`) {
		return false
	}
	return len(filename) <= 255
}
