package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BradenHooton/roster/internal/models"
	"github.com/go-playground/validator/v10"
)

// Global validator instance (reused across all handlers)
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// "role" accepts any spelling models.ParseRole understands
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		_, err := models.ParseRole(fl.Field().String())
		return err == nil
	})
	// "sortkey" accepts "property" or "property,asc|desc"
	_ = v.RegisterValidation("sortkey", func(fl validator.FieldLevel) bool {
		_, err := models.ParseSortKey(fl.Field().String())
		return err == nil
	})
	return v
}

// ValidateRequest validates a request struct using go-playground/validator
// Returns a user-friendly error message if validation fails
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return fmt.Errorf("validation failed: %s: %s", strings.ToLower(ve[0].Field()), formatValidationError(ve[0]))
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// formatValidationError converts a validator FieldError to a user-friendly message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return fmt.Sprintf("must have a maximum of %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "role":
		names := make([]string, 0, 2)
		for _, r := range models.Roles() {
			names = append(names, r.String())
		}
		return "must be one of: " + strings.Join(names, ", ")
	case "sortkey":
		return "must be property or property,asc|desc"
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}
