// Package validator wraps struct-tag validation.
package validator

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator is a wrapper around the validator library.
type Validator struct {
	validate *validator.Validate
}

// New creates a new Validator instance.
func New() *Validator {
	return &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ValidateStruct validates a struct based on its tags.
func (v *Validator) ValidateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// Fields returns the names of the fields that failed validation, or nil if
// err does not carry validation errors.
func Fields(err error) []string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	fields := make([]string, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, fe.Field())
	}
	return fields
}
