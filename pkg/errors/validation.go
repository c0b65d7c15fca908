package errors

import (
	"fmt"
	"strings"
)

// FieldError is a single failed field check
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors aggregates field-level validation failures
type ValidationErrors struct {
	errors []FieldError
}

// NewValidationErrors creates an empty collection
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{}
}

// Add records a failure for field
func (v *ValidationErrors) Add(field, message string) {
	v.errors = append(v.errors, FieldError{Field: field, Message: message})
}

// Addf records a failure for field with a formatted message
func (v *ValidationErrors) Addf(field, format string, args ...interface{}) {
	v.Add(field, fmt.Sprintf(format, args...))
}

// HasErrors returns true if there are validation errors
func (v *ValidationErrors) HasErrors() bool {
	return len(v.errors) > 0
}

// Fields returns the recorded failures in insertion order
func (v *ValidationErrors) Fields() []FieldError {
	return append([]FieldError(nil), v.errors...)
}

// ToMap groups messages by field
func (v *ValidationErrors) ToMap() map[string][]string {
	result := make(map[string][]string, len(v.errors))
	for _, fe := range v.errors {
		result[fe.Field] = append(result[fe.Field], fe.Message)
	}
	return result
}

// Err returns nil when nothing failed, otherwise a VALIDATION AppError whose
// details carry the per-field messages.
func (v *ValidationErrors) Err() error {
	if !v.HasErrors() {
		return nil
	}
	messages := make([]string, len(v.errors))
	for i, fe := range v.errors {
		messages[i] = fe.Field + ": " + fe.Message
	}
	return NewValidationError(fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))).
		WithDetail("fields", v.ToMap())
}
