package validation

import (
	"errors"
	"time"
)

// ValidationSeverity represents the severity level of a validation issue
type ValidationSeverity int

const (
	ValidationSeverityError ValidationSeverity = iota
	ValidationSeverityWarning
	ValidationSeverityInfo
)

// ValidationErrorCode represents specific validation error types
type ValidationErrorCode int

const (
	ErrorNameRequired ValidationErrorCode = iota
	ErrorNameTooLong
	ErrorInvalidEmail
	ErrorInvalidPhone
	ErrorEmailRequired
	ErrorPasswordRequired
	ErrorBusy
	ErrorNothingToUpdate
)

// ValidationError is a locally detected problem. Errors with
// ValidationSeverityError never reach the network.
type ValidationError struct {
	Field    string
	Code     ValidationErrorCode
	Message  string
	Severity ValidationSeverity
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidationResult represents the result of contact validation
type ValidationResult struct {
	IsValid     bool
	ValidatedAt time.Time
	Errors      []ValidationError
	Warnings    []ValidationError
}

// Err returns the first blocking error, or nil when the result is valid.
func (r ValidationResult) Err() error {
	if r.IsValid || len(r.Errors) == 0 {
		return nil
	}
	err := r.Errors[0]
	return &err
}

func NewValidationError(field string, code ValidationErrorCode, message string) *ValidationError {
	return &ValidationError{
		Field:    field,
		Code:     code,
		Message:  message,
		Severity: ValidationSeverityError,
	}
}

// IsValidationError reports whether err is a *ValidationError with the
// given code.
func IsValidationError(err error, code ValidationErrorCode) bool {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Code == code
	}
	return false
}
