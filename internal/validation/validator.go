package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"rhystmorgan/contactterm/internal/models"
)

const (
	maxNameLength  = 80
	maxPhoneDigits = 20
)

// ContactValidator checks contact form values before they are submitted.
// Only a missing name blocks submission; format problems are reported as
// warnings so the remote service stays the authority on what it accepts.
type ContactValidator struct {
	now func() time.Time
}

// NewContactValidator creates a new ContactValidator instance
func NewContactValidator() *ContactValidator {
	return &ContactValidator{now: time.Now}
}

// ValidateContact validates the trimmed form values.
func (v *ContactValidator) ValidateContact(fields models.ContactFields) ValidationResult {
	return v.ValidateUpdate(fields.Patch())
}

// ValidateUpdate validates the fields present in an update. An absent name
// is allowed; a present one must not be blank.
func (v *ContactValidator) ValidateUpdate(patch models.ContactPatch) ValidationResult {
	patch = patch.Trimmed()
	result := ValidationResult{
		IsValid:     true,
		ValidatedAt: v.now(),
	}

	if patch.Empty() {
		result.Errors = append(result.Errors, ValidationError{
			Code:     ErrorNothingToUpdate,
			Message:  "Nothing to update.",
			Severity: ValidationSeverityError,
		})
		result.IsValid = false
		return result
	}

	if name := patch.Name; name != nil {
		if *name == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:    "name",
				Code:     ErrorNameRequired,
				Message:  "Name is required.",
				Severity: ValidationSeverityError,
			})
			result.IsValid = false
		} else if len([]rune(*name)) > maxNameLength {
			result.Warnings = append(result.Warnings, ValidationError{
				Field:    "name",
				Code:     ErrorNameTooLong,
				Message:  fmt.Sprintf("Name is longer than %d characters", maxNameLength),
				Severity: ValidationSeverityWarning,
			})
		}
	}

	if email := patch.Email; email != nil && *email != "" {
		if _, err := mail.ParseAddress(*email); err != nil {
			result.Warnings = append(result.Warnings, ValidationError{
				Field:    "email",
				Code:     ErrorInvalidEmail,
				Message:  "Email does not look like an address",
				Severity: ValidationSeverityWarning,
			})
		}
	}

	if phone := patch.Phone; phone != nil && *phone != "" && !looksLikePhone(*phone) {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:    "phone",
			Code:     ErrorInvalidPhone,
			Message:  "Phone contains unexpected characters",
			Severity: ValidationSeverityWarning,
		})
	}

	return result
}

// ValidateCredentials checks a login or registration form.
func (v *ContactValidator) ValidateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return NewValidationError("email", ErrorEmailRequired, "Email is required.")
	}
	if password == "" {
		return NewValidationError("password", ErrorPasswordRequired, "Password is required.")
	}
	return nil
}

func looksLikePhone(phone string) bool {
	digits := 0
	for _, r := range phone {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' || r == '-' || r == ' ' || r == '(' || r == ')' || r == '.':
		default:
			return false
		}
	}
	return digits > 0 && digits <= maxPhoneDigits
}
