package utils

import (
	"errors"
	"fmt"
	"testing"

	"rhystmorgan/contactterm/internal/models"
	"rhystmorgan/contactterm/internal/remote"
	"rhystmorgan/contactterm/internal/validation"
)

func TestUserMessage(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"remote", remote.NewRemoteError(400, "Name taken"), "Name taken"},
		{"wrapped remote", fmt.Errorf("failed to load contacts: %w", remote.NewRemoteError(500, "")), "HTTP 500"},
		{"validation", validation.NewValidationError("name", validation.ErrorNameRequired, "Name is required."), "Name is required."},
		{"plain", errors.New("boom"), "boom"},
	}

	for _, tc := range cases {
		if got := UserMessage(tc.err); got != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("Zoë Washburne", 6); got != "Zoë..." {
		t.Errorf("Expected rune-aware truncation, got %q", got)
	}
	if got := TruncateString("Ann", 10); got != "Ann" {
		t.Errorf("Expected short string unchanged, got %q", got)
	}
}

func TestFormatContactDetails(t *testing.T) {
	if got := FormatContactDetails(models.Contact{Phone: "555", Email: "a@x.com"}); got != "555 · a@x.com" {
		t.Errorf("Unexpected details %q", got)
	}
	if got := FormatContactDetails(models.Contact{}); got != "no phone or email" {
		t.Errorf("Unexpected empty details %q", got)
	}
}

func TestFormatConfirmationText(t *testing.T) {
	got := FormatConfirmationText("delete", map[string]string{"name": "Ann", "id": "1"})
	want := "Confirm delete:\n\n  id: 1\n  name: Ann\n\nProceed? (y/N)"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
