package utils

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"rhystmorgan/contactterm/internal/models"
)

type userMessager interface {
	UserMessage() string
}

// UserMessage turns any error from the client into a line fit for display.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var friendly userMessager
	if errors.As(err, &friendly) {
		return friendly.UserMessage()
	}

	return err.Error()
}

// TruncateString truncates a string to a maximum number of runes with ellipsis
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return string(runes[:maxLen])
	}

	return string(runes[:maxLen-3]) + "..."
}

// PadString pads a string to a specific width
func PadString(s string, width int, padChar rune) string {
	length := len([]rune(s))
	if length >= width {
		return s
	}

	return s + strings.Repeat(string(padChar), width-length)
}

// FormatContactDetails joins the optional fields of a contact for a list row.
func FormatContactDetails(contact models.Contact) string {
	var parts []string
	if contact.Phone != "" {
		parts = append(parts, contact.Phone)
	}
	if contact.Email != "" {
		parts = append(parts, contact.Email)
	}
	if len(parts) == 0 {
		return "no phone or email"
	}
	return strings.Join(parts, " · ")
}

// FormatContactLine renders a contact as a single fixed-width line.
func FormatContactLine(contact models.Contact, nameWidth int) string {
	name := PadString(TruncateString(contact.DisplayName(), nameWidth), nameWidth, ' ')
	return fmt.Sprintf("%s  %s", name, FormatContactDetails(contact))
}

// FormatConfirmationText formats confirmation prompts
func FormatConfirmationText(action string, details map[string]string) string {
	var result strings.Builder
	result.WriteString(fmt.Sprintf("Confirm %s:\n\n", action))

	keys := make([]string, 0, len(details))
	for key := range details {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		result.WriteString(fmt.Sprintf("  %s: %s\n", key, details[key]))
	}

	result.WriteString("\nProceed? (y/N)")
	return result.String()
}
