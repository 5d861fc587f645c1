package audit

import (
	"time"
)

// Action is the kind of mutation recorded in the trail.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionExport Action = "export"
)

// Entry is one line of the audit trail.
type Entry struct {
	ID        string            `json:"id"`
	ContactID string            `json:"contact_id,omitempty"`
	Action    Action            `json:"action"`
	Timestamp time.Time         `json:"timestamp"`
	Details   map[string]string `json:"details,omitempty"`
	Changes   map[string]Change `json:"changes,omitempty"`
}

// Change represents a change in a contact field
type Change struct {
	OldValue string `json:"old_value,omitempty"`
	NewValue string `json:"new_value,omitempty"`
}
