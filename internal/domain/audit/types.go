// Package audit defines the access-event audit trail: a durable record
// of logins, logouts, role switches, and gate redirects.
package audit

import "time"

// Event types recorded in the trail.
const (
	EventLogin        = "access.login"
	EventLoginFailed  = "access.login_failed"
	EventLogout       = "access.logout"
	EventRoleSwitch   = "access.role_switch"
	EventGateRedirect = "access.gate_redirect"
)

// Record is a single audit event.
type Record struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	UserID    string    `json:"user_id,omitempty"`
	RoleID    string    `json:"role_id,omitempty"`
	Route     string    `json:"route,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Store persists audit records.
type Store interface {
	// Append writes one record. Implementations must not drop records
	// silently: an append failure is returned to the caller.
	Append(rec Record) error
	// Close releases the underlying resources.
	Close() error
}
