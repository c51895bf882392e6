// Package kv defines the durable client storage port. It is a leaf
// package with no domain imports, so both the domain stores and the
// outbound ports can depend on it.
package kv

import "time"

// SameSite attribute values for stored entries.
const (
	SameSiteStrict = "strict"
	SameSiteLax    = "lax"
)

// SetOptions carries the persistence attributes for a stored key,
// mirroring cookie semantics: per-key expiry plus security flags.
type SetOptions struct {
	// TTL is how long the entry stays readable. Zero means the entry
	// has no expiry of its own (a "session" entry).
	TTL time.Duration
	// Secure restricts the entry to secure-channel deployments.
	Secure bool
	// SameSite is the same-site policy recorded with the entry.
	SameSite string
}

// KeyValue is the durable client storage port. Implementations must
// treat an expired key as absent and must persist synchronously: when
// Set or Remove returns, the change is on disk.
type KeyValue interface {
	// Get returns the value for key, or ok=false when the key is
	// absent or its expiry has passed.
	Get(key string) (value string, ok bool)

	// Set stores the value under key with the given attributes.
	Set(key, value string, opts SetOptions) error

	// Remove deletes the key. Removing an absent key is not an error.
	Remove(key string) error
}
