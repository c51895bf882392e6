// Package state persists client storage to a JSON jar file with
// cookie-like per-entry attributes.
package state

import "time"

// Entry is one persisted key with its attributes.
type Entry struct {
	Value     string     `json:"value"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Secure    bool       `json:"secure,omitempty"`
	SameSite  string     `json:"same_site,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// jar is the on-disk layout of the storage file.
type jar struct {
	Version   string           `json:"version"`
	Entries   map[string]Entry `json:"entries"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func newJar() *jar {
	return &jar{
		Version: "1",
		Entries: make(map[string]Entry),
	}
}
