// Package theme persists the light/dark display preference. It is
// orthogonal to authentication: logout leaves it untouched.
package theme

import (
	"sync"

	"github.com/tvet-mis/console/internal/port/kv"
)

// StorageKey is the durable storage key for the theme preference.
const StorageKey = "theme"

// Mode is the display theme mode.
type Mode string

// The two valid theme modes.
const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// Store holds the theme preference with persistence.
type Store struct {
	mu      sync.Mutex
	storage kv.KeyValue
	mode    Mode
}

// NewStore creates a theme store backed by the given storage.
// Anything other than a persisted "dark" loads as light.
func NewStore(storage kv.KeyValue) *Store {
	s := &Store{storage: storage, mode: Light}
	if v, ok := storage.Get(StorageKey); ok && Mode(v) == Dark {
		s.mode = Dark
	}
	return s
}

// Mode returns the current theme mode.
func (s *Store) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Toggle flips between light and dark and persists the result.
func (s *Store) Toggle() (Mode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == Light {
		s.mode = Dark
	} else {
		s.mode = Light
	}
	return s.mode, s.storage.Set(StorageKey, string(s.mode), kv.SetOptions{})
}
