// Package profile holds display-only identity data: the user's display
// name and the label of their current role. It is cosmetic — cached for
// instant paint on reload, re-fetched after every login, and never used
// to gate an authorization decision.
package profile

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/tvet-mis/console/internal/port/kv"
)

// Durable storage keys for the persisted profile fields.
const (
	KeyUsername        = "username"
	KeyCurrentRoleName = "current_role_name"
)

// Profile is the display identity of the authenticated user.
type Profile struct {
	DisplayName string
	RoleLabel   string
}

// Store holds the current profile with persistence to client storage.
type Store struct {
	mu      sync.Mutex
	storage kv.KeyValue
	logger  *slog.Logger
	cur     Profile
}

// NewStore creates a profile store backed by the given storage.
func NewStore(storage kv.KeyValue, logger *slog.Logger) *Store {
	return &Store{storage: storage, logger: logger}
}

// Rehydrate loads the persisted profile fields, if present.
func (s *Store) Rehydrate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.storage.Get(KeyUsername); ok {
		s.cur.DisplayName = v
	}
	if v, ok := s.storage.Get(KeyCurrentRoleName); ok {
		s.cur.RoleLabel = v
	}
}

// Set replaces both fields and persists them synchronously.
func (s *Store) Set(displayName, roleLabel string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur = Profile{DisplayName: displayName, RoleLabel: roleLabel}

	return errors.Join(
		s.storage.Set(KeyUsername, displayName, kv.SetOptions{}),
		s.storage.Set(KeyCurrentRoleName, roleLabel, kv.SetOptions{}),
	)
}

// Reset drops the in-memory profile. The persisted entries are removed
// by the session store's logout, which owns the invalidation of the
// whole authenticated-state bundle.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = Profile{}
}

// Current returns the current profile.
func (s *Store) Current() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}
