package privilege

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/tvet-mis/console/internal/port/kv"
)

// StorageKey is the durable storage key for the persisted privilege list.
const StorageKey = "privileges"

// DefaultTTL bounds how long a persisted privilege list stays readable,
// so a stale cache cannot outlive a reasonable session window.
const DefaultTTL = 24 * time.Hour

// Store holds the privilege list granted to the session's current role.
// The list is replaced wholesale on every login and role switch, never
// merged incrementally.
type Store struct {
	mu          sync.Mutex
	storage     kv.KeyValue
	logger      *slog.Logger
	secure      bool
	list        []Privilege
	fingerprint uint64
}

// NewStore creates a privilege store backed by the given storage.
// secure marks persisted entries as secure-channel only (production).
func NewStore(storage kv.KeyValue, secure bool, logger *slog.Logger) *Store {
	return &Store{
		storage: storage,
		logger:  logger,
		secure:  secure,
	}
}

// Rehydrate loads the persisted privilege list. A missing key or a
// corrupted persisted value loads as an empty list — a broken cache
// must never fail the menu render.
func (s *Store) Rehydrate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.storage.Get(StorageKey)
	if !ok {
		s.list = nil
		s.fingerprint = 0
		return
	}

	var list []Privilege
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		s.logger.Warn("persisted privileges are corrupted, treating as empty", "error", err)
		s.list = nil
		s.fingerprint = 0
		return
	}

	s.list = list
	s.fingerprint = xxhash.Sum64String(raw)
}

// Set replaces the stored list and persists it with the bounded TTL.
// An unchanged list (by content fingerprint) skips the storage write.
func (s *Store) Set(list []Privilege) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal privileges: %w", err)
	}

	fp := xxhash.Sum64(data)
	s.list = append([]Privilege(nil), list...)
	if fp == s.fingerprint {
		return nil
	}

	if err := s.storage.Set(StorageKey, string(data), kv.SetOptions{
		TTL:      DefaultTTL,
		Secure:   s.secure,
		SameSite: kv.SameSiteStrict,
	}); err != nil {
		return fmt.Errorf("persist privileges: %w", err)
	}
	s.fingerprint = fp
	return nil
}

// Clear empties the list and removes the persisted entry.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.list = nil
	s.fingerprint = 0
	return s.storage.Remove(StorageKey)
}

// Reset drops the in-memory list without touching storage. Used by the
// authorization gate when tearing down a no-longer-valid session whose
// storage entries were already removed.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = nil
	s.fingerprint = 0
}

// List returns a copy of the current privilege list.
func (s *Store) List() []Privilege {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Privilege(nil), s.list...)
}

// MenuTree projects the current list into the two-level menu tree.
func (s *Store) MenuTree() []MenuEntry {
	return BuildMenuTree(s.List())
}
