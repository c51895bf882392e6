package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tvet-mis/console/internal/domain/privilege"
	"github.com/tvet-mis/console/internal/domain/profile"
	"github.com/tvet-mis/console/internal/domain/token"
	"github.com/tvet-mis/console/internal/port/kv"
)

// bundleKeys is the full set of durable keys invalidated on logout.
// Logout is the single invalidation point for authenticated state: the
// session keys plus every key owned by a dependent store.
var bundleKeys = []string{
	KeyAccessToken,
	KeyRefreshToken,
	KeyCurrentRoleID,
	KeyLocationID,
	privilege.StorageKey,
	profile.KeyUsername,
	profile.KeyCurrentRoleName,
}

// Store holds the session with persistence to client storage.
//
// Derived fields (UserID, Roles) are recomputed from the access token on
// every state change and on rehydration. IsAuthenticated is likewise
// recomputed on every call rather than cached, so an expired token is
// observed the moment anyone asks.
type Store struct {
	mu      sync.Mutex
	storage kv.KeyValue
	logger  *slog.Logger
	secure  bool
	cur     Session
}

// NewStore creates a session store backed by the given storage.
// secure marks persisted entries as secure-channel only (production).
func NewStore(storage kv.KeyValue, secure bool, logger *slog.Logger) *Store {
	return &Store{
		storage: storage,
		logger:  logger,
		secure:  secure,
	}
}

// Rehydrate loads the persisted session, if any. A persisted token that
// no longer decodes is discarded wholesale rather than loaded as a
// half-valid session.
func (s *Store) Rehydrate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.storage.Get(KeyAccessToken)
	if !ok {
		s.cur = Session{}
		return
	}

	claims, err := token.Decode(raw)
	if err != nil {
		s.logger.Warn("persisted access token is not decodable, discarding session", "error", err)
		s.cur = Session{}
		return
	}

	s.cur = Session{
		AccessToken: raw,
		UserID:      claims.Subject,
		Roles:       claims.Roles,
	}
	if v, ok := s.storage.Get(KeyRefreshToken); ok {
		s.cur.RefreshToken = v
	}
	if v, ok := s.storage.Get(KeyCurrentRoleID); ok {
		s.cur.CurrentRoleID = v
	}
	if v, ok := s.storage.Get(KeyLocationID); ok {
		s.cur.LocationID = v
	}
}

// Login installs a freshly issued credential set. The access token must
// decode; otherwise ErrInvalidToken is returned and neither the
// in-memory session nor storage changes. UserID and Roles are derived
// from the token, never taken from the caller.
func (s *Store) Login(accessToken, refreshToken, currentRoleID, locationID string) error {
	claims, err := token.Decode(accessToken)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur = Session{
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		UserID:        claims.Subject,
		Roles:         claims.Roles,
		CurrentRoleID: currentRoleID,
		LocationID:    locationID,
	}

	opts := kv.SetOptions{Secure: s.secure, SameSite: kv.SameSiteStrict}
	return errors.Join(
		s.storage.Set(KeyAccessToken, accessToken, opts),
		s.storage.Set(KeyRefreshToken, refreshToken, opts),
		s.storage.Set(KeyCurrentRoleID, currentRoleID, opts),
		s.storage.Set(KeyLocationID, locationID, opts),
	)
}

// Logout clears the session and removes the whole authenticated-state
// bundle from storage, including the keys owned by the privilege and
// profile stores. Removal errors are joined, not short-circuited: every
// key gets its removal attempt.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur = Session{}

	var errs []error
	for _, key := range bundleKeys {
		if err := s.storage.Remove(key); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// Reset drops the in-memory session without touching storage.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = Session{}
}

// IsAuthenticated reports whether a non-expired access token is held.
// The check is recomputed on every call; a token without an expiry
// claim never expires client-side.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur.AccessToken != "" && !token.IsExpired(s.cur.AccessToken)
}

// Current returns a copy of the session.
func (s *Store) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.cur
	cur.Roles = append([]string(nil), s.cur.Roles...)
	return cur
}

// SetCurrentRole updates the current role id and persists it. The role
// must be among the token's role claims.
func (s *Store) SetCurrentRole(roleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cur.HasRole(roleID) {
		return fmt.Errorf("role %q is not granted by the access token", roleID)
	}
	s.cur.CurrentRoleID = roleID
	return s.storage.Set(KeyCurrentRoleID, roleID, kv.SetOptions{
		Secure:   s.secure,
		SameSite: kv.SameSiteStrict,
	})
}
