// Package service wires the domain stores, the backend client, and the
// navigation gate into the client's use cases.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/tvet-mis/console/internal/domain/audit"
	"github.com/tvet-mis/console/internal/domain/gate"
	"github.com/tvet-mis/console/internal/domain/privilege"
	"github.com/tvet-mis/console/internal/domain/profile"
	"github.com/tvet-mis/console/internal/domain/session"
	"github.com/tvet-mis/console/internal/domain/token"
	"github.com/tvet-mis/console/internal/obs"
	"github.com/tvet-mis/console/internal/port/outbound"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrRoleNotGranted is returned when the requested role is not among
	// the access token's role claims. No partial login happens.
	ErrRoleNotGranted = errors.New("role not granted to user")

	// ErrSameRole is returned when a role switch targets the role that
	// is already current. Rejected before any server request.
	ErrSameRole = errors.New("already using this role")

	// ErrNotAuthenticated is returned by operations that need a live
	// session when none is held.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Credentials are the login inputs.
type Credentials struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// AuthService orchestrates authentication, role switching, and the
// password flows against the backend, keeping the session, privilege,
// and profile stores coherent.
type AuthService struct {
	backend    outbound.Backend
	sessions   *session.Store
	privileges *privilege.Store
	profiles   *profile.Store
	gate       *gate.Gate
	trail      audit.Store
	metrics    *obs.Metrics
	logger     *slog.Logger
	validate   *validator.Validate

	// loginGen guards against a slow login response landing after a
	// newer login or a logout. Each state change bumps the generation;
	// best-effort fetches from an older generation are discarded.
	loginGen atomic.Uint64
}

// NewAuthService creates the service. trail and metrics may be nil.
func NewAuthService(
	backend outbound.Backend,
	sessions *session.Store,
	privileges *privilege.Store,
	profiles *profile.Store,
	g *gate.Gate,
	trail audit.Store,
	metrics *obs.Metrics,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		backend:    backend,
		sessions:   sessions,
		privileges: privileges,
		profiles:   profiles,
		gate:       g,
		trail:      trail,
		metrics:    metrics,
		logger:     logger,
		validate:   validator.New(),
	}
}

// Login authenticates and installs the session.
//
// The server-issued current role must be among the token's role claims;
// otherwise the login is rejected wholesale and no state changes. The
// privilege and profile fetches that follow a successful login are
// best-effort: their failure is logged, never surfaced, and the login
// stands. A broken menu beats a broken login.
func (s *AuthService) Login(ctx context.Context, creds Credentials) error {
	if err := s.validate.Struct(creds); err != nil {
		return fmt.Errorf("invalid credentials: %w", err)
	}

	result, err := s.backend.Authenticate(ctx, creds.Username, creds.Password)
	if err != nil {
		s.countLogin("error")
		s.record(audit.Record{
			EventType: audit.EventLoginFailed,
			Detail:    err.Error(),
		})
		return err
	}

	claims, err := token.Decode(result.AccessToken)
	if err != nil {
		s.countLogin("error")
		return fmt.Errorf("server issued an undecodable token: %w", err)
	}
	if !containsRole(claims.Roles, result.CurrentRoleID) {
		s.countLogin("role_not_granted")
		s.record(audit.Record{
			EventType: audit.EventLoginFailed,
			UserID:    result.UserID,
			RoleID:    result.CurrentRoleID,
			Detail:    "current role missing from token claims",
		})
		return fmt.Errorf("%w: role %q", ErrRoleNotGranted, result.CurrentRoleID)
	}

	if err := s.sessions.Login(result.AccessToken, result.RefreshToken, result.CurrentRoleID, result.LocationID); err != nil {
		s.countLogin("error")
		return err
	}
	gen := s.loginGen.Add(1)
	s.gate.OnLogin()

	s.countLogin("ok")
	s.record(audit.Record{
		EventType: audit.EventLogin,
		UserID:    result.UserID,
		RoleID:    result.CurrentRoleID,
	})

	s.hydrateStores(ctx, gen, result.UserID, result.CurrentRoleID)
	return nil
}

// Logout tears down the session and all dependent state.
func (s *AuthService) Logout(ctx context.Context) error {
	cur := s.sessions.Current()
	s.loginGen.Add(1)

	err := s.sessions.Logout()
	s.gate.OnLogout()

	s.record(audit.Record{
		EventType: audit.EventLogout,
		UserID:    cur.UserID,
		RoleID:    cur.CurrentRoleID,
	})
	return err
}

// SwitchRole moves the account to another of its associated roles.
//
// A switch to the current role is rejected client-side before any
// request. A successful server switch ends the session: the server
// response carries no credentials, so the old bundle is torn down and
// the user authenticates again under the new role.
func (s *AuthService) SwitchRole(ctx context.Context, roleID string) error {
	cur := s.sessions.Current()
	if !s.sessions.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if roleID == cur.CurrentRoleID {
		return ErrSameRole
	}
	if !cur.HasRole(roleID) {
		return fmt.Errorf("%w: role %q", ErrRoleNotGranted, roleID)
	}

	if err := s.backend.SwitchRole(ctx, cur.UserID, roleID); err != nil {
		return err
	}

	s.loginGen.Add(1)
	if err := s.sessions.Logout(); err != nil {
		s.logger.Warn("session cleanup failed during role switch", "error", err)
	}
	s.gate.OnLogout()

	if s.metrics != nil {
		s.metrics.RoleSwitchesTotal.Inc()
	}
	s.record(audit.Record{
		EventType: audit.EventRoleSwitch,
		UserID:    cur.UserID,
		RoleID:    roleID,
		Detail:    fmt.Sprintf("from role %s, session ended", cur.CurrentRoleID),
	})
	return nil
}

// AssociatedRoles lists the roles the logged-in user can switch to.
func (s *AuthService) AssociatedRoles(ctx context.Context) ([]outbound.RoleOption, error) {
	cur := s.sessions.Current()
	if !s.sessions.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	return s.backend.AssociatedRoles(ctx, cur.UserID)
}

// ChangePassword changes the logged-in user's password.
func (s *AuthService) ChangePassword(ctx context.Context, current, next string) error {
	if !s.sessions.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if current == "" || next == "" {
		return fmt.Errorf("current and new password are required")
	}
	return s.backend.ChangePassword(ctx, outbound.ChangePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
	})
}

// ForgotPassword starts a password reset for the given email.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if err := s.validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}
	return s.backend.ForgotPassword(ctx, email)
}

// ResetPassword completes a password reset with the emailed token.
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, next string) error {
	if resetToken == "" || next == "" {
		return fmt.Errorf("reset token and new password are required")
	}
	return s.backend.ResetPassword(ctx, outbound.ResetPasswordRequest{
		ResetToken:  resetToken,
		NewPassword: next,
	})
}

// RefreshPrivileges re-fetches the privilege list and profile for the
// current session, replacing the stores wholesale.
func (s *AuthService) RefreshPrivileges(ctx context.Context) error {
	cur := s.sessions.Current()
	if !s.sessions.IsAuthenticated() {
		return ErrNotAuthenticated
	}

	list, err := s.backend.MenuPrivileges(ctx, cur.CurrentRoleID)
	if err != nil {
		return err
	}
	return s.privileges.Set(list)
}

// hydrateStores fetches privileges and profile after a login or role
// switch. Failures are logged and swallowed; a response arriving after
// the session moved on (newer generation) is discarded.
func (s *AuthService) hydrateStores(ctx context.Context, gen uint64, userID, roleID string) {
	list, err := s.backend.MenuPrivileges(ctx, roleID)
	if err != nil {
		s.logger.Warn("privilege fetch failed, menu will be empty", "role_id", roleID, "error", err)
	} else if s.loginGen.Load() == gen {
		if err := s.privileges.Set(list); err != nil {
			s.logger.Warn("privilege persist failed", "error", err)
		}
	}

	prof, err := s.backend.UserNameCurrentRole(ctx, userID)
	if err != nil {
		s.logger.Warn("profile fetch failed", "user_id", userID, "error", err)
		return
	}
	if s.loginGen.Load() == gen {
		if err := s.profiles.Set(prof.Username, prof.CurrentRoleName); err != nil {
			s.logger.Warn("profile persist failed", "error", err)
		}
	}
}

func (s *AuthService) countLogin(result string) {
	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues(result).Inc()
	}
}

// record appends to the audit trail, filling ID and timestamp.
// Trail failures are logged, never surfaced.
func (s *AuthService) record(rec audit.Record) {
	if s.trail == nil {
		return
	}
	rec.ID = uuid.NewString()
	rec.Timestamp = time.Now().UTC()
	if err := s.trail.Append(rec); err != nil {
		s.logger.Warn("audit append failed", "event_type", rec.EventType, "error", err)
	}
}

func containsRole(roles []string, roleID string) bool {
	for _, r := range roles {
		if r == roleID {
			return true
		}
	}
	return false
}
