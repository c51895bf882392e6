// Package outbound defines the outbound port to the TVET-MIS backend
// API. The durable storage port lives in the leaf package port/kv.
package outbound

import (
	"context"

	"github.com/tvet-mis/console/internal/domain/privilege"
)

// AuthResult is the credential bundle issued by a successful
// authentication.
type AuthResult struct {
	AccessToken   string `json:"access_token"`
	RefreshToken  string `json:"refresh_token"`
	CurrentRoleID string `json:"current_role"`
	UserID        string `json:"userId"`
	LocationID    string `json:"locationId"`
}

// RoleOption is one of the roles associated with a user account.
type RoleOption struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Current bool   `json:"current"`
}

// ProfileResult is the display identity for the session's user and
// current role.
type ProfileResult struct {
	Username        string `json:"username"`
	CurrentRoleName string `json:"current_role_name"`
}

// ChangePasswordRequest carries a logged-in password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ResetPasswordRequest completes a forgot-password flow with the
// emailed reset token.
type ResetPasswordRequest struct {
	ResetToken  string `json:"reset_token"`
	NewPassword string `json:"new_password"`
}

// Backend is the TVET-MIS server API surface the client depends on.
type Backend interface {
	// Authenticate exchanges credentials for a token bundle.
	Authenticate(ctx context.Context, username, password string) (*AuthResult, error)

	// MenuPrivileges fetches the navigation privileges granted to a role.
	MenuPrivileges(ctx context.Context, roleID string) ([]privilege.Privilege, error)

	// ParentPrivileges lists every top-level privilege definition.
	ParentPrivileges(ctx context.Context) ([]privilege.Privilege, error)

	// ChildPrivileges lists the child privilege definitions of a parent.
	ChildPrivileges(ctx context.Context, parentID int64) ([]privilege.Privilege, error)

	// UserNameCurrentRole fetches the display identity for a user.
	UserNameCurrentRole(ctx context.Context, userID string) (*ProfileResult, error)

	// AssociatedRoles lists the roles a user can switch between.
	AssociatedRoles(ctx context.Context, userID string) ([]RoleOption, error)

	// SwitchRole asks the server to move the account's current role.
	// The response carries no credentials: a successful switch ends the
	// current session and the user authenticates again under the new role.
	SwitchRole(ctx context.Context, userID, roleID string) error

	// ChangePassword changes the logged-in user's password.
	ChangePassword(ctx context.Context, req ChangePasswordRequest) error

	// ForgotPassword starts a password reset for the given email.
	ForgotPassword(ctx context.Context, email string) error

	// ResetPassword completes a password reset with the emailed token.
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}
