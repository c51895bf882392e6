// Package session owns the authenticated session: the bearer tokens,
// the role context, and their persistence to durable client storage.
package session

import "errors"

// Durable storage keys owned by the session store.
const (
	KeyAccessToken   = "access_token"
	KeyRefreshToken  = "refresh_token"
	KeyCurrentRoleID = "current_roleId"
	KeyLocationID    = "locationId"
)

// ErrInvalidToken is returned by Login when the supplied access token
// cannot be decoded. The session is left untouched.
var ErrInvalidToken = errors.New("invalid access token")

// Session is the authenticated client state.
//
// UserID and Roles are always re-derived from AccessToken via the token
// codec — they are never set independently and never persisted raw, so
// they cannot drift from what the credential actually encodes. An empty
// AccessToken means unauthenticated regardless of the other fields.
type Session struct {
	AccessToken   string
	RefreshToken  string
	UserID        string
	Roles         []string
	CurrentRoleID string
	LocationID    string
}

// HasRole reports whether roleID is among the token's role claims.
func (s *Session) HasRole(roleID string) bool {
	for _, r := range s.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}
