// Package token decodes bearer tokens issued by the TVET-MIS backend.
//
// Decoding is a client-side convenience for reading the subject, role
// claims, and expiry out of an access token. Signatures are NOT verified
// here — the server independently validates every authenticated request,
// so the trust boundary stays on the server side.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrDecode is the sentinel for any token decoding failure, for use
// with errors.Is().
var ErrDecode = errors.New("token decode failed")

// DecodeError is returned when a token is malformed: not three
// dot-separated base64url segments, or a payload that is not valid JSON.
type DecodeError struct {
	// Cause is the underlying parser error.
	Cause error
}

// Error returns a human-readable description of the decode failure.
func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("token decode failed: %v", e.Cause)
	}
	return "token decode failed"
}

// Unwrap returns the underlying error cause.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches ErrDecode.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// Claims are the backend token claims the client cares about.
type Claims struct {
	// Subject is the user identifier carried in the "username" claim.
	Subject string
	// Roles are the role identifiers granted to the subject, in claim order.
	Roles []string
	// ExpiresAt is the expiry as epoch seconds. Zero means the token
	// carries no expiry claim and never expires client-side.
	ExpiresAt int64
}

// wireClaims mirrors the backend's token payload.
// Role identifiers may arrive as JSON numbers or strings.
type wireClaims struct {
	Username string `json:"username"`
	Roles    []any  `json:"roles"`
	jwt.RegisteredClaims
}

// Decode parses the token payload without verifying the signature.
// It returns a *DecodeError when the token is not structurally valid;
// it never panics past this boundary.
func Decode(raw string) (*Claims, error) {
	var wc wireClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &wc); err != nil {
		return nil, &DecodeError{Cause: err}
	}

	c := &Claims{
		Subject: wc.Username,
		Roles:   stringifyRoles(wc.Roles),
	}
	if wc.ExpiresAt != nil {
		c.ExpiresAt = wc.ExpiresAt.Unix()
	}
	return c, nil
}

// IsExpired reports whether the token's expiry has passed.
// A token that cannot be decoded is treated as expired (fail closed).
func IsExpired(raw string) bool {
	c, err := Decode(raw)
	if err != nil {
		return true
	}
	if c.ExpiresAt == 0 {
		return false
	}
	return c.ExpiresAt*1000 < time.Now().UnixMilli()
}

// stringifyRoles normalizes role claim entries to strings.
// The backend encodes role ids as numbers in some deployments and
// strings in others.
func stringifyRoles(raw []any) []string {
	if len(raw) == 0 {
		return nil
	}
	roles := make([]string, 0, len(raw))
	for _, r := range raw {
		switch v := r.(type) {
		case string:
			roles = append(roles, v)
		case float64:
			roles = append(roles, strconv.FormatFloat(v, 'f', -1, 64))
		case int64:
			roles = append(roles, strconv.FormatInt(v, 10))
		default:
			roles = append(roles, fmt.Sprintf("%v", v))
		}
	}
	return roles
}
