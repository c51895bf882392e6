package token

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

// mintToken builds an unsigned JWT from the given payload claims.
func mintToken(t *testing.T, claims map[string]any) string {
	t.Helper()

	header, err := json.Marshal(map[string]any{"alg": "none", "typ": "JWT"})
	if err != nil {
		t.Fatalf("marshal header: %v", err)
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(payload) + "."
}

func TestDecode(t *testing.T) {
	t.Run("subject and roles", func(t *testing.T) {
		raw := mintToken(t, map[string]any{
			"username": "u-1001",
			"roles":    []any{"12", "7"},
		})

		c, err := Decode(raw)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if c.Subject != "u-1001" {
			t.Errorf("Subject = %q, want %q", c.Subject, "u-1001")
		}
		if len(c.Roles) != 2 || c.Roles[0] != "12" || c.Roles[1] != "7" {
			t.Errorf("Roles = %v, want [12 7]", c.Roles)
		}
		if c.ExpiresAt != 0 {
			t.Errorf("ExpiresAt = %d, want 0", c.ExpiresAt)
		}
	})

	t.Run("numeric role claims", func(t *testing.T) {
		raw := mintToken(t, map[string]any{
			"username": "u-1",
			"roles":    []any{12, 7},
		})

		c, err := Decode(raw)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if len(c.Roles) != 2 || c.Roles[0] != "12" || c.Roles[1] != "7" {
			t.Errorf("Roles = %v, want [12 7]", c.Roles)
		}
	})

	t.Run("expiry claim", func(t *testing.T) {
		exp := time.Now().Add(time.Hour).Unix()
		raw := mintToken(t, map[string]any{"username": "u-1", "exp": exp})

		c, err := Decode(raw)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if c.ExpiresAt != exp {
			t.Errorf("ExpiresAt = %d, want %d", c.ExpiresAt, exp)
		}
	})

	t.Run("malformed token", func(t *testing.T) {
		for _, raw := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
			if _, err := Decode(raw); err == nil {
				t.Errorf("Decode(%q) error = nil, want decode error", raw)
			}
		}
	})

	t.Run("decode error matches sentinel", func(t *testing.T) {
		_, err := Decode("garbage")
		if !errors.Is(err, ErrDecode) {
			t.Errorf("errors.Is(err, ErrDecode) = false, want true")
		}
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Errorf("errors.As(err, *DecodeError) = false, want true")
		}
	})

	t.Run("payload not valid JSON", func(t *testing.T) {
		enc := base64.RawURLEncoding
		header := enc.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
		raw := header + "." + enc.EncodeToString([]byte("{broken")) + "."
		if _, err := Decode(raw); !errors.Is(err, ErrDecode) {
			t.Errorf("Decode() error = %v, want ErrDecode", err)
		}
	})
}

func TestIsExpired(t *testing.T) {
	tests := []struct {
		name   string
		claims map[string]any
		want   bool
	}{
		{
			name:   "future expiry",
			claims: map[string]any{"username": "u", "exp": time.Now().Add(time.Hour).Unix()},
			want:   false,
		},
		{
			name:   "past expiry",
			claims: map[string]any{"username": "u", "exp": time.Now().Add(-time.Hour).Unix()},
			want:   true,
		},
		{
			name:   "no expiry claim never expires",
			claims: map[string]any{"username": "u"},
			want:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := mintToken(t, tt.claims)
			if got := IsExpired(raw); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("undecodable token is expired", func(t *testing.T) {
		if !IsExpired("garbage") {
			t.Error("IsExpired(garbage) = false, want true (fail closed)")
		}
	})
}
