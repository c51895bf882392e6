package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/tvet-mis/console/internal/domain/audit"
	"github.com/tvet-mis/console/internal/domain/gate"
	"github.com/tvet-mis/console/internal/domain/privilege"
	"github.com/tvet-mis/console/internal/domain/profile"
	"github.com/tvet-mis/console/internal/domain/session"
	"github.com/tvet-mis/console/internal/port/kv"
	"github.com/tvet-mis/console/internal/port/outbound"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// memKV is an in-memory KeyValue for tests.
type memKV struct {
	data map[string]string
}

func newMemKV() *memKV { return &memKV{data: make(map[string]string)} }

func (m *memKV) Get(key string) (string, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *memKV) Set(key, value string, _ kv.SetOptions) error {
	m.data[key] = value
	return nil
}

func (m *memKV) Remove(key string) error {
	delete(m.data, key)
	return nil
}

// memTrail records audit events in memory.
type memTrail struct {
	records []audit.Record
}

func (m *memTrail) Append(rec audit.Record) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memTrail) Close() error { return nil }

func (m *memTrail) eventTypes() []string {
	types := make([]string, 0, len(m.records))
	for _, r := range m.records {
		types = append(types, r.EventType)
	}
	return types
}

// fakeBackend is a scripted Backend.
type fakeBackend struct {
	authResult *outbound.AuthResult
	authErr    error
	menuList   []privilege.Privilege
	menuErr    error
	profile    *outbound.ProfileResult
	profileErr error
	roles      []outbound.RoleOption
	switchErr  error

	switchCalls int
}

func (f *fakeBackend) Authenticate(_ context.Context, _, _ string) (*outbound.AuthResult, error) {
	return f.authResult, f.authErr
}

func (f *fakeBackend) MenuPrivileges(_ context.Context, _ string) ([]privilege.Privilege, error) {
	return f.menuList, f.menuErr
}

func (f *fakeBackend) ParentPrivileges(_ context.Context) ([]privilege.Privilege, error) {
	return f.menuList, nil
}

func (f *fakeBackend) ChildPrivileges(_ context.Context, _ int64) ([]privilege.Privilege, error) {
	return nil, nil
}

func (f *fakeBackend) UserNameCurrentRole(_ context.Context, _ string) (*outbound.ProfileResult, error) {
	return f.profile, f.profileErr
}

func (f *fakeBackend) AssociatedRoles(_ context.Context, _ string) ([]outbound.RoleOption, error) {
	return f.roles, nil
}

func (f *fakeBackend) SwitchRole(_ context.Context, _, _ string) error {
	f.switchCalls++
	return f.switchErr
}

func (f *fakeBackend) ChangePassword(_ context.Context, _ outbound.ChangePasswordRequest) error {
	return nil
}

func (f *fakeBackend) ForgotPassword(_ context.Context, _ string) error { return nil }

func (f *fakeBackend) ResetPassword(_ context.Context, _ outbound.ResetPasswordRequest) error {
	return nil
}

func mintToken(t *testing.T, username string, roles []any) string {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"username": username,
		"roles":    roles,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	enc := base64.RawURLEncoding
	header := enc.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	return header + "." + enc.EncodeToString(payload) + "."
}

type harness struct {
	svc        *AuthService
	backend    *fakeBackend
	kv         *memKV
	sessions   *session.Store
	privileges *privilege.Store
	profiles   *profile.Store
	gate       *gate.Gate
	trail      *memTrail
}

func newHarness(t *testing.T, backend *fakeBackend) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mem := newMemKV()
	sessions := session.NewStore(mem, false, logger)
	privileges := privilege.NewStore(mem, false, logger)
	profiles := profile.NewStore(mem, logger)
	g := gate.New(sessions, logger, []gate.Resetter{privileges, profiles, sessions})
	trail := &memTrail{}

	svc := NewAuthService(backend, sessions, privileges, profiles, g, trail, nil, logger)
	return &harness{
		svc:        svc,
		backend:    backend,
		kv:         mem,
		sessions:   sessions,
		privileges: privileges,
		profiles:   profiles,
		gate:       g,
		trail:      trail,
	}
}

func validBackend(t *testing.T) *fakeBackend {
	t.Helper()
	return &fakeBackend{
		authResult: &outbound.AuthResult{
			AccessToken:   mintToken(t, "u-1", []any{"12", "7"}),
			RefreshToken:  "rt-1",
			CurrentRoleID: "12",
			UserID:        "u-1",
			LocationID:    "loc-1",
		},
		menuList: []privilege.Privilege{
			{ID: 1, DisplayOrder: 1, IsDisplay: true, Name: "Tasks", RoutePath: "/my-task-index"},
		},
		profile: &outbound.ProfileResult{Username: "Tashi", CurrentRoleName: "Assessor"},
	}
}

func TestLoginSuccess(t *testing.T) {
	h := newHarness(t, validBackend(t))

	if err := h.svc.Login(context.Background(), Credentials{Username: "tashi", Password: "pw"}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if !h.sessions.IsAuthenticated() {
		t.Error("session not authenticated after login")
	}
	if h.gate.State() != gate.Authenticated {
		t.Error("gate not authenticated after login")
	}
	if cur := h.sessions.Current(); cur.UserID != "u-1" || cur.CurrentRoleID != "12" {
		t.Errorf("session = %+v", cur)
	}
	if list := h.privileges.List(); len(list) != 1 || list[0].Name != "Tasks" {
		t.Errorf("privileges = %+v", list)
	}
	if prof := h.profiles.Current(); prof.DisplayName != "Tashi" || prof.RoleLabel != "Assessor" {
		t.Errorf("profile = %+v", prof)
	}
	if types := h.trail.eventTypes(); len(types) != 1 || types[0] != audit.EventLogin {
		t.Errorf("audit events = %v", types)
	}
}

func TestLoginValidation(t *testing.T) {
	h := newHarness(t, validBackend(t))

	if err := h.svc.Login(context.Background(), Credentials{Username: "", Password: "pw"}); err == nil {
		t.Error("Login() with empty username error = nil")
	}
	if h.sessions.IsAuthenticated() {
		t.Error("rejected login left a session")
	}
}

func TestLoginRoleNotGranted(t *testing.T) {
	backend := validBackend(t)
	backend.authResult.CurrentRoleID = "99" // not in token claims
	h := newHarness(t, backend)

	err := h.svc.Login(context.Background(), Credentials{Username: "tashi", Password: "pw"})
	if !errors.Is(err, ErrRoleNotGranted) {
		t.Fatalf("Login() error = %v, want ErrRoleNotGranted", err)
	}

	// Rejection is wholesale: no partial login.
	if h.sessions.IsAuthenticated() {
		t.Error("session authenticated after rejected login")
	}
	if h.gate.State() != gate.Unauthenticated {
		t.Error("gate authenticated after rejected login")
	}
	if _, ok := h.kv.Get(session.KeyAccessToken); ok {
		t.Error("rejected login persisted the access token")
	}
	if types := h.trail.eventTypes(); len(types) != 1 || types[0] != audit.EventLoginFailed {
		t.Errorf("audit events = %v", types)
	}
}

func TestLoginAuthFailure(t *testing.T) {
	backend := validBackend(t)
	backend.authResult = nil
	backend.authErr = errors.New("invalid credentials")
	h := newHarness(t, backend)

	if err := h.svc.Login(context.Background(), Credentials{Username: "tashi", Password: "bad"}); err == nil {
		t.Fatal("Login() error = nil, want auth failure")
	}
	if types := h.trail.eventTypes(); len(types) != 1 || types[0] != audit.EventLoginFailed {
		t.Errorf("audit events = %v", types)
	}
}

func TestLoginSurvivesPrivilegeFetchFailure(t *testing.T) {
	backend := validBackend(t)
	backend.menuList = nil
	backend.menuErr = errors.New("privilege endpoint down")
	backend.profileErr = errors.New("profile endpoint down")
	h := newHarness(t, backend)

	if err := h.svc.Login(context.Background(), Credentials{Username: "tashi", Password: "pw"}); err != nil {
		t.Fatalf("Login() error = %v, want success despite fetch failures", err)
	}
	if !h.sessions.IsAuthenticated() {
		t.Error("login rolled back by a best-effort fetch failure")
	}
	if list := h.privileges.List(); len(list) != 0 {
		t.Errorf("privileges = %+v, want empty", list)
	}
}

func TestLogout(t *testing.T) {
	h := newHarness(t, validBackend(t))
	if err := h.svc.Login(context.Background(), Credentials{Username: "tashi", Password: "pw"}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := h.svc.Logout(context.Background()); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	if h.sessions.IsAuthenticated() {
		t.Error("session authenticated after logout")
	}
	if h.gate.State() != gate.Unauthenticated {
		t.Error("gate authenticated after logout")
	}
	if list := h.privileges.List(); len(list) != 0 {
		t.Errorf("privileges after logout = %+v", list)
	}
	if _, ok := h.kv.Get(privilege.StorageKey); ok {
		t.Error("persisted privileges survived logout")
	}
	types := h.trail.eventTypes()
	if len(types) != 2 || types[1] != audit.EventLogout {
		t.Errorf("audit events = %v", types)
	}
}

func TestSwitchRole(t *testing.T) {
	t.Run("same role rejected before any request", func(t *testing.T) {
		h := newHarness(t, validBackend(t))
		if err := h.svc.Login(context.Background(), Credentials{Username: "tashi", Password: "pw"}); err != nil {
			t.Fatalf("Login() error = %v", err)
		}

		if err := h.svc.SwitchRole(context.Background(), "12"); !errors.Is(err, ErrSameRole) {
			t.Fatalf("SwitchRole(same) error = %v, want ErrSameRole", err)
		}
		if h.backend.switchCalls != 0 {
			t.Errorf("switch calls = %d, want 0", h.backend.switchCalls)
		}
	})

	t.Run("ungranted role rejected", func(t *testing.T) {
		h := newHarness(t, validBackend(t))
		if err := h.svc.Login(context.Background(), Credentials{Username: "tashi", Password: "pw"}); err != nil {
			t.Fatalf("Login() error = %v", err)
		}

		if err := h.svc.SwitchRole(context.Background(), "99"); !errors.Is(err, ErrRoleNotGranted) {
			t.Fatalf("SwitchRole(99) error = %v, want ErrRoleNotGranted", err)
		}
		if h.backend.switchCalls != 0 {
			t.Errorf("switch calls = %d, want 0", h.backend.switchCalls)
		}
	})

	t.Run("unauthenticated rejected", func(t *testing.T) {
		h := newHarness(t, validBackend(t))
		if err := h.svc.SwitchRole(context.Background(), "7"); !errors.Is(err, ErrNotAuthenticated) {
			t.Fatalf("SwitchRole() error = %v, want ErrNotAuthenticated", err)
		}
	})

	t.Run("successful switch ends the session", func(t *testing.T) {
		h := newHarness(t, validBackend(t))
		if err := h.svc.Login(context.Background(), Credentials{Username: "tashi", Password: "pw"}); err != nil {
			t.Fatalf("Login() error = %v", err)
		}

		if err := h.svc.SwitchRole(context.Background(), "7"); err != nil {
			t.Fatalf("SwitchRole(7) error = %v", err)
		}
		if h.backend.switchCalls != 1 {
			t.Errorf("switch calls = %d, want 1", h.backend.switchCalls)
		}

		// Fresh credentials are required: the switch response carries no
		// tokens, so the old session must be gone.
		if h.sessions.IsAuthenticated() {
			t.Error("still authenticated after switch")
		}
		if h.gate.State() != gate.Unauthenticated {
			t.Error("gate still authenticated after switch")
		}
		if _, ok := h.kv.Get(session.KeyAccessToken); ok {
			t.Error("access token survived the switch")
		}
		if list := h.privileges.List(); len(list) != 0 {
			t.Errorf("privileges after switch = %+v", list)
		}

		types := h.trail.eventTypes()
		if types[len(types)-1] != audit.EventRoleSwitch {
			t.Errorf("audit events = %v", types)
		}
	})

	t.Run("failed switch keeps the session", func(t *testing.T) {
		backend := validBackend(t)
		backend.switchErr = errors.New("switch rejected")
		h := newHarness(t, backend)
		if err := h.svc.Login(context.Background(), Credentials{Username: "tashi", Password: "pw"}); err != nil {
			t.Fatalf("Login() error = %v", err)
		}

		if err := h.svc.SwitchRole(context.Background(), "7"); err == nil {
			t.Fatal("SwitchRole() error = nil, want server failure")
		}
		if !h.sessions.IsAuthenticated() {
			t.Error("failed switch tore down the session")
		}
		if cur := h.sessions.Current(); cur.CurrentRoleID != "12" {
			t.Errorf("current role = %s, want 12", cur.CurrentRoleID)
		}
	})
}

func TestForgotPasswordValidation(t *testing.T) {
	h := newHarness(t, validBackend(t))

	if err := h.svc.ForgotPassword(context.Background(), "not-an-email"); err == nil {
		t.Error("ForgotPassword(not-an-email) error = nil")
	}
	if err := h.svc.ForgotPassword(context.Background(), "tashi@example.bt"); err != nil {
		t.Errorf("ForgotPassword(valid) error = %v", err)
	}
}

func TestRefreshPrivileges(t *testing.T) {
	h := newHarness(t, validBackend(t))
	if err := h.svc.Login(context.Background(), Credentials{Username: "tashi", Password: "pw"}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	h.backend.menuList = []privilege.Privilege{
		{ID: 2, DisplayOrder: 1, IsDisplay: true, Name: "Reports", RoutePath: "/report-index"},
	}
	if err := h.svc.RefreshPrivileges(context.Background()); err != nil {
		t.Fatalf("RefreshPrivileges() error = %v", err)
	}

	list := h.privileges.List()
	if len(list) != 1 || list[0].Name != "Reports" {
		t.Errorf("privileges = %+v, want wholesale replacement", list)
	}
}
