package profile

import (
	"io"
	"log/slog"
	"testing"

	"github.com/tvet-mis/console/internal/port/kv"
)

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

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSetAndCurrent(t *testing.T) {
	kv := newMemKV()
	store := NewStore(kv, discardLogger())

	if err := store.Set("Tashi", "Assessor"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	prof := store.Current()
	if prof.DisplayName != "Tashi" || prof.RoleLabel != "Assessor" {
		t.Errorf("Current() = %+v", prof)
	}
	if kv.data[KeyUsername] != "Tashi" || kv.data[KeyCurrentRoleName] != "Assessor" {
		t.Errorf("persisted = %v", kv.data)
	}
}

func TestRehydrate(t *testing.T) {
	kv := newMemKV()
	kv.data[KeyUsername] = "Tashi"
	kv.data[KeyCurrentRoleName] = "Verifier"

	store := NewStore(kv, discardLogger())
	store.Rehydrate()

	if prof := store.Current(); prof.DisplayName != "Tashi" || prof.RoleLabel != "Verifier" {
		t.Errorf("Current() = %+v", prof)
	}
}

func TestReset(t *testing.T) {
	kv := newMemKV()
	store := NewStore(kv, discardLogger())

	if err := store.Set("Tashi", "Assessor"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	store.Reset()

	if prof := store.Current(); prof != (Profile{}) {
		t.Errorf("Current() after Reset = %+v", prof)
	}
	// Durable entries are removed by the session store's logout, not Reset.
	if _, ok := kv.data[KeyUsername]; !ok {
		t.Error("Reset removed the persisted entry")
	}
}
