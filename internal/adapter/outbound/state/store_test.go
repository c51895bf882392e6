package state

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tvet-mis/console/internal/port/kv"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "storage.json"), discardLogger())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	return s
}

func TestSetGetRemove(t *testing.T) {
	s := newTestStore(t)

	if _, ok := s.Get("access_token"); ok {
		t.Error("Get() on empty store returned a value")
	}

	if err := s.Set("access_token", "tok-1", kv.SetOptions{}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if v, ok := s.Get("access_token"); !ok || v != "tok-1" {
		t.Errorf("Get() = (%q, %v), want (tok-1, true)", v, ok)
	}

	if err := s.Remove("access_token"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, ok := s.Get("access_token"); ok {
		t.Error("Get() after Remove returned a value")
	}

	t.Run("removing absent key succeeds", func(t *testing.T) {
		if err := s.Remove("never-set"); err != nil {
			t.Errorf("Remove(absent) error = %v", err)
		}
	})
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "storage.json")

	s1, err := NewFileStore(path, discardLogger())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if err := s1.Set("current_roleId", "12", kv.SetOptions{Secure: true, SameSite: kv.SameSiteStrict}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	s2, err := NewFileStore(path, discardLogger())
	if err != nil {
		t.Fatalf("NewFileStore() reopen error = %v", err)
	}
	if v, ok := s2.Get("current_roleId"); !ok || v != "12" {
		t.Errorf("Get() after reopen = (%q, %v), want (12, true)", v, ok)
	}
}

func TestExpiredEntryIsAbsent(t *testing.T) {
	s := newTestStore(t)

	base := time.Now()
	s.now = func() time.Time { return base }

	if err := s.Set("privileges", "[]", kv.SetOptions{TTL: time.Hour}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, ok := s.Get("privileges"); !ok {
		t.Fatal("Get() before expiry = absent")
	}

	s.now = func() time.Time { return base.Add(2 * time.Hour) }
	if _, ok := s.Get("privileges"); ok {
		t.Error("Get() after expiry returned a value")
	}

	t.Run("expired entries dropped on next write", func(t *testing.T) {
		if err := s.Set("theme", "dark", kv.SetOptions{}); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if _, ok := s.jar.Entries["privileges"]; ok {
			t.Error("expired entry still in jar after a write")
		}
	})
}

func TestCorruptedFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "storage.json")
	if err := os.WriteFile(path, []byte("{broken"), 0600); err != nil {
		t.Fatalf("seed corrupted file: %v", err)
	}

	s, err := NewFileStore(path, discardLogger())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if _, ok := s.Get("access_token"); ok {
		t.Error("corrupted file yielded a value")
	}

	// The store is still usable after the reset.
	if err := s.Set("access_token", "tok", kv.SetOptions{}); err != nil {
		t.Errorf("Set() after corruption error = %v", err)
	}
}

func TestFilePermissions(t *testing.T) {
	s := newTestStore(t)
	if err := s.Set("k", "v", kv.SetOptions{}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	info, err := os.Stat(s.Path())
	if err != nil {
		t.Fatalf("stat storage file: %v", err)
	}
	if mode := info.Mode().Perm(); mode&0077 != 0 {
		t.Errorf("storage file mode = %04o, want no group/other access", mode)
	}
}
