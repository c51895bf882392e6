package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/tvet-mis/console/internal/port/kv"
)

// FileStore is a file-backed implementation of the client storage
// port. It provides atomic writes (write-tmp-then-rename), automatic
// backups, and file locking (flock for cross-process, mutex for
// in-process). Every Set and Remove is flushed to disk before it
// returns; a Get never touches the disk after the initial load.
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
	jar    *jar
	now    func() time.Time
}

var _ kv.KeyValue = (*FileStore)(nil)

// NewFileStore opens or creates the storage file at path.
// A corrupted jar file is replaced with an empty jar rather than
// failing the boot: client storage is a cache of server-issued state,
// and losing it only forces a fresh login.
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		logger: logger,
		now:    time.Now,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("storage file not found, starting empty", "path", s.path)
			s.jar = newJar()
			return nil
		}
		return fmt.Errorf("read storage file: %w", err)
	}

	// Warn if the file is readable by group or other. Skip on Windows
	// where Unix permission bits are not supported.
	if runtime.GOOS != "windows" {
		if info, statErr := os.Stat(s.path); statErr == nil {
			mode := info.Mode().Perm()
			if mode&0077 != 0 {
				s.logger.Warn("storage file has too-open permissions, should be 0600",
					"path", s.path, "current_mode", fmt.Sprintf("%04o", mode))
			}
		}
	}

	var j jar
	if err := json.Unmarshal(data, &j); err != nil {
		s.logger.Warn("storage file is corrupted, starting empty", "path", s.path, "error", err)
		s.jar = newJar()
		return nil
	}
	if j.Entries == nil {
		j.Entries = make(map[string]Entry)
	}
	s.jar = &j
	return nil
}

// Get returns the value for key. An entry whose expiry has passed is
// treated as absent and lazily dropped from the jar on the next write.
func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.jar.Entries[key]
	if !ok {
		return "", false
	}
	if e.ExpiresAt != nil && !e.ExpiresAt.After(s.now()) {
		return "", false
	}
	return e.Value, true
}

// Set stores the value under key and flushes the jar to disk.
func (s *FileStore) Set(key, value string, opts kv.SetOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := Entry{
		Value:     value,
		Secure:    opts.Secure,
		SameSite:  opts.SameSite,
		UpdatedAt: s.now().UTC(),
	}
	if opts.TTL > 0 {
		exp := s.now().Add(opts.TTL).UTC()
		e.ExpiresAt = &exp
	}
	s.jar.Entries[key] = e
	return s.save()
}

// Remove deletes the key and flushes the jar. Removing an absent key
// is a no-op that still succeeds.
func (s *FileStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jar.Entries[key]; !ok {
		return nil
	}
	delete(s.jar.Entries, key)
	return s.save()
}

// Path returns the configured file path.
func (s *FileStore) Path() string {
	return s.path
}

// save writes the jar to disk. Caller holds s.mu.
//
// The write sequence is:
//  1. Acquire flock on path+".lock"
//  2. Copy current file to path+".bak" (ignored if no current file)
//  3. Drop entries whose expiry has passed
//  4. Marshal the jar as indented JSON
//  5. Write to path+".tmp" with 0600 permissions, fsync, rename
func (s *FileStore) save() error {
	s.jar.UpdatedAt = s.now().UTC()

	lockPath := s.path + ".lock"
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer func() { _ = lockFile.Close() }()

	if err := flockLock(lockFile.Fd()); err != nil {
		return fmt.Errorf("acquire file lock: %w", err)
	}
	defer flockUnlock(lockFile.Fd()) //nolint:errcheck

	if currentData, readErr := os.ReadFile(s.path); readErr == nil {
		bakPath := s.path + ".bak"
		if writeErr := os.WriteFile(bakPath, currentData, 0600); writeErr != nil {
			s.logger.Warn("failed to create backup", "error", writeErr)
		}
	}

	for key, e := range s.jar.Entries {
		if e.ExpiresAt != nil && !e.ExpiresAt.After(s.now()) {
			delete(s.jar.Entries, key)
		}
	}

	data, err := json.MarshalIndent(s.jar, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal storage: %w", err)
	}
	data = append(data, '\n')

	if err := s.writeAtomic(data); err != nil {
		return err
	}

	if err := os.Chmod(s.path, 0600); err != nil {
		s.logger.Warn("failed to set permissions on storage file", "error", err)
	}

	s.logger.Debug("storage saved", "path", s.path)
	return nil
}

// writeAtomic writes data to a temp file, fsyncs it, and renames it
// over the target path. On any error the temp file is cleaned up.
func (s *FileStore) writeAtomic(data []byte) error {
	tmpPath := s.path + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := f.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp to storage: %w", err)
	}
	return nil
}
