// Package audit provides file-based persistence for the access-event
// trail: JSON Lines, one file per day, with retention cleanup at open.
package audit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/tvet-mis/console/internal/domain/audit"
)

// auditFilePattern matches access log filenames: access-YYYY-MM-DD.log
var auditFilePattern = regexp.MustCompile(`^access-(\d{4}-\d{2}-\d{2})\.log$`)

// FileStoreConfig holds configuration for the file-based audit store.
type FileStoreConfig struct {
	// Dir is the directory where audit files are stored.
	Dir string
	// RetentionDays is the number of days to keep audit files (default 30).
	RetentionDays int
}

// FileStore implements audit.Store with one JSONL file per day.
// Appends are synced per record; the client writes a handful of events
// per session, so durability wins over throughput here.
type FileStore struct {
	dir           string
	retentionDays int
	mu            sync.Mutex
	currentFile   *os.File
	currentDate   string
	logger        *slog.Logger
	closed        bool
}

var _ audit.Store = (*FileStore)(nil)

// NewFileStore creates the store. It creates the directory if needed
// and deletes files older than the retention period.
func NewFileStore(cfg FileStoreConfig, logger *slog.Logger) (*FileStore, error) {
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 30
	}

	if err := os.MkdirAll(cfg.Dir, 0700); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}

	s := &FileStore{
		dir:           cfg.Dir,
		retentionDays: cfg.RetentionDays,
		logger:        logger,
	}
	s.runCleanup()
	return s, nil
}

// Append writes one record to today's file, rotating by date as needed.
func (s *FileStore) Append(rec audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("audit store is closed")
	}

	dateStr := rec.Timestamp.UTC().Format("2006-01-02")
	if dateStr != s.currentDate {
		if err := s.rotateLocked(dateStr); err != nil {
			return fmt.Errorf("date rotation: %w", err)
		}
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	if _, err := s.currentFile.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write audit record: %w", err)
	}
	return s.currentFile.Sync()
}

// Close syncs and closes the current file.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.currentFile != nil {
		_ = s.currentFile.Sync()
		err := s.currentFile.Close()
		s.currentFile = nil
		return err
	}
	return nil
}

// rotateLocked closes the current file and opens the one for dateStr.
// Caller holds s.mu.
func (s *FileStore) rotateLocked(dateStr string) error {
	if s.currentFile != nil {
		_ = s.currentFile.Sync()
		_ = s.currentFile.Close()
		s.currentFile = nil
	}

	path := filepath.Join(s.dir, fmt.Sprintf("access-%s.log", dateStr))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open audit file: %w", err)
	}

	s.currentFile = f
	s.currentDate = dateStr
	return nil
}

// runCleanup deletes audit files older than the retention period.
func (s *FileStore) runCleanup() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Error("audit cleanup: failed to read directory", "dir", s.dir, "error", err)
		return
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -s.retentionDays)
	deleted := 0

	for _, e := range entries {
		matches := auditFilePattern.FindStringSubmatch(e.Name())
		if matches == nil {
			continue
		}
		fileDate, err := time.Parse("2006-01-02", matches[1])
		if err != nil {
			continue
		}
		if fileDate.Before(cutoff) {
			if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
				s.logger.Error("audit cleanup: failed to delete file", "file", e.Name(), "error", err)
			} else {
				deleted++
			}
		}
	}

	if deleted > 0 {
		s.logger.Info("audit cleanup completed", "deleted", deleted)
	}
}
