package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/tvet-mis/console/internal/domain/audit"
)

// WriterStore implements audit.Store over an io.Writer (stdout mode).
type WriterStore struct {
	mu sync.Mutex
	w  io.Writer
}

var _ audit.Store = (*WriterStore)(nil)

// NewWriterStore creates a store writing JSON Lines to w.
func NewWriterStore(w io.Writer) *WriterStore {
	return &WriterStore{w: w}
}

// Append writes one record as a JSON line.
func (s *WriterStore) Append(rec audit.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.w.Write(append(data, '\n'))
	return err
}

// Close is a no-op; the writer is owned by the caller.
func (s *WriterStore) Close() error { return nil }
