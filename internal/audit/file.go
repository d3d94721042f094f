package audit

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// FileSink appends events to a plain text log, one `<unix_timestamp> <text>`
// line per event. A mutex serializes writers so concurrent appends never
// interleave partial records.
type FileSink struct {
	mu   sync.Mutex
	file *os.File
}

// NewFileSink opens (or creates) the audit log for appending.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return &FileSink{file: f}, nil
}

// Append writes one event as a single line.
func (s *FileSink) Append(_ context.Context, event Event) error {
	line := fmt.Sprintf("%d %s\n", event.Timestamp.Unix(), event.Text())

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.WriteString(line); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// Close closes the underlying log file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
