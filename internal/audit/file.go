package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileLogger appends entries as JSON lines.
type FileLogger struct {
	path string
	mu   sync.Mutex
}

// NewFileLogger constructs a FileLogger. It returns nil for an empty path,
// which Log treats as disabled.
func NewFileLogger(path string) *FileLogger {
	if path == "" {
		return nil
	}
	return &FileLogger{path: path}
}

// Log appends one entry.
func (l *FileLogger) Log(ctx context.Context, entry Entry) error {
	_ = ctx
	if l == nil {
		return nil
	}
	if entry.Action == "" {
		return errors.New("audit: empty action")
	}
	if entry.ID == "" {
		entry.ID = NewID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.PayloadDigest == "" {
		entry.PayloadDigest = DigestJSON(entry.Metadata)
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("audit: encode: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("audit: create dir: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("audit: open: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("audit: write: %w", err)
	}
	return nil
}
