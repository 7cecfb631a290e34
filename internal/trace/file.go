package trace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// File appends "<time> D/<tag>: <text>" lines to a trace file. Write errors
// are kept and reported by Err and Close; Trace itself never fails.
type File struct {
	mu   sync.Mutex
	f    *os.File
	path string
	now  func() time.Time
	err  error
}

// OpenFile creates parent directories and opens path for appending.
func OpenFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create trace directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	return &File{f: f, path: path, now: time.Now}, nil
}

// Path returns the file location.
func (t *File) Path() string { return t.path }

func (t *File) Trace(tag, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.f == nil || t.err != nil {
		return
	}
	ts := t.now().UTC().Format("2006-01-02T15:04:05.000Z")
	if _, err := fmt.Fprintf(t.f, "%s D/%s: %s\n", ts, tag, text); err != nil {
		t.err = err
	}
}

// Err returns the first write error, if any.
func (t *File) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Close closes the file and returns the first write or close error.
func (t *File) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.f == nil {
		return t.err
	}
	cerr := t.f.Close()
	t.f = nil
	if t.err != nil {
		return t.err
	}
	return cerr
}
