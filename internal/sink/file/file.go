// Package file appends events to a local NDJSON file — an audit trail that
// survives when every remote backend is down.
package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/crimson-sun/oomnotify/internal/model"
	"github.com/crimson-sun/oomnotify/internal/sink"
)

const defaultBufSize = 4 * 1024

func init() {
	sink.Register("file", func(cfg sink.Config) (sink.Sink, error) {
		var opts []Option
		if raw := cfg.Extra["max_size"]; raw != "" {
			max, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("file sink: invalid max_size %q: %w", raw, err)
			}
			opts = append(opts, WithMaxSize(max))
		}
		return New(cfg.Extra["path"], opts...)
	})
}

// Option configures a file Sink.
type Option func(*Sink)

// WithMaxSize sets the file size (bytes) at which rotation triggers.
// 0 (default) disables rotation.
func WithMaxSize(bytes int64) Option {
	return func(s *Sink) { s.maxSize = bytes }
}

// Sink writes NDJSON with size-based rotation. Each event is flushed
// immediately: OOM kills are rare and the line must hit disk before a
// possible daemon death under the same memory pressure.
type Sink struct {
	mu      sync.Mutex
	w       *bufio.Writer
	f       *os.File
	path    string
	maxSize int64 // 0 = no rotation
	written int64
}

// New creates a file sink appending to the given path.
func New(path string, opts ...Option) (*Sink, error) {
	if path == "" {
		return nil, fmt.Errorf("file sink: path is required")
	}
	s := &Sink{path: path}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.openFile(); err != nil {
		return nil, err
	}
	return s, nil
}

// Deliver JSON-encodes the event and appends it as one line.
func (s *Sink) Deliver(_ context.Context, event model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("file sink: marshal: %w", err)
	}
	data = append(data, '\n')

	if s.maxSize > 0 && s.written+int64(len(data)) > s.maxSize {
		if err := s.rotate(); err != nil {
			return fmt.Errorf("file sink: rotate: %w", err)
		}
	}

	n, err := s.w.Write(data)
	s.written += int64(n)
	if err != nil {
		return fmt.Errorf("file sink: write: %w", err)
	}
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("file sink: flush: %w", err)
	}
	return nil
}

func (s *Sink) Name() string { return "file" }

// Close flushes the buffer and closes the file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return fmt.Errorf("file sink: flush: %w", err)
	}
	return s.f.Close()
}

func (s *Sink) openFile() error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("file sink: open %s: %w", s.path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("file sink: stat %s: %w", s.path, err)
	}
	s.f = f
	s.w = bufio.NewWriterSize(f, defaultBufSize)
	s.written = info.Size()
	return nil
}

// rotate closes the current file, renames it to {path}.1 (shifting existing
// rotated files), and opens a new one.
func (s *Sink) rotate() error {
	if err := s.w.Flush(); err != nil {
		return err
	}
	if err := s.f.Close(); err != nil {
		return err
	}

	for i := 9; i >= 1; i-- {
		from := fmt.Sprintf("%s.%d", s.path, i)
		to := fmt.Sprintf("%s.%d", s.path, i+1)
		os.Rename(from, to) // ignore errors — file may not exist
	}
	if err := os.Rename(s.path, s.path+".1"); err != nil {
		return err
	}

	s.written = 0
	return s.openFile()
}
