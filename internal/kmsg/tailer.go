// Package kmsg streams messages from the kernel ring buffer (/dev/kmsg).
//
// The device is opened once for the daemon's lifetime and reads block until
// the kernel produces a new message; there is no polling. Messages written
// before the tailer was opened are skipped, so every line the tailer emits
// happened while the daemon was watching.
package kmsg

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/euank/go-kmsg-parser/kmsgparser"

	"github.com/crimson-sun/oomnotify/internal/model"
)

// Source is the pipeline's view of the kernel log: a lazy, infinite,
// non-restartable stream of raw lines.
type Source interface {
	Lines(ctx context.Context) (<-chan model.RawLine, error)
	Close() error
}

// Tailer reads /dev/kmsg and implements Source.
type Tailer struct {
	parser  kmsgparser.Parser
	started atomic.Bool
}

var _ Source = (*Tailer)(nil)

// NewTailer opens the kernel ring buffer and seeks past its historical
// contents. An error here is fatal to the daemon: without the device it
// cannot observe OOM kills at all.
func NewTailer() (*Tailer, error) {
	parser, err := kmsgparser.NewParser()
	if err != nil {
		return nil, fmt.Errorf("kmsg: open ring buffer: %w", err)
	}
	parser.SetLogger(slogAdapter{})
	if err := parser.SeekEnd(); err != nil {
		parser.Close()
		return nil, fmt.Errorf("kmsg: seek past historical messages: %w", err)
	}
	return &Tailer{parser: parser}, nil
}

// newTailerWithParser wires an arbitrary parser in place of the device.
func newTailerWithParser(p kmsgparser.Parser) *Tailer {
	return &Tailer{parser: p}
}

// Lines starts the read loop and returns the line channel. The channel
// closes when the context is cancelled or the device is closed. A Tailer
// streams once; calling Lines a second time is an error.
func (t *Tailer) Lines(ctx context.Context) (<-chan model.RawLine, error) {
	if !t.started.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("kmsg: tailer already streaming")
	}

	out := make(chan model.RawLine, 64)
	msgs := t.parser.Parse()

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				line := model.RawLine{
					Text:       msg.Message,
					KernelTime: msg.Timestamp,
					ReadAt:     time.Now(),
				}
				select {
				case out <- line:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close releases the device. This also unblocks a read loop waiting on a
// quiet ring buffer.
func (t *Tailer) Close() error {
	return t.parser.Close()
}

// slogAdapter bridges kmsgparser's internal logging onto slog.
type slogAdapter struct{}

func (slogAdapter) Infof(format string, args ...interface{}) {
	slog.Info(fmt.Sprintf(format, args...), "component", "kmsg")
}

func (slogAdapter) Warningf(format string, args ...interface{}) {
	slog.Warn(fmt.Sprintf(format, args...), "component", "kmsg")
}

func (slogAdapter) Errorf(format string, args ...interface{}) {
	slog.Error(fmt.Sprintf(format, args...), "component", "kmsg")
}
