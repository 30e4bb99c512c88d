package kmsg

import (
	"context"
	"testing"
	"time"

	"github.com/euank/go-kmsg-parser/kmsgparser"
)

// fakeParser feeds canned messages through the kmsgparser.Parser interface.
type fakeParser struct {
	msgs   chan kmsgparser.Message
	sought bool
	closed bool
}

func newFakeParser() *fakeParser {
	return &fakeParser{msgs: make(chan kmsgparser.Message, 16)}
}

func (f *fakeParser) Parse() <-chan kmsgparser.Message { return f.msgs }
func (f *fakeParser) SeekEnd() error                   { f.sought = true; return nil }
func (f *fakeParser) SetLogger(kmsgparser.Logger)      {}
func (f *fakeParser) Close() error {
	f.closed = true
	close(f.msgs)
	return nil
}

func TestLinesDeliversMessages(t *testing.T) {
	fake := newFakeParser()
	tailer := newTailerWithParser(fake)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lines, err := tailer.Lines(ctx)
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}

	kernelTime := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)
	fake.msgs <- kmsgparser.Message{
		Message:   "Out of memory: Killed process 4242 (worker) total-vm:102400kB",
		Timestamp: kernelTime,
	}

	select {
	case line := <-lines:
		if line.Text != "Out of memory: Killed process 4242 (worker) total-vm:102400kB" {
			t.Errorf("unexpected text: %q", line.Text)
		}
		if !line.KernelTime.Equal(kernelTime) {
			t.Errorf("KernelTime = %v, want %v", line.KernelTime, kernelTime)
		}
		if line.ReadAt.IsZero() {
			t.Error("ReadAt not stamped")
		}
	case <-time.After(time.Second):
		t.Fatal("no line delivered")
	}
}

func TestLinesClosesOnDeviceClose(t *testing.T) {
	fake := newFakeParser()
	tailer := newTailerWithParser(fake)

	lines, err := tailer.Lines(context.Background())
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}

	if err := tailer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case _, ok := <-lines:
		if ok {
			t.Error("expected closed channel, got a line")
		}
	case <-time.After(time.Second):
		t.Fatal("channel did not close after device close")
	}
}

func TestLinesClosesOnCancel(t *testing.T) {
	fake := newFakeParser()
	tailer := newTailerWithParser(fake)

	ctx, cancel := context.WithCancel(context.Background())
	lines, err := tailer.Lines(ctx)
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}

	cancel()

	select {
	case _, ok := <-lines:
		if ok {
			t.Error("expected closed channel, got a line")
		}
	case <-time.After(time.Second):
		t.Fatal("channel did not close after cancel")
	}
}

func TestLinesIsSingleUse(t *testing.T) {
	fake := newFakeParser()
	tailer := newTailerWithParser(fake)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := tailer.Lines(ctx); err != nil {
		t.Fatalf("first Lines: %v", err)
	}
	if _, err := tailer.Lines(ctx); err == nil {
		t.Fatal("second Lines should fail")
	}
}
