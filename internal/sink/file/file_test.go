package file

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/crimson-sun/oomnotify/internal/model"
)

func testEvent(pid int) model.Event {
	return model.Event{
		PID:              pid,
		Comm:             "worker",
		CommandLine:      "worker --queue=default",
		CommandLineFound: true,
		TotalVMKB:        102400,
		Hostname:         "node-1",
		KernelVersion:    "6.8.0",
		KernelTime:       time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		DetectedAt:       time.Date(2026, 3, 14, 9, 0, 1, 0, time.UTC),
	}
}

func TestDeliverAppendsNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oom.ndjson")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, pid := range []int{4242, 9999} {
		if err := s.Deliver(context.Background(), testEvent(pid)); err != nil {
			t.Fatalf("Deliver(%d): %v", pid, err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()

	var pids []int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev model.Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("line is not valid JSON: %v", err)
		}
		pids = append(pids, ev.PID)
	}
	if len(pids) != 2 || pids[0] != 4242 || pids[1] != 9999 {
		t.Fatalf("got pids %v, want [4242 9999]", pids)
	}
}

func TestDeliverFlushesImmediately(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oom.ndjson")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	if err := s.Deliver(context.Background(), testEvent(4242)); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	// Visible on disk before Close.
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("event not flushed to disk before Close")
	}
}

func TestRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oom.ndjson")
	s, err := New(path, WithMaxSize(200))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Each event marshals to well over 100 bytes, so a few deliveries
	// must trigger at least one rotation.
	for i := 0; i < 5; i++ {
		if err := s.Deliver(context.Background(), testEvent(1000+i)); err != nil {
			t.Fatalf("Deliver: %v", err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Fatalf("expected rotated file %s.1: %v", path, err)
	}
}

func TestAppendsToExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oom.ndjson")
	if err := os.WriteFile(path, []byte("{\"pid\":1}\n"), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Deliver(context.Background(), testEvent(4242)); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := countLines(data); got != 2 {
		t.Fatalf("got %d lines, want 2 (existing line preserved)", got)
	}
}

func TestNewRequiresPath(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func countLines(data []byte) int {
	n := 0
	for _, b := range data {
		if b == '\n' {
			n++
		}
	}
	return n
}
