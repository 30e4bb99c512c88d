// Package proccache maintains a continuously refreshed snapshot of every
// live process's command line.
//
// The kernel gives no warning before an OOM kill, and by the time the kill
// shows up in the log the victim's /proc entry is gone. The only way to
// report the victim's command line is to already have it, so the cache
// scans the whole process table on a fixed interval. Coverage is bounded by
// that interval: a process that starts and is killed inside one refresh
// window is simply not recoverable, and lookups for it report absence.
package proccache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/procfs"
)

// Entry is one captured pid→command-line mapping.
type Entry struct {
	PID         int
	CommandLine string // argv joined with single spaces
	CapturedAt  time.Time
}

// snapshot is a complete point-in-time process table. Never mutated after
// publication; refreshes build a fresh one and swap the pointer.
type snapshot struct {
	entries map[int]Entry
}

// Cache holds the current snapshot and the refresh settings.
// Lookup is lock-free and safe concurrently with Run.
type Cache struct {
	fs       procfs.FS
	interval time.Duration
	current  atomic.Pointer[snapshot]
}

// New creates a Cache reading from the procfs mounted at mount.
// The cache starts empty; call Refresh or Run to fill it.
func New(mount string, interval time.Duration) (*Cache, error) {
	fs, err := procfs.NewFS(mount)
	if err != nil {
		return nil, fmt.Errorf("proccache: open %s: %w", mount, err)
	}
	c := &Cache{fs: fs, interval: interval}
	c.current.Store(&snapshot{entries: map[int]Entry{}})
	return c, nil
}

// Refresh scans the full process table and atomically publishes a new
// snapshot. Processes that exit between enumeration and argv read, and
// kernel threads (which have no argv), are omitted without error. Readers
// see the previous snapshot until the new one is complete.
func (c *Cache) Refresh() error {
	procs, err := c.fs.AllProcs()
	if err != nil {
		return fmt.Errorf("proccache: list processes: %w", err)
	}

	now := time.Now()
	next := make(map[int]Entry, len(procs))
	for _, p := range procs {
		argv, err := p.CmdLine()
		if err != nil {
			// gone before we could read it
			continue
		}
		if len(argv) == 0 {
			continue
		}
		next[p.PID] = Entry{
			PID:         p.PID,
			CommandLine: strings.Join(argv, " "),
			CapturedAt:  now,
		}
	}

	c.current.Store(&snapshot{entries: next})
	return nil
}

// Run performs an immediate scan and then refreshes on the configured
// interval until the context is cancelled. A single goroutine does all
// scanning, so refresh cycles never overlap.
func (c *Cache) Run(ctx context.Context) {
	if err := c.Refresh(); err != nil {
		slog.Warn("initial process scan failed", "error", err)
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Refresh(); err != nil {
				slog.Warn("process scan failed", "error", err)
			} else {
				slog.Debug("process snapshot refreshed", "processes", c.Len())
			}
		}
	}
}

// Lookup returns the cached command line for pid from the last fully built
// snapshot. Non-blocking; a refresh in progress is never observed partially.
func (c *Cache) Lookup(pid int) (string, bool) {
	entry, ok := c.current.Load().entries[pid]
	if !ok {
		return "", false
	}
	return entry.CommandLine, true
}

// Len reports the number of processes in the current snapshot.
func (c *Cache) Len() int {
	return len(c.current.Load().entries)
}
