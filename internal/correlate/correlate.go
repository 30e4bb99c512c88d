// Package correlate joins a parsed kill record with the process cache to
// build the event delivered to sinks.
package correlate

import (
	"time"

	"github.com/crimson-sun/oomnotify/internal/hostinfo"
	"github.com/crimson-sun/oomnotify/internal/model"
)

// Lookuper answers pid→command-line queries from the current snapshot.
type Lookuper interface {
	Lookup(pid int) (string, bool)
}

// Correlator builds events from kill records. Correlation is a single
// synchronous lookup: no retries and no waiting for a future cache refresh.
// A prompt notification with a missing command line beats a delayed one.
type Correlator struct {
	cache Lookuper
	host  hostinfo.Info
}

// New creates a Correlator over the given cache and host identity.
func New(cache Lookuper, host hostinfo.Info) *Correlator {
	return &Correlator{cache: cache, host: host}
}

// Correlate always succeeds. A victim absent from the cache yields an event
// with CommandLineFound=false, which is an expected outcome, not an error.
func (c *Correlator) Correlate(rec model.KillRecord) model.Event {
	cmdline, found := c.cache.Lookup(rec.PID)
	return model.Event{
		PID:              rec.PID,
		Comm:             rec.Comm,
		CommandLine:      cmdline,
		CommandLineFound: found,
		TotalVMKB:        rec.TotalVMKB,
		Hostname:         c.host.Hostname,
		KernelVersion:    c.host.KernelVersion,
		KernelTime:       rec.KernelTime,
		DetectedAt:       time.Now(),
	}
}
