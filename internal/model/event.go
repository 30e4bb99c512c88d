package model

import (
	"fmt"
	"time"
)

// KillRecord is the parsed form of a kernel OOM-kill log line.
// Immutable once constructed.
type KillRecord struct {
	PID        int
	Comm       string // process name as printed by the kernel, may be truncated
	TotalVMKB  int64  // total-vm figure in kB; 0 when the line omits it
	KernelTime time.Time
}

// Event is oomnotify's output type — a kill record joined with the cached
// command line of the victim, plus host metadata. Shared read-only by all
// sinks during fan-out.
type Event struct {
	PID              int       `json:"pid"`
	Comm             string    `json:"process_name"`
	CommandLine      string    `json:"cmdline,omitempty"`
	CommandLineFound bool      `json:"cmdline_found"`
	TotalVMKB        int64     `json:"total_vm_kb,omitempty"`
	Hostname         string    `json:"hostname"`
	KernelVersion    string    `json:"kernel_version"`
	KernelTime       time.Time `json:"kernel_time"`
	DetectedAt       time.Time `json:"detected_at"`
}

// Summary renders the event as a single human-readable line. Used by the
// syslog and slack sinks and for diagnostic logging.
func (e Event) Summary() string {
	cmdline := e.CommandLine
	if !e.CommandLineFound {
		cmdline = "(not captured)"
	}
	return fmt.Sprintf("OOM kill on %s: process %q (pid %d) total-vm:%dkB cmdline: %s",
		e.Hostname, e.Comm, e.PID, e.TotalVMKB, cmdline)
}
