// Package oomparse recognizes kernel OOM-kill messages and extracts the
// victim's pid, comm name, and memory figure.
//
// The kernel's wording has shifted across versions:
//
//	Out of memory: Killed process 4242 (worker) total-vm:102400kB, anon-rss:98304kB, ...
//	Out of memory: Kill process 4242 (worker) score 856 or sacrifice child
//	Memory cgroup out of memory: Killed process 4242 (worker) total-vm:102400kB, ...
//
// The parser tolerates all of these; a line carrying the marker but no
// extractable victim is discarded with a diagnostic, never an abort.
package oomparse

import (
	"log/slog"
	"regexp"
	"strconv"

	"github.com/crimson-sun/oomnotify/internal/model"
)

var (
	markerPattern = regexp.MustCompile(`(?i)out of memory:`)
	victimPattern = regexp.MustCompile(`(?i)kill(?:ed)? process (\d+) \(([^)]+)\)`)
	totalPattern  = regexp.MustCompile(`total-vm:(\d+)kB`)
)

var defaultParser = New()

// Parse applies the package-level default Parser.
func Parse(line model.RawLine) (model.KillRecord, bool) {
	return defaultParser.Parse(line)
}

// Parser turns raw kernel log lines into kill records.
// Stateless and safe for concurrent use.
type Parser struct{}

// New creates a Parser.
func New() *Parser {
	return &Parser{}
}

// Parse returns the kill record for an OOM-kill line, or ok=false for lines
// that are not OOM events or cannot be fully extracted. Parsing the same
// line twice yields identical records.
func (p *Parser) Parse(line model.RawLine) (model.KillRecord, bool) {
	if !markerPattern.MatchString(line.Text) {
		return model.KillRecord{}, false
	}

	m := victimPattern.FindStringSubmatch(line.Text)
	if m == nil {
		slog.Warn("oom marker without victim fields, discarding line", "line", line.Text)
		return model.KillRecord{}, false
	}

	pid, err := strconv.Atoi(m[1])
	if err != nil {
		slog.Warn("oom victim pid not parseable, discarding line", "pid", m[1], "error", err)
		return model.KillRecord{}, false
	}

	// total-vm is optional; some kernel variants omit it.
	var totalKB int64
	if tm := totalPattern.FindStringSubmatch(line.Text); tm != nil {
		totalKB, err = strconv.ParseInt(tm[1], 10, 64)
		if err != nil {
			slog.Warn("oom total-vm not parseable, discarding line", "total_vm", tm[1], "error", err)
			return model.KillRecord{}, false
		}
	}

	return model.KillRecord{
		PID:        pid,
		Comm:       m[2],
		TotalVMKB:  totalKB,
		KernelTime: line.KernelTime,
	}, true
}
