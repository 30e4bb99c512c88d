package oomdetect

import (
	"bufio"
	"fmt"
	"io"

	"github.com/crimson-sun/oomnotify/internal/model"
	"github.com/crimson-sun/oomnotify/internal/oomparse"
)

// Detect reports whether line is a kernel OOM kill report and, if so,
// returns the extracted details. Lines that merely mention the OOM
// killer (stack traces, memory dumps, oom_reaper confirmations) do not
// match.
func Detect(line string) (KillReport, bool) {
	rec, ok := oomparse.Parse(model.RawLine{Text: line})
	if !ok {
		return KillReport{}, false
	}
	return KillReport{
		PID:         rec.PID,
		ProcessName: rec.Comm,
		TotalVMKB:   rec.TotalVMKB,
	}, true
}

// Scan reads r line by line and returns every OOM kill report found.
// Malformed or unrelated lines are skipped, never reported as errors.
func Scan(r io.Reader) ([]KillReport, error) {
	var reports []KillReport
	scanner := bufio.NewScanner(r)
	// Kernel lines can exceed bufio's default 64KB token limit when a
	// dump includes long cgroup paths.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if report, ok := Detect(scanner.Text()); ok {
			reports = append(reports, report)
		}
	}
	if err := scanner.Err(); err != nil {
		return reports, fmt.Errorf("oomdetect: scan: %w", err)
	}
	return reports, nil
}
