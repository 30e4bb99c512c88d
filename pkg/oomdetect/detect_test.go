package oomdetect

import (
	"strings"
	"testing"
)

func TestDetect(t *testing.T) {
	report, ok := Detect("Out of memory: Killed process 4242 (worker) total-vm:102400kB, anon-rss:80000kB")
	if !ok {
		t.Fatal("expected a match")
	}
	if report.PID != 4242 || report.ProcessName != "worker" || report.TotalVMKB != 102400 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestDetectRejectsNonKillLines(t *testing.T) {
	lines := []string{
		"",
		"usb 1-1: new high-speed USB device",
		"worker invoked oom-killer: gfp_mask=0x140cca, order=0",
		"oom_reaper: reaped process 4242 (worker)",
	}
	for _, line := range lines {
		if _, ok := Detect(line); ok {
			t.Errorf("Detect(%q) matched, want no match", line)
		}
	}
}

func TestScan(t *testing.T) {
	log := strings.Join([]string{
		"worker invoked oom-killer: gfp_mask=0x140cca, order=0",
		"Out of memory: Killed process 4242 (worker) total-vm:102400kB",
		"oom_reaper: reaped process 4242 (worker)",
		"usb 1-1: new high-speed USB device",
		"Out of memory: Kill process 515 (java) score 900 or sacrifice child",
	}, "\n")

	reports, err := Scan(strings.NewReader(log))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(reports))
	}
	if reports[0].PID != 4242 || reports[1].PID != 515 {
		t.Fatalf("unexpected pids: %+v", reports)
	}
	if reports[1].ProcessName != "java" {
		t.Fatalf("unexpected comm: %+v", reports[1])
	}
}

func TestScanEmptyInput(t *testing.T) {
	reports, err := Scan(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(reports) != 0 {
		t.Fatalf("got %d reports, want 0", len(reports))
	}
}
