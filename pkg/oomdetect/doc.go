// Package oomdetect recognizes kernel OOM kill reports in log text.
//
// Quick start:
//
//	report, ok := oomdetect.Detect("Out of memory: Killed process 4242 (worker) total-vm:102400kB")
//	if ok {
//	    fmt.Println(report.PID, report.ProcessName) // 4242 worker
//	}
//
// For offline analysis of saved kernel logs, Scan walks an io.Reader
// line by line:
//
//	reports, err := oomdetect.Scan(file)
//
// All functions are pure and safe for concurrent use.
package oomdetect
