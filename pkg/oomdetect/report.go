package oomdetect

// KillReport describes one OOM kill extracted from kernel log text.
// This is the stable public type — internal representations may evolve
// independently without breaking consumers.
type KillReport struct {
	PID         int    `json:"pid"`                   // Process ID the kernel reported
	ProcessName string `json:"process_name"`          // Kernel comm field (max 15 chars)
	TotalVMKB   int64  `json:"total_vm_kb,omitempty"` // Victim's total virtual memory, 0 if absent
}
