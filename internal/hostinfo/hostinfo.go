// Package hostinfo reads the host identity fields attached to every
// notification event.
package hostinfo

import (
	"os"
	"path/filepath"
	"strings"
)

// Info identifies the host an OOM kill happened on.
type Info struct {
	Hostname      string
	KernelVersion string
}

// Collect gathers host identity from the HOSTNAME environment variable,
// falling back to procfs under mount. Unreadable fields degrade to "N/A"
// rather than failing; the event is still worth delivering without them.
func Collect(mount string) Info {
	return Info{
		Hostname:      hostname(mount),
		KernelVersion: readTrimmed(filepath.Join(mount, "version")),
	}
}

func hostname(mount string) string {
	if h := os.Getenv("HOSTNAME"); h != "" {
		return h
	}
	return readTrimmed(filepath.Join(mount, "sys/kernel/hostname"))
}

func readTrimmed(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "N/A"
	}
	return strings.TrimSpace(string(data))
}
