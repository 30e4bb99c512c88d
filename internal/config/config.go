package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all oomnotify configuration.
type Config struct {
	Cache    CacheConfig
	Dispatch DispatchConfig
	Log      LogConfig
	Sinks    []SinkConfig
}

// CacheConfig holds process-snapshot cache settings.
type CacheConfig struct {
	Refresh time.Duration // interval between full process-table scans
	Mount   string        // procfs mount point, overridable for tests
}

// DispatchConfig holds notification fan-out settings.
type DispatchConfig struct {
	MaxInFlight  int           // cap on concurrently in-flight deliveries
	DrainTimeout time.Duration // grace period for in-flight deliveries on shutdown
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	Level string // "debug", "info", "warn", "error"
	JSON  bool
}

// SinkConfig describes one fully-specified notification backend.
// Extra carries backend-specific settings keyed by well-known names.
type SinkConfig struct {
	Type  string
	Extra map[string]string
}

// Load reads configuration from environment variables with sensible defaults.
// A sink appears in Sinks only when every setting it requires is present;
// zero configured sinks is a valid configuration.
func Load() Config {
	return Config{
		Cache: CacheConfig{
			Refresh: getenvDuration("OOMNOTIFY_PROC_REFRESH", time.Second),
			Mount:   getenv("OOMNOTIFY_PROC_MOUNT", "/proc"),
		},
		Dispatch: DispatchConfig{
			MaxInFlight:  getenvInt("OOMNOTIFY_MAX_INFLIGHT", 8),
			DrainTimeout: getenvDuration("OOMNOTIFY_DRAIN_TIMEOUT", 5*time.Second),
		},
		Log: LogConfig{
			Level: getenv("OOMNOTIFY_LOG_LEVEL", "info"),
			JSON:  os.Getenv("OOMNOTIFY_LOG_JSON") == "true",
		},
		Sinks: loadSinks(),
	}
}

// loadSinks builds a descriptor for each backend whose required settings are
// all present. Partially configured backends are skipped.
func loadSinks() []SinkConfig {
	var sinks []SinkConfig

	proto := os.Getenv("OOMNOTIFY_SYSLOG_PROTO")
	server := os.Getenv("OOMNOTIFY_SYSLOG_SERVER")
	// The unix protocol talks to the local syslog socket and ignores the
	// server address; tcp and udp require one.
	if proto == "unix" || (proto != "" && server != "") {
		sinks = append(sinks, SinkConfig{
			Type:  "syslog",
			Extra: map[string]string{"proto": proto, "server": server},
		})
	}

	esURL := os.Getenv("OOMNOTIFY_ELASTICSEARCH_URL")
	esIndex := os.Getenv("OOMNOTIFY_ELASTICSEARCH_INDEX")
	if esURL != "" && esIndex != "" {
		sinks = append(sinks, SinkConfig{
			Type:  "elasticsearch",
			Extra: map[string]string{"url": esURL, "index": esIndex},
		})
	}

	brokers := os.Getenv("OOMNOTIFY_KAFKA_BROKERS")
	topic := os.Getenv("OOMNOTIFY_KAFKA_TOPIC")
	if brokers != "" && topic != "" {
		sinks = append(sinks, SinkConfig{
			Type:  "kafka",
			Extra: map[string]string{"brokers": brokers, "topic": topic},
		})
	}

	webhook := os.Getenv("OOMNOTIFY_SLACK_WEBHOOK")
	if webhook != "" {
		extra := map[string]string{"webhook": webhook}
		if ch := os.Getenv("OOMNOTIFY_SLACK_CHANNEL"); ch != "" {
			extra["channel"] = ch
		}
		sinks = append(sinks, SinkConfig{Type: "slack", Extra: extra})
	}

	if path := os.Getenv("OOMNOTIFY_FILE_PATH"); path != "" {
		extra := map[string]string{"path": path}
		if max := os.Getenv("OOMNOTIFY_FILE_MAX_SIZE"); max != "" {
			extra["max_size"] = max
		}
		sinks = append(sinks, SinkConfig{Type: "file", Extra: extra})
	}

	return sinks
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
