package sink

import (
	"context"

	"github.com/crimson-sun/oomnotify/internal/model"
)

// Sink defines the interface all notification backends must implement.
// A Sink owns its transport state and shares nothing with other sinks;
// Deliver attempts exactly one delivery and reports failure without retrying.
type Sink interface {
	// Deliver offers the event to the backend once.
	Deliver(ctx context.Context, event model.Event) error

	// Name identifies the sink in diagnostics.
	Name() string

	// Close releases the sink's transport state.
	Close() error
}

// Config holds backend-specific connection settings, keyed by well-known
// names in Extra (e.g. "proto"/"server" for syslog, "brokers"/"topic" for
// kafka).
type Config struct {
	Type  string
	Extra map[string]string
}
