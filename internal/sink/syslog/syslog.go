// Package syslog delivers events to a syslog daemon as single-line
// human-readable messages.
package syslog

import (
	"context"
	"fmt"

	"github.com/RackSec/srslog"

	"github.com/crimson-sun/oomnotify/internal/model"
	"github.com/crimson-sun/oomnotify/internal/sink"
)

const tag = "oomnotify"

func init() {
	sink.Register("syslog", func(cfg sink.Config) (sink.Sink, error) {
		return New(cfg.Extra["proto"], cfg.Extra["server"])
	})
}

// Sink writes events to syslog over a connection held for the sink's
// lifetime.
type Sink struct {
	writer *srslog.Writer
	target string
}

// New connects to the syslog daemon. proto is "unix" (local socket, server
// ignored), "tcp", or "udp"; tcp and udp require server as host:port.
func New(proto, server string) (*Sink, error) {
	var network, raddr string
	switch proto {
	case "unix":
		// empty network makes srslog probe the local syslog sockets
		network, raddr = "", ""
	case "tcp", "udp":
		if server == "" {
			return nil, fmt.Errorf("syslog sink: proto %s requires a server address", proto)
		}
		network, raddr = proto, server
	default:
		return nil, fmt.Errorf("syslog sink: unsupported proto %q", proto)
	}

	w, err := srslog.Dial(network, raddr, srslog.LOG_ERR|srslog.LOG_USER, tag)
	if err != nil {
		return nil, fmt.Errorf("syslog sink: dial %s %s: %w", proto, server, err)
	}
	w.SetFormatter(srslog.RFC3164Formatter)

	target := server
	if proto == "unix" {
		target = "local"
	}
	return &Sink{writer: w, target: target}, nil
}

// Deliver sends the event as one log line at error severity. srslog has no
// context support; the dispatcher's delivery timeout bounds the attempt
// from outside.
func (s *Sink) Deliver(_ context.Context, event model.Event) error {
	if err := s.writer.Err(event.Summary()); err != nil {
		return fmt.Errorf("syslog sink: send to %s: %w", s.target, err)
	}
	return nil
}

func (s *Sink) Name() string { return "syslog" }

func (s *Sink) Close() error {
	return s.writer.Close()
}
