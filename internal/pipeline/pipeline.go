// Package pipeline wires the kernel log source, the OOM parser, the
// correlator, and the dispatcher into the daemon's processing loop.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/crimson-sun/oomnotify/internal/correlate"
	"github.com/crimson-sun/oomnotify/internal/kmsg"
	"github.com/crimson-sun/oomnotify/internal/model"
	"github.com/crimson-sun/oomnotify/internal/oomparse"
	"github.com/crimson-sun/oomnotify/internal/sink/dispatch"
)

// Pipeline connects a kernel log source, correlator, and dispatcher.
type Pipeline struct {
	source     kmsg.Source
	correlator *correlate.Correlator
	dispatcher *dispatch.Dispatcher
}

// New creates a Pipeline from the given components.
func New(src kmsg.Source, corr *correlate.Correlator, disp *dispatch.Dispatcher) *Pipeline {
	return &Pipeline{
		source:     src,
		correlator: corr,
		dispatcher: disp,
	}
}

// Run consumes kernel log lines until the context is cancelled or the
// source channel closes. Lines that are not OOM kill reports are
// discarded; each kill becomes an Event handed to the dispatcher.
// Dispatch failures never stop the loop.
func (p *Pipeline) Run(ctx context.Context) error {
	ch, err := p.source.Lines(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-ch:
			if !ok {
				return nil
			}
			p.handle(ctx, line)
		}
	}
}

func (p *Pipeline) handle(ctx context.Context, line model.RawLine) {
	rec, ok := oomparse.Parse(line)
	if !ok {
		return
	}
	event := p.correlator.Correlate(rec)
	slog.Info("oom kill detected",
		"pid", event.PID,
		"process", event.Comm,
		"cmdline_found", event.CommandLineFound,
		"total_vm_kb", event.TotalVMKB,
	)
	p.dispatcher.Dispatch(ctx, event)
}
