// Package dispatch fans events out to every configured sink.
//
// Deliveries are concurrent, independent, and fire-and-forget with respect
// to the pipeline: one sink's failure never reaches another sink or the
// pipeline that produced the event. The only coupling back to the caller is
// a cap on in-flight deliveries, which bounds memory under a burst of kills.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/crimson-sun/oomnotify/internal/model"
	"github.com/crimson-sun/oomnotify/internal/sink"
)

const (
	defaultMaxInFlight     = 8
	defaultDrainTimeout    = 5 * time.Second
	defaultDeliveryTimeout = 10 * time.Second
)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMaxInFlight caps concurrently in-flight deliveries. Default: 8.
func WithMaxInFlight(n int) Option {
	return func(d *Dispatcher) { d.maxInFlight = n }
}

// WithDrainTimeout sets how long Close waits for in-flight deliveries.
// Default: 5s.
func WithDrainTimeout(t time.Duration) Option {
	return func(d *Dispatcher) { d.drainTimeout = t }
}

// WithDeliveryTimeout bounds a single delivery attempt. Default: 10s.
func WithDeliveryTimeout(t time.Duration) Option {
	return func(d *Dispatcher) { d.deliveryTimeout = t }
}

// WithOnError sets the callback invoked when a sink's delivery fails.
// Default: logs a warning via slog.
func WithOnError(f func(sinkName string, err error)) Option {
	return func(d *Dispatcher) { d.errFunc = f }
}

// Dispatcher delivers events to a fixed set of sinks.
type Dispatcher struct {
	sinks           []sink.Sink
	sem             chan struct{}
	wg              sync.WaitGroup
	maxInFlight     int
	drainTimeout    time.Duration
	deliveryTimeout time.Duration
	errFunc         func(string, error)
	closeOnce       sync.Once
}

// New creates a Dispatcher over the given sinks. Zero sinks is valid;
// Dispatch becomes a no-op.
func New(sinks []sink.Sink, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sinks:           sinks,
		maxInFlight:     defaultMaxInFlight,
		drainTimeout:    defaultDrainTimeout,
		deliveryTimeout: defaultDeliveryTimeout,
		errFunc: func(name string, err error) {
			slog.Warn("delivery failed", "sink", name, "error", err)
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	d.sem = make(chan struct{}, d.maxInFlight)
	return d
}

// Dispatch offers the event to every sink, each in its own goroutine.
// Returns as soon as all deliveries are started; it only blocks while the
// in-flight cap is exhausted (or the context is cancelled while waiting).
//
// A delivery in flight is never cancelled mid-attempt: each gets its own
// timeout-bounded context detached from the pipeline's, so shutdown gives
// started deliveries their grace period instead of killing them.
func (d *Dispatcher) Dispatch(ctx context.Context, event model.Event) {
	for _, s := range d.sinks {
		select {
		case d.sem <- struct{}{}:
		case <-ctx.Done():
			return
		}

		d.wg.Add(1)
		go func(s sink.Sink) {
			defer d.wg.Done()
			defer func() { <-d.sem }()

			dctx, cancel := context.WithTimeout(context.Background(), d.deliveryTimeout)
			defer cancel()

			if err := s.Deliver(dctx, event); err != nil {
				d.errFunc(s.Name(), err)
				return
			}
			slog.Debug("event delivered", "sink", s.Name(), "pid", event.PID)
		}(s)
	}
}

// Close waits for in-flight deliveries up to the drain timeout, then closes
// every sink, collecting errors.
func (d *Dispatcher) Close() error {
	var errs []error
	d.closeOnce.Do(func() {
		done := make(chan struct{})
		go func() {
			d.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(d.drainTimeout):
			slog.Warn("dispatch drain timed out, abandoning in-flight deliveries")
		}

		for _, s := range d.sinks {
			if err := s.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}
