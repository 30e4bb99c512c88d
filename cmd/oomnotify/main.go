package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/crimson-sun/oomnotify/internal/config"
	"github.com/crimson-sun/oomnotify/internal/correlate"
	"github.com/crimson-sun/oomnotify/internal/hostinfo"
	"github.com/crimson-sun/oomnotify/internal/kmsg"
	"github.com/crimson-sun/oomnotify/internal/logging"
	"github.com/crimson-sun/oomnotify/internal/pipeline"
	"github.com/crimson-sun/oomnotify/internal/proccache"
	"github.com/crimson-sun/oomnotify/internal/sink"
	"github.com/crimson-sun/oomnotify/internal/sink/dispatch"

	// Register sink implementations.
	_ "github.com/crimson-sun/oomnotify/internal/sink/elasticsearch"
	_ "github.com/crimson-sun/oomnotify/internal/sink/file"
	_ "github.com/crimson-sun/oomnotify/internal/sink/kafka"
	_ "github.com/crimson-sun/oomnotify/internal/sink/slack"
	_ "github.com/crimson-sun/oomnotify/internal/sink/syslog"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.Log.JSON, logging.ParseLevel(cfg.Log.Level))

	host := hostinfo.Collect(cfg.Cache.Mount)

	// Process-snapshot cache.
	cache, err := proccache.New(cfg.Cache.Mount, cfg.Cache.Refresh)
	if err != nil {
		log.Fatalf("failed to open %s: %v", cfg.Cache.Mount, err)
	}

	// Kernel log source. Without /dev/kmsg there is nothing to watch.
	tailer, err := kmsg.NewTailer()
	if err != nil {
		log.Fatalf("failed to open kernel log: %v", err)
	}
	defer tailer.Close()

	// Notification backends.
	sinks, err := sink.Build(sinkConfigs(cfg.Sinks))
	if err != nil {
		log.Fatalf("failed to build sinks: %v", err)
	}

	disp := dispatch.New(sinks,
		dispatch.WithMaxInFlight(cfg.Dispatch.MaxInFlight),
		dispatch.WithDrainTimeout(cfg.Dispatch.DrainTimeout),
		dispatch.WithOnError(func(name string, err error) {
			slog.Error("notification delivery failed", "sink", name, "error", err)
		}),
	)
	defer func() {
		if err := disp.Close(); err != nil {
			slog.Error("shutdown", "error", err)
		}
	}()

	// Set up graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "\nreceived %v, shutting down...\n", sig)
		cancel()
	}()

	go cache.Run(ctx)

	p := pipeline.New(tailer, correlate.New(cache, host), disp)

	slog.Info("oomnotify starting",
		"hostname", host.Hostname,
		"kernel", host.KernelVersion,
		"sinks", sinkNames(sinks),
	)
	if err := p.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("pipeline error: %v", err)
	}
}

func sinkConfigs(cfgs []config.SinkConfig) []sink.Config {
	out := make([]sink.Config, 0, len(cfgs))
	for _, c := range cfgs {
		out = append(out, sink.Config{Type: c.Type, Extra: c.Extra})
	}
	return out
}

func sinkNames(sinks []sink.Sink) string {
	if len(sinks) == 0 {
		return "none"
	}
	names := make([]string, 0, len(sinks))
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	return strings.Join(names, ",")
}
