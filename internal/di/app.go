package di

import (
	"context"

	"github.com/momentics/hioload-aio/control"
	"github.com/momentics/hioload-aio/internal/logging"
	"github.com/momentics/hioload-aio/reactor"
)

// ConfigPath is the configuration file the ConfigStore reloads from. Empty
// means environment only.
type ConfigPath string

// TracingShutdown flushes and stops the tracer provider.
type TracingShutdown func(context.Context) error

// App holds the wired application dependencies. Built by InitializeApp.
type App struct {
	// Config is the active configuration with reload support.
	Config *control.ConfigStore

	// Logger is the root structured logger.
	Logger logging.Logger

	// Metrics receives writer and timer outcomes. NopCollector when disabled.
	Metrics control.Collector

	// Loop is the reactor all components are bound to.
	Loop *reactor.Loop

	// Probes exports loop state for debugging.
	Probes *control.DebugProbes

	// TracingShutdown must be called on exit.
	TracingShutdown TracingShutdown
}
