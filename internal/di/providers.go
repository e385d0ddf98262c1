package di

import (
	"github.com/momentics/hioload-aio/control"
	"github.com/momentics/hioload-aio/internal/logging"
	"github.com/momentics/hioload-aio/internal/tracing"
	"github.com/momentics/hioload-aio/reactor"
)

// ProvideConfigStore wraps the loaded configuration.
func ProvideConfigStore(cfg *control.Config, path ConfigPath) *control.ConfigStore {
	return control.NewConfigStore(cfg, string(path))
}

// ProvideLogger builds the root logger from the logging section.
func ProvideLogger(cfg *control.Config) logging.Logger {
	if cfg == nil {
		return logging.NewLogger(logging.DefaultConfig())
	}
	return logging.NewLogger(cfg.Logging.LoggerConfig())
}

// ProvideMetricsCollector returns the Prometheus collector when enabled. A
// construction failure is logged and falls back to NopCollector.
func ProvideMetricsCollector(cfg *control.Config, logger logging.Logger) control.Collector {
	if cfg == nil {
		return control.NopCollector{}
	}
	c, err := control.NewCollector(cfg.Metrics, logger)
	if err != nil {
		logger.Error("metrics collector unavailable, using nop", "error", err)
		return control.NopCollector{}
	}
	return c
}

// ProvideLoop creates the reactor and, with Prometheus metrics, exports its
// gauges. The cleanup closes the loop.
func ProvideLoop(cfg *control.Config, logger logging.Logger, metrics control.Collector) (*reactor.Loop, func(), error) {
	loopCfg := reactor.DefaultConfig()
	if cfg != nil {
		loopCfg = cfg.Reactor.LoopConfig()
	}
	loop, err := reactor.New(loopCfg, reactor.WithLogger(logger.With("component", "reactor")))
	if err != nil {
		return nil, nil, err
	}
	if pc, ok := metrics.(*control.PrometheusCollector); ok {
		if err := pc.RegisterLoopGauges(loop.Stats); err != nil {
			_ = loop.Close()
			return nil, nil, err
		}
	}
	cleanup := func() {
		if err := loop.Close(); err != nil {
			logger.Warn("reactor close failed", "error", err)
		}
	}
	return loop, cleanup, nil
}

// ProvideDebugProbes registers loop probes.
func ProvideDebugProbes(loop *reactor.Loop) *control.DebugProbes {
	dp := control.NewDebugProbes()
	control.RegisterLoopProbes(dp, loop)
	return dp
}

// ProvideTracerProvider installs the OTLP tracer provider when enabled. On
// failure the error is logged and a no-op shutdown is returned.
func ProvideTracerProvider(cfg *control.Config, logger logging.Logger) TracingShutdown {
	if cfg == nil {
		return TracingShutdown(tracing.NewNopTracerProvider())
	}
	tc := tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		Endpoint:     cfg.Tracing.Endpoint,
		ServiceName:  cfg.Tracing.ServiceName,
		Insecure:     cfg.Tracing.Insecure,
		Timeout:      cfg.Tracing.Timeout,
		SamplingRate: cfg.Tracing.SamplingRate,
	}
	shutdown, err := tracing.NewTracerProvider(tc, logger)
	if err != nil {
		logger.Error("tracing unavailable, using nop provider", "error", err)
		return TracingShutdown(tracing.NewNopTracerProvider())
	}
	return TracingShutdown(shutdown)
}
