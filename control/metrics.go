// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Metrics collection for writers, timers and the reactor loop.

package control

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/momentics/hioload-aio/internal/logging"
	"github.com/momentics/hioload-aio/reactor"
)

// Collector receives operation outcomes. Implementations must be cheap; they
// are called on the loop goroutine.
type Collector interface {
	// WriteSubmitted records one write request of n bytes handed to the
	// reactor, whether or not the reactor accepts it.
	WriteSubmitted(n int)
	// WriteFinished records a finalized write operation.
	WriteFinished(written int64, err error)
	// TimerTicked records one delivered timer tick.
	TimerTicked(mode string)
}

// NewCollector returns a PrometheusCollector when metrics are enabled and a
// NopCollector otherwise.
func NewCollector(cfg MetricsConfig, log logging.Logger) (Collector, error) {
	if !cfg.Enabled {
		log.Debug("metrics disabled")
		return NopCollector{}, nil
	}
	return NewPrometheusCollector(cfg.Namespace)
}

// NopCollector discards everything.
type NopCollector struct{}

func (NopCollector) WriteSubmitted(int)         {}
func (NopCollector) WriteFinished(int64, error) {}
func (NopCollector) TimerTicked(string)         {}

// PrometheusCollector implements Collector with a private registry.
type PrometheusCollector struct {
	namespace string
	registry  *prometheus.Registry

	writeRequests prometheus.Counter
	writeBytes    prometheus.Counter
	writes        *prometheus.CounterVec
	timerTicks    *prometheus.CounterVec
}

// NewPrometheusCollector registers:
//   - <ns>_write_requests_total
//   - <ns>_write_bytes_total
//   - <ns>_writes_total{result}
//   - <ns>_timer_ticks_total{mode}
func NewPrometheusCollector(namespace string) (*PrometheusCollector, error) {
	c := &PrometheusCollector{
		namespace: namespace,
		registry:  prometheus.NewRegistry(),
		writeRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_requests_total",
			Help:      "Write requests handed to the reactor, rejected ones included.",
		}),
		writeBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_bytes_total",
			Help:      "Bytes confirmed written by finalized write operations.",
		}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "writes_total",
			Help:      "Finalized write operations by result.",
		}, []string{"result"}),
		timerTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "timer_ticks_total",
			Help:      "Timer ticks delivered by mode.",
		}, []string{"mode"}),
	}
	for _, col := range []prometheus.Collector{c.writeRequests, c.writeBytes, c.writes, c.timerTicks} {
		if err := c.registry.Register(col); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return c, nil
}

func (c *PrometheusCollector) WriteSubmitted(int) {
	c.writeRequests.Inc()
}

func (c *PrometheusCollector) WriteFinished(written int64, err error) {
	c.writeBytes.Add(float64(written))
	if err != nil {
		c.writes.WithLabelValues("error").Inc()
		return
	}
	c.writes.WithLabelValues("end").Inc()
}

func (c *PrometheusCollector) TimerTicked(mode string) {
	c.timerTicks.WithLabelValues(mode).Inc()
}

// RegisterLoopGauges exports loop resource counts read from stats on scrape.
func (c *PrometheusCollector) RegisterLoopGauges(stats func() reactor.Stats) error {
	gauges := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: c.namespace,
			Name:      "reactor_inflight_requests",
			Help:      "File requests submitted and not yet completed.",
		}, func() float64 { return float64(stats().InflightFsRequests) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: c.namespace,
			Name:      "reactor_active_timers",
			Help:      "Armed reactor timers.",
		}, func() float64 { return float64(stats().ActiveTimers) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: c.namespace,
			Name:      "reactor_pending_tasks",
			Help:      "Completions and posted tasks waiting for dispatch.",
		}, func() float64 { return float64(stats().PendingTasks) }),
	}
	for _, g := range gauges {
		if err := c.registry.Register(g); err != nil {
			return fmt.Errorf("register gauge: %w", err)
		}
	}
	return nil
}

// Registry exposes the underlying registry.
func (c *PrometheusCollector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
