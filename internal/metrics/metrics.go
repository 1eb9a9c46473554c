// Package metrics provides Prometheus instrumentation for hyprwatch.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hyprwatch/internal/ipc"
)

const namespace = "hyprwatch"

var loopStates = []string{"idle", "connected", "polling", "dispatching", "stopped", "errored"}

// Manager owns the registry and every collector. A nil or disabled Manager
// accepts all Record calls and does nothing, so callers never branch on it.
type Manager struct {
	registry *prometheus.Registry
	enabled  bool

	// Event metrics
	events       *prometheus.CounterVec
	parseErrors  prometheus.Counter
	dispatches   *prometheus.CounterVec
	invocations  *prometheus.CounterVec
	failures     *prometheus.CounterVec
	loopState    *prometheus.GaugeVec
	cacheLookups *prometheus.CounterVec

	// Command metrics
	commands        *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
}

// Config holds metrics configuration.
type Config struct {
	Enabled bool
	Path    string

	CommandDurationBuckets []float64
}

// DefaultConfig returns default metrics configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:                true,
		Path:                   "/metrics",
		CommandDurationBuckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5, 1, 5},
	}
}

// NewManager creates a metrics manager.
func NewManager(cfg Config) *Manager {
	if !cfg.Enabled {
		return &Manager{enabled: false}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Manager{
		registry: registry,
		enabled:  true,
	}
	m.initEventMetrics()
	m.initCommandMetrics(cfg)
	return m
}

// NoOpManager returns a manager that records nothing.
func NoOpManager() *Manager {
	return &Manager{enabled: false}
}

// Enabled returns whether metrics collection is enabled.
func (m *Manager) Enabled() bool {
	return m != nil && m.enabled
}

// Registry exposes the underlying registry for tests and custom exporters.
func (m *Manager) Registry() *prometheus.Registry {
	if !m.Enabled() {
		return nil
	}
	return m.registry
}

// Handler returns the HTTP handler for the metrics endpoint.
func (m *Manager) Handler() http.Handler {
	if !m.Enabled() {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ListenAndServe serves the metrics endpoint on addr until ctx ends.
func (m *Manager) ListenAndServe(ctx context.Context, addr, path string) error {
	if !m.Enabled() {
		return nil
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen for metrics on %s: %w", addr, err)
	}
	return m.Serve(ctx, listener, path)
}

// Serve serves the metrics endpoint on listener until ctx ends. The listener
// is closed on return.
func (m *Manager) Serve(ctx context.Context, listener net.Listener, path string) error {
	if !m.Enabled() {
		return listener.Close()
	}
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve metrics: %w", err)
	}
	return nil
}

func (m *Manager) initEventMetrics() {
	m.events = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Total number of event frames received from the compositor",
		},
		[]string{"event"},
	)

	m.parseErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_parse_errors_total",
			Help:      "Total number of event frames dropped as malformed",
		},
	)

	m.dispatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatches_total",
			Help:      "Total number of signal dispatches by event",
		},
		[]string{"event"},
	)

	m.invocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_invocations_total",
			Help:      "Total number of handler invocations by event",
		},
		[]string{"event"},
	)

	m.failures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_failures_total",
			Help:      "Total number of handlers that returned an error or panicked",
		},
		[]string{"event", "reason"},
	)

	m.loopState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "watch_loop_state",
			Help:      "Current watch loop state (1 for the active state)",
		},
		[]string{"state"},
	)

	m.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_lookups_total",
			Help:      "Query cache lookups by query and result",
		},
		[]string{"query", "result"},
	)

	m.registry.MustRegister(m.events)
	m.registry.MustRegister(m.parseErrors)
	m.registry.MustRegister(m.dispatches)
	m.registry.MustRegister(m.invocations)
	m.registry.MustRegister(m.failures)
	m.registry.MustRegister(m.loopState)
	m.registry.MustRegister(m.cacheLookups)
}

func (m *Manager) initCommandMetrics(cfg Config) {
	buckets := cfg.CommandDurationBuckets
	if len(buckets) == 0 {
		buckets = DefaultConfig().CommandDurationBuckets
	}

	m.commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Total number of command socket requests by outcome",
		},
		[]string{"command", "status"},
	)

	m.commandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Command socket round trip duration in seconds",
			Buckets:   buckets,
		},
		[]string{"command"},
	)

	m.registry.MustRegister(m.commands)
	m.registry.MustRegister(m.commandDuration)
}

// RecordEvent counts one received frame.
func (m *Manager) RecordEvent(name string) {
	if !m.Enabled() {
		return
	}
	m.events.WithLabelValues(name).Inc()
}

// RecordParseError counts one dropped frame.
func (m *Manager) RecordParseError() {
	if !m.Enabled() {
		return
	}
	m.parseErrors.Inc()
}

// RecordLoopState marks state as the active watch loop state.
func (m *Manager) RecordLoopState(state string) {
	if !m.Enabled() {
		return
	}
	for _, s := range loopStates {
		value := 0.0
		if s == state {
			value = 1
		}
		m.loopState.WithLabelValues(s).Set(value)
	}
}

// RecordDispatch counts one dispatch and the handlers it reached.
func (m *Manager) RecordDispatch(name string, handlers int) {
	if !m.Enabled() {
		return
	}
	m.dispatches.WithLabelValues(name).Inc()
	m.invocations.WithLabelValues(name).Add(float64(handlers))
}

// RecordHandlerFailure counts a handler that returned an error or panicked.
func (m *Manager) RecordHandlerFailure(name, reason string) {
	if !m.Enabled() {
		return
	}
	m.failures.WithLabelValues(name, reason).Inc()
}

// RecordCacheLookup counts a query cache hit or miss.
func (m *Manager) RecordCacheLookup(query string, hit bool) {
	if !m.Enabled() {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(query, result).Inc()
}

// RecordCommand records one command socket round trip.
func (m *Manager) RecordCommand(command string, elapsed time.Duration, err error) {
	if !m.Enabled() {
		return
	}
	m.commands.WithLabelValues(command, commandStatus(err)).Inc()
	m.commandDuration.WithLabelValues(command).Observe(elapsed.Seconds())
}

func commandStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ipc.ErrTimeout):
		return "timeout"
	case errors.Is(err, ipc.ErrConnectionClosed):
		return "closed"
	case errors.Is(err, ipc.ErrConnection):
		return "unreachable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
