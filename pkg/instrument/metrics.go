package instrument

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pulse-dev/pulse/pkg/pulse"
)

// MetricsConfig configures the Prometheus adapter.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "pulse").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for reaction run duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus adapter.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default adapter configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "pulse",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// RuntimeMetrics is a live Prometheus adapter for one runtime.
// Close removes the event hook; the collectors stay registered so scrapes
// keep seeing the final values.
type RuntimeMetrics struct {
	reactionRuns     *prometheus.CounterVec
	reactionDuration prometheus.Histogram
	computedRuns     prometheus.Counter
	atomWrites       prometheus.Counter
	batches          prometheus.Counter
	flushes          prometheus.Counter
	containedErrors  prometheus.Counter
	throttledRuns    prometheus.Counter

	unhook func()
}

// Metrics registers propagation collectors and subscribes them to the
// runtime's event stream.
func Metrics(rt *pulse.Runtime, opts ...MetricsOption) *RuntimeMetrics {
	cfg := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := promauto.With(cfg.Registry)

	m := &RuntimeMetrics{
		reactionRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "reaction_runs_total",
			Help:        "Completed reaction runs, by outcome.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"status"}),
		reactionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "reaction_run_duration_seconds",
			Help:        "Duration of reaction runs.",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}),
		computedRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "computed_runs_total",
			Help:        "Computed recomputations.",
			ConstLabels: cfg.ConstLabels,
		}),
		atomWrites: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "atom_writes_total",
			Help:        "Effective atom writes (equal writes excluded).",
			ConstLabels: cfg.ConstLabels,
		}),
		batches: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "batches_total",
			Help:        "Completed outermost batch scopes.",
			ConstLabels: cfg.ConstLabels,
		}),
		flushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "flushes_total",
			Help:        "Propagation passes.",
			ConstLabels: cfg.ConstLabels,
		}),
		containedErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "contained_errors_total",
			Help:        "Tracked-body failures handed to error handlers.",
			ConstLabels: cfg.ConstLabels,
		}),
		throttledRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "throttled_runs_total",
			Help:        "Re-runs dropped by the per-pass flush budget.",
			ConstLabels: cfg.ConstLabels,
		}),
	}

	m.unhook = rt.OnEvent(m.observe)

	return m
}

// observe maps one runtime event onto the collectors.
func (m *RuntimeMetrics) observe(e pulse.Event) {
	switch e.Kind {
	case pulse.EventReactionRun:
		status := "ok"
		if e.Err != nil {
			status = "error"
		}
		m.reactionRuns.WithLabelValues(status).Inc()
		m.reactionDuration.Observe(e.Duration.Seconds())
	case pulse.EventComputedRun:
		m.computedRuns.Inc()
	case pulse.EventAtomWrite:
		m.atomWrites.Inc()
	case pulse.EventBatchEnd:
		m.batches.Inc()
	case pulse.EventFlush:
		m.flushes.Inc()
	case pulse.EventErrorContained:
		m.containedErrors.Inc()
	case pulse.EventThrottle:
		m.throttledRuns.Inc()
	}
}

// Close detaches the adapter from the runtime's event stream.
func (m *RuntimeMetrics) Close() {
	if m.unhook != nil {
		m.unhook()
		m.unhook = nil
	}
}
