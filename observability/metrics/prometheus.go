package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusConfig configures the Prometheus collector.
type PrometheusConfig struct {
	// Namespace is the metrics namespace (default: "convroute").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus collector.
type Option func(*PrometheusConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *PrometheusConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *PrometheusConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *PrometheusConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *PrometheusConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *PrometheusConfig) {
		c.Registry = registry
	}
}

// PrometheusCollector exports dispatcher observations as Prometheus metrics:
//
//   - convroute_resolutions_total{outcome}
//   - convroute_dispatch_duration_seconds{handler,method,status}
//   - convroute_http_requests_total{method,status}
//   - convroute_http_request_duration_seconds{method}
//   - convroute_handler_invalidations_total
type PrometheusCollector struct {
	resolutions     *prometheus.CounterVec
	dispatch        *prometheus.HistogramVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	invalidations   prometheus.Counter
}

// NewPrometheusCollector registers the collector's metrics. Registering twice
// with the same registry panics.
func NewPrometheusCollector(opts ...Option) *PrometheusCollector {
	config := PrometheusConfig{
		Namespace: "convroute",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &PrometheusCollector{
		resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "resolutions_total",
			Help:        "URI resolutions by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		dispatch: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatch_duration_seconds",
			Help:        "Handler method invocation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"handler", "method", "status"}),

		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_requests_total",
			Help:        "HTTP requests served",
			ConstLabels: config.ConstLabels,
		}, []string{"method", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"method"}),

		invalidations: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "handler_invalidations_total",
			Help:        "Handler files invalidated after a change on disk",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (p *PrometheusCollector) RecordResolution(outcome string) {
	p.resolutions.WithLabelValues(outcome).Inc()
}

func (p *PrometheusCollector) RecordDispatch(handler, method string, status int, duration time.Duration) {
	p.dispatch.WithLabelValues(handler, method, strconv.Itoa(status)).Observe(duration.Seconds())
}

func (p *PrometheusCollector) RecordHTTPRequest(method string, status int, duration time.Duration) {
	p.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	p.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func (p *PrometheusCollector) RecordInvalidation() {
	p.invalidations.Inc()
}
