// Package metrics records component renders as Prometheus series.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goliatone/go-viewstack/pkg/buffer"
	"github.com/goliatone/go-viewstack/pkg/component"
)

// Config configures the Prometheus recorder.
type Config struct {
	// Namespace is the metrics namespace (default: "viewstack").
	Namespace string

	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// DepthBuckets are the histogram buckets for nesting depth.
	DepthBuckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the recorder.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the duration histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithDepthBuckets sets the depth histogram buckets.
func WithDepthBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.DepthBuckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace:    "viewstack",
		Buckets:      prometheus.DefBuckets,
		DepthBuckets: prometheus.LinearBuckets(1, 1, 8),
		Registry:     prometheus.DefaultRegisterer,
	}
}

// Recorder implements component.Observer.
type Recorder struct {
	rendersTotal   *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	renderDepth    *prometheus.HistogramVec
	underflows     prometheus.Counter
}

var _ component.Observer = (*Recorder)(nil)

// New registers the render series with the configured registry.
//
// Series:
//   - viewstack_renders_total{component,status}
//   - viewstack_render_duration_seconds{component}
//   - viewstack_render_depth{component}
//   - viewstack_stack_underflows_total
func New(opts ...Option) *Recorder {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Recorder{
		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of component renders",
			ConstLabels: config.ConstLabels,
		}, []string{"component", "status"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Component render duration in seconds, nested renders included",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"component"}),

		renderDepth: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_depth",
			Help:        "Nesting depth at which components render",
			ConstLabels: config.ConstLabels,
			Buckets:     config.DepthBuckets,
		}, []string{"component"}),

		underflows: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "stack_underflows_total",
			Help:        "Total number of renders that failed popping past the bottom buffer",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// ObserveRender records one finished render.
func (r *Recorder) ObserveRender(name string, depth int, elapsed time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
		if errors.Is(err, buffer.ErrStackUnderflow) {
			r.underflows.Inc()
		}
	}
	r.rendersTotal.WithLabelValues(name, status).Inc()
	r.renderDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	r.renderDepth.WithLabelValues(name).Observe(float64(depth))
}
