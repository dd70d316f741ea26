package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/elements/pkg/element"
	"github.com/vango-dev/elements/pkg/live"
	"github.com/vango-dev/elements/pkg/reactive"
)

var (
	_ reactive.Observer = (*Collector)(nil)
	_ element.Observer  = (*Collector)(nil)
	_ live.Observer     = (*Collector)(nil)
)

// Config configures a Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "elements").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry receives every metric. Default: a fresh registry.
	Registry *prometheus.Registry

	// Runtime also registers the Go runtime and process collectors.
	Runtime bool
}

// Option configures a Collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// WithRuntime registers Go runtime and process collectors as well.
func WithRuntime() Option {
	return func(c *Config) {
		c.Runtime = true
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "elements",
		Buckets:   prometheus.DefBuckets,
	}
}

// Collector holds every metric and implements reactive.Observer,
// element.Observer and live.Observer.
type Collector struct {
	registry *prometheus.Registry

	flushes       prometheus.Counter
	flushRounds   prometheus.Histogram
	flushDuration prometheus.Histogram
	effectsRun    prometheus.Counter
	recovered     prometheus.Counter

	setups        *prometheus.CounterVec
	setupDuration *prometheus.HistogramVec
	connected     *prometheus.GaugeVec

	sessions       prometheus.Gauge
	events         *prometheus.CounterVec
	eventDuration  *prometheus.HistogramVec
	patchesSent    prometheus.Counter
	protocolErrors prometheus.Counter

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates a Collector and registers its metrics.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}
	if config.Buckets == nil {
		config.Buckets = prometheus.DefBuckets
	}
	if config.Runtime {
		config.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	factory := promauto.With(config.Registry)
	ns, labels := config.Namespace, config.ConstLabels

	return &Collector{
		registry: config.Registry,

		flushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Name: "flushes_total", ConstLabels: labels,
			Help: "Total number of completed effect flushes",
		}),
		flushRounds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns, Name: "flush_rounds", ConstLabels: labels,
			Help:    "Drain rounds needed per flush",
			Buckets: []float64{1, 2, 3, 5, 10, 25, 50, 100},
		}),
		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns, Name: "flush_duration_seconds", ConstLabels: labels,
			Help: "Flush duration in seconds", Buckets: config.Buckets,
		}),
		effectsRun: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Name: "effects_run_total", ConstLabels: labels,
			Help: "Total number of effect runs",
		}),
		recovered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Name: "recovered_panics_total", ConstLabels: labels,
			Help: "Panics recovered from effects and memos",
		}),

		setups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "setups_total", ConstLabels: labels,
			Help: "Element setup runs by tag and status",
		}, []string{"tag", "status"}),
		setupDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Name: "setup_duration_seconds", ConstLabels: labels,
			Help: "Element setup duration in seconds", Buckets: config.Buckets,
		}, []string{"tag"}),
		connected: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns, Name: "connected", ConstLabels: labels,
			Help: "Currently connected element instances by tag",
		}, []string{"tag"}),

		sessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: "live", Name: "sessions", ConstLabels: labels,
			Help: "Number of open live sessions",
		}),
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "live", Name: "events_total", ConstLabels: labels,
			Help: "Client events dispatched by type",
		}, []string{"event"}),
		eventDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Subsystem: "live", Name: "event_duration_seconds", ConstLabels: labels,
			Help: "Client event handling duration in seconds", Buckets: config.Buckets,
		}, []string{"event"}),
		patchesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "live", Name: "patches_sent_total", ConstLabels: labels,
			Help: "Total number of patches sent to clients",
		}),
		protocolErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "live", Name: "protocol_errors_total", ConstLabels: labels,
			Help: "Malformed client messages",
		}),

		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "http", Name: "requests_total", ConstLabels: labels,
			Help: "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Subsystem: "http", Name: "request_duration_seconds", ConstLabels: labels,
			Help: "HTTP request duration in seconds", Buckets: config.Buckets,
		}, []string{"route"}),
	}
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Install hooks the collector into the scheduler and the element adapter.
// It returns a func that removes both hooks.
func (c *Collector) Install() func() {
	reactive.SetObserver(c)
	element.SetObserver(c)
	return func() {
		reactive.SetObserver(nil)
		element.SetObserver(nil)
	}
}

// FlushCompleted implements reactive.Observer.
func (c *Collector) FlushCompleted(rounds int, elapsed time.Duration) {
	c.flushes.Inc()
	c.flushRounds.Observe(float64(rounds))
	c.flushDuration.Observe(elapsed.Seconds())
}

// EffectRan implements reactive.Observer.
func (c *Collector) EffectRan() {
	c.effectsRun.Inc()
}

// Recovered implements reactive.Observer.
func (c *Collector) Recovered(error) {
	c.recovered.Inc()
}

// SetupRan implements element.Observer.
func (c *Collector) SetupRan(tag string, elapsed time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.setups.WithLabelValues(tag, status).Inc()
	c.setupDuration.WithLabelValues(tag).Observe(elapsed.Seconds())
}

// Connected implements element.Observer.
func (c *Collector) Connected(tag string) {
	c.connected.WithLabelValues(tag).Inc()
}

// Disconnected implements element.Observer.
func (c *Collector) Disconnected(tag string) {
	c.connected.WithLabelValues(tag).Dec()
}

// SessionOpened implements live.Observer.
func (c *Collector) SessionOpened() {
	c.sessions.Inc()
}

// SessionClosed implements live.Observer.
func (c *Collector) SessionClosed() {
	c.sessions.Dec()
}

// EventHandled implements live.Observer.
func (c *Collector) EventHandled(event string, elapsed time.Duration) {
	c.events.WithLabelValues(event).Inc()
	c.eventDuration.WithLabelValues(event).Observe(elapsed.Seconds())
}

// PatchesSent implements live.Observer.
func (c *Collector) PatchesSent(n int) {
	c.patchesSent.Add(float64(n))
}

// ProtocolError implements live.Observer.
func (c *Collector) ProtocolError() {
	c.protocolErrors.Inc()
}
