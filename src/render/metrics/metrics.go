// Package metrics provides Prometheus telemetry for wrapped native objects:
// how many of each kind are alive, how many were created and destroyed,
// and how often creation or destruction failed.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector provides object lifecycle metrics.
type Collector struct {
	registry *prometheus.Registry

	live          *prometheus.GaugeVec
	created       *prometheus.CounterVec
	destroyed     *prometheus.CounterVec
	failures      *prometheus.CounterVec
	destroyErrors *prometheus.CounterVec
	createLatency *prometheus.HistogramVec

	retains  prometheus.Counter
	releases prometheus.Counter
}

// NewCollector creates a collector with its own registry.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "vkgraph"
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.live = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "objects",
			Name:      "live",
			Help:      "Number of wrapped native objects currently alive",
		},
		[]string{"kind"},
	)

	c.created = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "objects",
			Name:      "created_total",
			Help:      "Total number of native objects created",
		},
		[]string{"kind"},
	)

	c.destroyed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "objects",
			Name:      "destroyed_total",
			Help:      "Total number of native objects destroyed",
		},
		[]string{"kind"},
	)

	c.failures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "objects",
			Name:      "creation_failures_total",
			Help:      "Total number of failed creations by native result",
		},
		[]string{"kind", "result"},
	)

	c.destroyErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "objects",
			Name:      "destroy_errors_total",
			Help:      "Total number of errors reported while destroying native objects",
		},
		[]string{"kind"},
	)

	c.createLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "objects",
			Name:      "create_duration_seconds",
			Help:      "Time spent in the native create call",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10), // 10us to ~2.6s
		},
		[]string{"kind"},
	)

	c.retains = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refs",
			Name:      "retains_total",
			Help:      "Total number of references taken on wrapped objects",
		},
	)

	c.releases = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refs",
			Name:      "releases_total",
			Help:      "Total number of references dropped on wrapped objects",
		},
	)

	c.registry.MustRegister(
		c.live,
		c.created,
		c.destroyed,
		c.failures,
		c.destroyErrors,
		c.createLatency,
		c.retains,
		c.releases,
	)

	return c
}

// Registry returns the Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RecordCreated records a successful create of kind.
func (c *Collector) RecordCreated(kind string, duration time.Duration) {
	c.created.WithLabelValues(kind).Inc()
	c.live.WithLabelValues(kind).Inc()
	c.createLatency.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordCreateFailure records a failed create of kind. result is the
// native result name, or "dependency" when the request was rejected before
// reaching the driver.
func (c *Collector) RecordCreateFailure(kind, result string) {
	c.failures.WithLabelValues(kind, result).Inc()
}

// RecordDestroyed records the destruction of one object of kind.
func (c *Collector) RecordDestroyed(kind string, err error) {
	c.destroyed.WithLabelValues(kind).Inc()
	c.live.WithLabelValues(kind).Dec()
	if err != nil {
		c.destroyErrors.WithLabelValues(kind).Inc()
	}
}

func (c *Collector) RecordRetain()  { c.retains.Inc() }
func (c *Collector) RecordRelease() { c.releases.Inc() }
