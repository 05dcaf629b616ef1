// Package metrics defines the Prometheus collectors exported by the catalog.
//
// All constructors take a Registerer so tests can use a private registry.
// Recording methods are safe to call on a nil receiver.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/metacatalog/catalog/internal/core/catalog"
)

const namespace = "catalog"

// RED holds the rate/error/duration vectors shared by every service component.
type RED struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewRED(reg prometheus.Registerer) *RED {
	f := promauto.With(reg)
	return &RED{
		total: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Number of service operations by component, operation and outcome.",
		}, []string{"component", "op", "outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of service operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"component", "op"}),
	}
}

// Component returns a recorder labelled with the given component name.
func (r *RED) Component(name string) *REDClient {
	return &REDClient{red: r, component: name}
}

type REDClient struct {
	red       *RED
	component string
}

// Record starts timing op. The returned func observes the outcome of err and
// hands err back unchanged.
func (c *REDClient) Record(op string) func(error) error {
	if c == nil || c.red == nil {
		return func(err error) error { return err }
	}
	start := time.Now()
	return func(err error) error {
		c.red.total.WithLabelValues(c.component, op, Outcome(err)).Inc()
		c.red.duration.WithLabelValues(c.component, op).Observe(time.Since(start).Seconds())
		return err
	}
}

// Outcome classifies err for the outcome label.
func Outcome(err error) string {
	switch catalog.ErrorCode(err) {
	case "":
		return "success"
	case catalog.EInternal:
		return "error"
	default:
		return "client_error"
	}
}

// CacheMetrics counts translation table lookups.
type CacheMetrics struct {
	lookups *prometheus.CounterVec
	errors  *prometheus.CounterVec
}

func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	f := promauto.With(reg)
	return &CacheMetrics{
		lookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "translation_cache",
			Name:      "lookups_total",
			Help:      "Translation table cache lookups by entity type, direction and result.",
		}, []string{"entity_type", "direction", "result"}),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "translation_cache",
			Name:      "errors_total",
			Help:      "Cache store failures by operation.",
		}, []string{"op"}),
	}
}

func (m *CacheMetrics) Hit(entityType, direction string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(entityType, direction, "hit").Inc()
}

func (m *CacheMetrics) Miss(entityType, direction string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(entityType, direction, "miss").Inc()
}

func (m *CacheMetrics) Error(op string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(op).Inc()
}

// HTTPMetrics tracks API requests by route template.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	f := promauto.With(reg)
	return &HTTPMetrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *HTTPMetrics) Observe(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, status).Inc()
	m.duration.WithLabelValues(method, route).Observe(d.Seconds())
}
