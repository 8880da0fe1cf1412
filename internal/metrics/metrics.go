// Package metrics holds the Prometheus collectors exported by the service.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the service collectors. A nil *Metrics is valid and records
// nothing, so callers never need to guard their calls.
type Metrics struct {
	registry *prometheus.Registry

	moodsSelected prometheus.Counter
	moodsDeleted  prometheus.Counter
	storageErrors *prometheus.CounterVec
	entries       prometheus.Gauge
	httpRequests  *prometheus.CounterVec
}

// New creates the collectors and registers them, together with the Go runtime
// and process collectors, on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		moodsSelected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "moods_selected_total",
			Help: "Mood entries added.",
		}),
		moodsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "moods_deleted_total",
			Help: "Mood entries removed.",
		}),
		storageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "moods_storage_errors_total",
			Help: "Suppressed storage failures by operation.",
		}, []string{"op"}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "moods_entries",
			Help: "Mood entries currently held in memory.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
	}
	m.registry.MustRegister(
		m.moodsSelected,
		m.moodsDeleted,
		m.storageErrors,
		m.entries,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// MoodSelected counts one added entry.
func (m *Metrics) MoodSelected() {
	if m == nil {
		return
	}
	m.moodsSelected.Inc()
}

// MoodsDeleted counts n removed entries. Non-positive n is ignored.
func (m *Metrics) MoodsDeleted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.moodsDeleted.Add(float64(n))
}

// StorageError counts a suppressed storage failure for op
// (read, decode, encode, write or remove).
func (m *Metrics) StorageError(op string) {
	if m == nil {
		return
	}
	m.storageErrors.WithLabelValues(op).Inc()
}

// SetEntries records the current list length.
func (m *Metrics) SetEntries(n int) {
	if m == nil {
		return
	}
	m.entries.Set(float64(n))
}

// ObserveRequest counts one served HTTP request.
func (m *Metrics) ObserveRequest(method string, code int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
}
