// Package metrics exposes Prometheus instruments for the ledger and its
// HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "custody"

// Metrics holds every instrument. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	itemsCreated        prometheus.Counter
	transfersProposed   prometheus.Counter
	transfersResolved   *prometheus.CounterVec
	operationErrors     *prometheus.CounterVec
	notificationsFailed prometheus.Counter
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
}

// New registers all instruments on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		itemsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_created_total",
			Help:      "Items registered.",
		}),
		transfersProposed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_proposed_total",
			Help:      "Transfers proposed.",
		}),
		transfersResolved: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_resolved_total",
			Help:      "Transfers resolved, by final status.",
		}, []string{"status"}),
		operationErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_errors_total",
			Help:      "Failed ledger operations, by operation.",
		}, []string{"op"}),
		notificationsFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_failed_total",
			Help:      "Notifications that could not be delivered.",
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method and status code.",
		}, []string{"method", "code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ItemCreated() {
	if m != nil {
		m.itemsCreated.Inc()
	}
}

func (m *Metrics) TransferProposed() {
	if m != nil {
		m.transfersProposed.Inc()
	}
}

func (m *Metrics) TransferResolved(status string) {
	if m != nil {
		m.transfersResolved.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) OperationFailed(op string) {
	if m != nil {
		m.operationErrors.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) NotificationFailed() {
	if m != nil {
		m.notificationsFailed.Inc()
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(method).Observe(d.Seconds())
}
