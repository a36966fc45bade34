package observability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goayasushi/zaiko-be/internal/masterdata/shared"
)

// Metrics collects the Prometheus metrics of the API process.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	bulkDeletes     *prometheus.CounterVec
	bulkDeleted     *prometheus.CounterVec
}

// NewMetrics initialises the registry and the base collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zaiko_http_requests_total",
		Help: "HTTP requests partitioned by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "zaiko_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	bulkDeletes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zaiko_bulk_delete_requests_total",
		Help: "Bulk delete requests partitioned by resource and outcome.",
	}, []string{"resource", "outcome"})
	bulkDeleted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zaiko_bulk_deleted_records_total",
		Help: "Records removed through bulk delete.",
	}, []string{"resource"})
	registry.MustRegister(
		requests, duration, bulkDeletes, bulkDeleted,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		bulkDeletes:     bulkDeletes,
		bulkDeleted:     bulkDeleted,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveBulkDelete counts one bulk delete request for resource.
func (m *Metrics) ObserveBulkDelete(resource string, deleted int, err error) {
	if m == nil {
		return
	}
	m.bulkDeletes.WithLabelValues(resource, bulkOutcome(err)).Inc()
	if err == nil && deleted > 0 {
		m.bulkDeleted.WithLabelValues(resource).Add(float64(deleted))
	}
}

func bulkOutcome(err error) string {
	switch {
	case err == nil:
		return "deleted"
	case errors.Is(err, shared.ErrMissingIDs):
		return "missing"
	case errors.Is(err, shared.ErrProtected):
		return "protected"
	default:
		return "error"
	}
}

// Registerer exposes the registry for custom collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}

var _ shared.BulkObserver = (*Metrics)(nil)
