package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the HTTP layer and the
// enrichment batcher.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	requestsInProgress prometheus.Gauge

	enrichChunksTotal   *prometheus.CounterVec
	enrichChunkDuration prometheus.Histogram
	enrichChunkFindings *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on registry.
func NewMetrics(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status_code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Time taken for HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		requestsInProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "HTTP requests currently being served",
		}),
		enrichChunksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enrichment_chunks_total",
			Help: "Enrichment chunks processed, by outcome",
		}, []string{"outcome"}),
		enrichChunkDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "enrichment_chunk_duration_seconds",
			Help:    "Time spent generating one enrichment chunk",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}),
		enrichChunkFindings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enrichment_findings_total",
			Help: "Findings sent for enrichment, by chunk outcome",
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{
		m.requestsTotal,
		m.requestDuration,
		m.requestsInProgress,
		m.enrichChunksTotal,
		m.enrichChunkDuration,
		m.enrichChunkFindings,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Middleware tracks request count, latency and in-flight requests. Routes
// are labelled by their chi pattern to keep cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.requestsInProgress.Inc()
		defer m.requestsInProgress.Dec()

		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		m.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// ObserveChunk records one enrichment chunk.
func (m *Metrics) ObserveChunk(outcome string, size int, elapsed time.Duration) {
	m.enrichChunksTotal.WithLabelValues(outcome).Inc()
	m.enrichChunkFindings.WithLabelValues(outcome).Add(float64(size))
	m.enrichChunkDuration.Observe(elapsed.Seconds())
}

// Handler serves the Prometheus exposition format for the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}
