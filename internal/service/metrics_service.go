package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation and provides
// lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	searchAttempts  *prometheus.CounterVec
	searchSuccesses *prometheus.CounterVec
	searchDuration  *prometheus.HistogramVec
	bestFitness     *prometheus.GaugeVec

	requestCount         uint64
	requestDurationTotal uint64
	searchCount          uint64
	infeasibleCount      uint64
}

// MetricsSnapshot aggregates counters for diagnostics endpoints.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	SearchesTotal            uint64    `json:"searchesTotal"`
	InfeasibleTotal          uint64    `json:"infeasibleTotal"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	searchAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_attempts_total",
		Help: "Construction attempts per scheduling module",
	}, []string{"module"})

	searchSuccesses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_success_total",
		Help: "Successful construction attempts per scheduling module",
	}, []string{"module"})

	searchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schedule_search_duration_seconds",
		Help:    "Wall-clock duration of whole searches",
		Buckets: prometheus.DefBuckets,
	}, []string{"module"})

	bestFitness := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "schedule_best_fitness",
		Help: "Best fitness reported by the most recent search",
	}, []string{"module"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, searchAttempts, searchSuccesses, searchDuration, bestFitness, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		searchAttempts:  searchAttempts,
		searchSuccesses: searchSuccesses,
		searchDuration:  searchDuration,
		bestFitness:     bestFitness,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveSearch records the outcome of one whole search run.
func (m *MetricsService) ObserveSearch(module string, attempts, successes int, bestFitness float64, duration time.Duration) {
	if m == nil {
		return
	}
	m.searchAttempts.WithLabelValues(module).Add(float64(attempts))
	m.searchSuccesses.WithLabelValues(module).Add(float64(successes))
	m.searchDuration.WithLabelValues(module).Observe(duration.Seconds())
	atomic.AddUint64(&m.searchCount, 1)
	if successes > 0 {
		m.bestFitness.WithLabelValues(module).Set(bestFitness)
	} else {
		atomic.AddUint64(&m.infeasibleCount, 1)
	}
}

// Snapshot returns aggregated metrics suitable for diagnostics endpoints.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return MetricsSnapshot{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		SearchesTotal:            atomic.LoadUint64(&m.searchCount),
		InfeasibleTotal:          atomic.LoadUint64(&m.infeasibleCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
