package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	checksTotal    prometheus.Counter
	checkDuration  prometheus.Histogram
	issuesTotal    *prometheus.CounterVec
	bookingFetches *prometheus.CounterVec

	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
}

// NewMetricsService registers all collectors on a private registry.
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

	checksTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "collision_checks_total",
		Help: "Total collision checks executed",
	})

	checkDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "collision_check_duration_seconds",
		Help:    "Duration of collision checks in seconds",
		Buckets: prometheus.DefBuckets,
	})

	issuesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "collision_issues_total",
		Help: "Detected collision issues by type",
	}, []string{"type"})

	bookingFetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_fetches_total",
		Help: "Requests made to the external booking service by outcome",
	}, []string{"outcome"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, checksTotal, checkDuration,
		issuesTotal, bookingFetches, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		checksTotal:     checksTotal,
		checkDuration:   checkDuration,
		issuesTotal:     issuesTotal,
		bookingFetches:  bookingFetches,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
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

// ObserveHTTPRequest records per-route request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveCheck records one collision check run and the issues it found.
func (m *MetricsService) ObserveCheck(issues []models.Issue, duration time.Duration) {
	if m == nil {
		return
	}
	m.checksTotal.Inc()
	m.checkDuration.Observe(duration.Seconds())
	for _, issue := range issues {
		m.issuesTotal.WithLabelValues(string(issue.Type())).Inc()
	}
}

// ObserveBookingFetch records an external booking API call outcome.
func (m *MetricsService) ObserveBookingFetch(err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.bookingFetches.WithLabelValues(outcome).Inc()
}

// RecordCacheOperation records a cache lookup outcome.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}
