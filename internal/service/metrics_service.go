package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/forgottenfelines/tnr-intake-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	triageTotal     *prometheus.CounterVec
	contentionTotal prometheus.Counter
	ingestTotal     *prometheus.CounterVec
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

	triageTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_classifications_total",
		Help: "Total triage classifications by derived category",
	}, []string{"category"})

	contentionTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mutation_guard_contention_total",
		Help: "Total guarded mutations that timed out on a held row",
	})

	ingestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "uploads_ingested_total",
		Help: "Total upload ingestion attempts by outcome",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, triageTotal, contentionTotal, ingestTotal, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		triageTotal:     triageTotal,
		contentionTotal: contentionTotal,
		ingestTotal:     ingestTotal,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one request observation.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, fmt.Sprintf("%d", status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveTriage counts one classification outcome.
func (s *MetricsService) ObserveTriage(category models.TriageCategory) {
	s.triageTotal.WithLabelValues(string(category)).Inc()
}

// ObserveLockContention counts one guard timeout.
func (s *MetricsService) ObserveLockContention() {
	s.contentionTotal.Inc()
}

// ObserveIngest counts one ingestion attempt by outcome.
func (s *MetricsService) ObserveIngest(outcome string) {
	s.ingestTotal.WithLabelValues(outcome).Inc()
}
