package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Wizard transition outcomes recorded by MetricsService.
const (
	OutcomeAdvanced  = "advanced"
	OutcomeCommitted = "committed"
	OutcomeRejected  = "rejected"
	OutcomeRestarted = "restarted"
	OutcomeDeclined  = "declined"
	OutcomeFailed    = "failed"
)

// MetricsService owns the Prometheus registry and the application collectors.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	analyticsDuration *prometheus.HistogramVec
	wizardTransitions *prometheus.CounterVec
	importRows        *prometheus.CounterVec
	exportsTotal      *prometheus.CounterVec
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

	analyticsDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pal_analytics_query_duration_seconds",
		Help:    "Duration of analytics aggregate queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	wizardTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pal_wizard_transitions_total",
		Help: "Registration wizard step outcomes",
	}, []string{"wizard", "step", "outcome"})

	importRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pal_import_rows_total",
		Help: "Bulk import rows by outcome",
	}, []string{"outcome"})

	exportsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pal_exports_total",
		Help: "Generated analytics exports by format",
	}, []string{"format"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, analyticsDuration, wizardTransitions, importRows, exportsTotal, goroutines)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		analyticsDuration: analyticsDuration,
		wizardTransitions: wizardTransitions,
		importRows:        importRows,
		exportsTotal:      exportsTotal,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveAnalyticsQuery records the time spent on one analytics aggregate.
func (m *MetricsService) ObserveAnalyticsQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.analyticsDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordWizardTransition counts a wizard step outcome.
func (m *MetricsService) RecordWizardTransition(wizard string, step int, outcome string) {
	if m == nil {
		return
	}
	m.wizardTransitions.WithLabelValues(wizard, strconv.Itoa(step), outcome).Inc()
}

// RecordImportRows adds imported and rejected row counts.
func (m *MetricsService) RecordImportRows(succeeded, failed int) {
	if m == nil {
		return
	}
	m.importRows.WithLabelValues("success").Add(float64(succeeded))
	m.importRows.WithLabelValues("error").Add(float64(failed))
}

// RecordExport counts a generated export document.
func (m *MetricsService) RecordExport(format string) {
	if m == nil {
		return
	}
	m.exportsTotal.WithLabelValues(format).Inc()
}
