package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func scrape(t *testing.T, m *MetricsService) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetricsServiceCountsWizardTransitions(t *testing.T) {
	m := NewMetricsService()
	m.RecordWizardTransition("student", 1, OutcomeAdvanced)
	m.RecordWizardTransition("student", 1, OutcomeAdvanced)
	m.RecordWizardTransition("tutor", 3, OutcomeRestarted)

	body := scrape(t, m)
	assert.Contains(t, body, `pal_wizard_transitions_total{outcome="advanced",step="1",wizard="student"} 2`)
	assert.Contains(t, body, `pal_wizard_transitions_total{outcome="restarted",step="3",wizard="tutor"} 1`)
}

func TestMetricsServiceImportRows(t *testing.T) {
	m := NewMetricsService()
	m.RecordImportRows(7, 3)

	body := scrape(t, m)
	assert.Contains(t, body, `pal_import_rows_total{outcome="success"} 7`)
	assert.Contains(t, body, `pal_import_rows_total{outcome="error"} 3`)
}

func TestMetricsServiceHandlerExposesCollectors(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/analytics", http.StatusOK, 20*time.Millisecond)
	m.ObserveAnalyticsQuery("metrics", time.Millisecond)
	m.RecordExport("pdf")

	body := scrape(t, m)
	assert.Contains(t, body, `http_requests_total{method="GET",path="/api/v1/analytics",status="200"} 1`)
	assert.Contains(t, body, "pal_analytics_query_duration_seconds_count")
	assert.Contains(t, body, `pal_exports_total{format="pdf"} 1`)
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService
	m.RecordWizardTransition("tutor", 1, OutcomeDeclined)
	m.RecordImportRows(1, 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
