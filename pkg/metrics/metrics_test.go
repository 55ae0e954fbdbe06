package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func scrape(t *testing.T) string {
	t.Helper()
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestObserveReconciliation(t *testing.T) {
	ObserveReconciliation("PREPAID", 15*time.Millisecond)

	body := scrape(t)
	assert.Contains(t, body, `tuition_reconciliations_total{status="PREPAID"} 1`)
	assert.Contains(t, body, "tuition_reconciliation_duration_seconds_count")
}

func TestObserveCache(t *testing.T) {
	ObserveCache(CacheMiss)
	ObserveCache(CacheMiss)

	assert.Contains(t, scrape(t), `tuition_reconciliation_cache_total{result="miss"} 2`)
}

func TestRequestStarted(t *testing.T) {
	done := RequestStarted()
	assert.Contains(t, scrape(t), "http_requests_in_flight 1")

	done(http.MethodGet, "/api/v1/health", "200", time.Millisecond)

	body := scrape(t)
	assert.Contains(t, body, "http_requests_in_flight 0")
	assert.Contains(t, body, `http_requests_total{method="GET",route="/api/v1/health",status="200"} 1`)
}

func TestObserveReminder(t *testing.T) {
	ObserveReminder("skipped")

	assert.Contains(t, scrape(t), `tuition_dues_reminders_total{outcome="skipped"} 1`)
}

func TestObserveQuery(t *testing.T) {
	ObserveQuery(3*time.Millisecond, false)
	ObserveQuery(time.Second, true)

	body := scrape(t)
	assert.Contains(t, body, `tuition_db_query_duration_seconds_count{outcome="ok"} 1`)
	assert.Contains(t, body, `tuition_db_query_duration_seconds_count{outcome="error"} 1`)
}
