package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	return NewWithRegistry(reg, reg)
}

func TestMiddlewareLabelsByPattern(t *testing.T) {
	m := newTestMetrics()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/food-items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	h := m.Middleware(mux)

	for _, path := range []string{"/api/food-items/a", "/api/food-items/b", "/nowhere"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}

	body := scrape(t, m)
	assert.Contains(t, body, `ecopantry_http_requests_total{method="GET",route="GET /api/food-items/{id}",status_code="404"} 2`)
	assert.Contains(t, body, `ecopantry_http_requests_total{method="GET",route="unmatched",status_code="404"} 1`)
}

func TestHandlerExposesCounters(t *testing.T) {
	m := newTestMetrics()
	m.ChatCompletions.WithLabelValues("ok").Inc()
	m.ItemsConsumed.WithLabelValues(Outcome(true)).Inc()

	body := scrape(t, m)
	assert.Contains(t, body, `ecopantry_chat_completions_total{result="ok"} 1`)
	assert.Contains(t, body, `ecopantry_consumption_logs_total{outcome="wasted"} 1`)
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}
