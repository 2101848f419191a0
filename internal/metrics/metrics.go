// Package metrics exposes Prometheus counters for HTTP traffic and the
// background work the server does.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	ChatCompletions *prometheus.CounterVec
	PushSent        *prometheus.CounterVec
	ItemsConsumed   *prometheus.CounterVec
}

// New registers the collectors on a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg, reg)
}

func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		gatherer: gatherer,
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecopantry_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ecopantry_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ChatCompletions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecopantry_chat_completions_total",
				Help: "Chat completion calls by result",
			},
			[]string{"result"},
		),
		PushSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecopantry_push_notifications_total",
				Help: "Web push deliveries by result",
			},
			[]string{"result"},
		),
		ItemsConsumed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecopantry_consumption_logs_total",
				Help: "Consumption logs recorded, split by outcome",
			},
			[]string{"outcome"},
		),
	}
	reg.MustRegister(m.requestsTotal, m.requestDuration, m.ChatCompletions, m.PushSent, m.ItemsConsumed)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Outcome labels a consumption log for ItemsConsumed.
func Outcome(isWaste bool) string {
	if isWaste {
		return "wasted"
	}
	return "consumed"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Middleware records a count and latency per matched route pattern. Requests
// no route matched are grouped under "unmatched".
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
