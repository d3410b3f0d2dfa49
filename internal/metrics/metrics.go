package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	globalMetrics *Metrics
	globalMu      sync.RWMutex
)

// Metrics holds all Prometheus metrics for Leadboard
type Metrics struct {
	// Panel pages
	HTTPRequestsTotal          *prometheus.CounterVec
	HTTPRequestDurationSeconds *prometheus.HistogramVec
	HTTPErrorsTotal            *prometheus.CounterVec

	// Outbound calls to the backend and LeadSwift
	UpstreamRequestsTotal          *prometheus.CounterVec
	UpstreamRequestDurationSeconds *prometheus.HistogramVec

	// Sessions
	LoginsTotal *prometheus.CounterVec
	LogoutTotal prometheus.Counter

	AuditWriteFailuresTotal prometheus.Counter
	MailboxChecksTotal      *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadboard_http_requests_total",
				Help: "Total number of panel HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "leadboard_http_request_duration_seconds",
				Help:    "Panel HTTP request duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadboard_http_errors_total",
				Help: "Total number of panel HTTP error responses",
			},
			[]string{"error_type"},
		),
		UpstreamRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadboard_upstream_requests_total",
				Help: "Total number of requests sent to upstream APIs",
			},
			[]string{"service", "method", "status"},
		),
		UpstreamRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "leadboard_upstream_request_duration_seconds",
				Help:    "Upstream API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "method"},
		),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadboard_logins_total",
				Help: "Total number of login and signup attempts",
			},
			[]string{"kind", "result"},
		),
		LogoutTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "leadboard_logouts_total",
				Help: "Total number of logouts",
			},
		),
		AuditWriteFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "leadboard_audit_write_failures_total",
				Help: "Total number of audit entries that could not be stored",
			},
		),
		MailboxChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadboard_mailbox_checks_total",
				Help: "Total number of sales-team mailbox checks",
			},
			[]string{"result"},
		),

		registry: reg,
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDurationSeconds,
		m.HTTPErrorsTotal,
		m.UpstreamRequestsTotal,
		m.UpstreamRequestDurationSeconds,
		m.LoginsTotal,
		m.LogoutTotal,
		m.AuditWriteFailuresTotal,
		m.MailboxChecksTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler exposing the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SetGlobal sets the global metrics instance
func SetGlobal(m *Metrics) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalMetrics = m
}

// Global returns the global metrics instance
func Global() *Metrics {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalMetrics
}

// ObserveUpstream records one upstream API call
func ObserveUpstream(service, method string, status int, seconds float64) {
	m := Global()
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = statusClass(status)
	}
	m.UpstreamRequestsTotal.WithLabelValues(service, method, label).Inc()
	m.UpstreamRequestDurationSeconds.WithLabelValues(service, method).Observe(seconds)
}

// IncLogin counts a login or signup attempt
func IncLogin(kind string, ok bool) {
	m := Global()
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.LoginsTotal.WithLabelValues(kind, result).Inc()
}

// IncLogout counts a logout
func IncLogout() {
	m := Global()
	if m != nil {
		m.LogoutTotal.Inc()
	}
}

// IncAuditWriteFailure counts an audit entry that was dropped
func IncAuditWriteFailure() {
	m := Global()
	if m != nil {
		m.AuditWriteFailuresTotal.Inc()
	}
}

// IncMailboxCheck counts a mailbox probe by outcome
func IncMailboxCheck(result string) {
	m := Global()
	if m != nil {
		m.MailboxChecksTotal.WithLabelValues(result).Inc()
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
