package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the access
// control and audit pipeline.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	permissionChecks *prometheus.CounterVec
	auditRecords     *prometheus.CounterVec
	sinkWrites       *prometheus.CounterVec
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

	permissionChecks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "permission_checks_total",
		Help: "Authorization decisions made by the permission engine",
	}, []string{"decision"})

	auditRecords := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_records_total",
		Help: "Audit records built, by action",
	}, []string{"action"})

	sinkWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_sink_writes_total",
		Help: "Durable sink write attempts, by sink and outcome",
	}, []string{"sink", "status"})

	registry.MustRegister(requestDuration, requestTotal, permissionChecks, auditRecords, sinkWrites)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		permissionChecks: permissionChecks,
		auditRecords:     auditRecords,
		sinkWrites:       sinkWrites,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records the outcome of one HTTP request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, fmt.Sprintf("%d", status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// ObservePermissionCheck records an authorization decision.
func (s *MetricsService) ObservePermissionCheck(allowed bool) {
	decision := "denied"
	if allowed {
		decision = "allowed"
	}
	s.permissionChecks.WithLabelValues(decision).Inc()
}

// ObserveAuditRecord counts one built audit record.
func (s *MetricsService) ObserveAuditRecord(action string) {
	s.auditRecords.WithLabelValues(action).Inc()
}

// ObserveSinkWrite counts a durable sink write attempt.
func (s *MetricsService) ObserveSinkWrite(sink string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.sinkWrites.WithLabelValues(sink, status).Inc()
}
