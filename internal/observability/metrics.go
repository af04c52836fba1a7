package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kql_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kql_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	pipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kql_pipeline_runs_total",
			Help: "Pipeline runs by terminal outcome (success, empty, error).",
		},
		[]string{"outcome"},
	)

	pipelineStageDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kql_pipeline_stage_duration_seconds",
			Help:    "Latency of the generate and execute pipeline stages.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"stage"},
	)

	auditFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kql_audit_failures_total",
			Help: "Audit records that a sink failed to accept.",
		},
		[]string{"sink"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		pipelineRunsTotal,
		pipelineStageDurationSeconds,
		auditFailuresTotal,
	)
}

func ObservePipelineRun(outcome string) {
	pipelineRunsTotal.WithLabelValues(outcome).Inc()
}

func ObserveStage(stage string, d time.Duration) {
	pipelineStageDurationSeconds.WithLabelValues(stage).Observe(d.Seconds())
}

func ObserveAuditFailure(sink string) {
	auditFailuresTotal.WithLabelValues(sink).Inc()
}
