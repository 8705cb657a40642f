// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	QueriesParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queries_parsed_total",
			Help: "Total number of natural-language queries parsed, by classified intent",
		},
		[]string{"intent"},
	)

	ParseConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "query_parse_confidence",
			Help:    "Overall confidence of parsed queries",
			Buckets: []float64{0.4, 0.55, 0.7, 0.85, 0.95, 1.0},
		},
	)

	ContextMerges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "context_merges_total",
			Help: "Total number of session context merges, by whether history contributed",
		},
		[]string{"inherited"},
	)

	AggregationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "aggregation_duration_seconds",
			Help: "Duration of table aggregation runs in seconds",
		},
		[]string{"intent"},
	)

	AnomaliesFlagged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "anomalies_flagged_total",
			Help: "Total number of anomalous groups flagged by the z-score detector",
		},
	)

	AlertsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anomaly_alerts_dispatched_total",
			Help: "Total number of anomaly alerts dispatched, by channel and status",
		},
		[]string{"channel", "status"},
	)
)
