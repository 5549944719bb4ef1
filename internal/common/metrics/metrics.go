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

	LoanDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_assessment_decisions_total",
			Help: "Loan assessments by decision and risk level",
		},
		[]string{"approved", "risk_level"},
	)

	LoanViabilityScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "loan_viability_score",
			Help:    "Distribution of viability scores",
			Buckets: prometheus.LinearBuckets(20, 10, 12),
		},
		[]string{"purpose"},
	)

	CommunityLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "community_snapshot_lookups_total",
			Help: "Community snapshot lookups by source",
		},
		[]string{"source"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "decision_notifications_sent_total",
			Help: "Decision notifications delivered by channel",
		},
		[]string{"channel"},
	)
)
