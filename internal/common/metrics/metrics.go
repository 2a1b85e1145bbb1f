package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DialogueTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_turns_total",
			Help: "Total number of orchestrated dialogue turns by intent",
		},
		[]string{"intent", "result_type"},
	)

	DialogueTurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dialogue_turn_duration_seconds",
			Help:    "Duration of one orchestration call in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"intent"},
	)

	AgentFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_failures_total",
			Help: "Downstream failures degraded to a user-facing message, by agent",
		},
		[]string{"agent"},
	)

	MemoryWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "memory_write_failures_total",
			Help: "Memory upserts that failed and were treated as non-fatal",
		},
	)

	ChatFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_fallback_total",
			Help: "Turns forwarded to the open-ended chat capability",
		},
		[]string{"status"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of jobs currently being processed by worker",
		},
		[]string{"task_type"},
	)

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
)
