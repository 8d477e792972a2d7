// Package metrics holds the Prometheus collectors for household activity.
// HTTP request metrics live with the HTTP middleware.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "chorebot"

var (
	// TaskCompletions counts committed completions by source (api, bot, cli)
	TaskCompletions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_completions_total",
			Help:      "Total number of task completions.",
		},
		[]string{"source"},
	)

	// DigestDeliveries counts per-recipient digest sends by kind and result
	DigestDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "digest_deliveries_total",
			Help:      "Total number of digest messages by kind and result.",
		},
		[]string{"kind", "result"},
	)

	// SchedulerRuns counts scheduled job executions by job and result
	SchedulerRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_runs_total",
			Help:      "Total number of scheduled job runs.",
		},
		[]string{"job", "result"},
	)

	// BotUpdates counts processed Telegram updates by kind
	BotUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bot_updates_total",
			Help:      "Total number of processed Telegram updates.",
		},
		[]string{"kind"},
	)
)

// Result label values
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultSkipped = "skipped"
)

func init() {
	prometheus.MustRegister(TaskCompletions, DigestDeliveries, SchedulerRuns, BotUpdates)
}
