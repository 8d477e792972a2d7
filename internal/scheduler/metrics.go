package scheduler

import (
	"sort"
	"sync"
	"time"

	"chorebot-api/internal/metrics"
)

// SchedulerMetrics tracks job runs for the health endpoint and tests. Every
// run is also counted in the Prometheus scheduler_runs_total counter.
type SchedulerMetrics struct {
	mu            sync.RWMutex
	runs          int64
	failures      int64
	totalDuration time.Duration
	lastRun       map[string]time.Time
	lastError     map[string]string
	nextRun       map[string]time.Time
	lastRunAnyJob time.Time
}

// JobStatus describes the latest state of one job
type JobStatus struct {
	Name      string    `json:"name"`
	LastRun   time.Time `json:"last_run,omitempty"`
	NextRun   time.Time `json:"next_run"`
	LastError string    `json:"last_error,omitempty"`
}

// MetricsSummary provides a summary of scheduler metrics
type MetricsSummary struct {
	Runs               int64       `json:"runs"`
	Failures           int64       `json:"failures"`
	AverageRunDuration string      `json:"average_run_duration"`
	LastRun            time.Time   `json:"last_run"`
	ErrorRate          float64     `json:"error_rate_percentage"`
	Jobs               []JobStatus `json:"jobs"`
}

func NewSchedulerMetrics() *SchedulerMetrics {
	return &SchedulerMetrics{
		lastRun:   make(map[string]time.Time),
		lastError: make(map[string]string),
		nextRun:   make(map[string]time.Time),
	}
}

// RecordRun records one finished job run. A nil err counts as success.
func (m *SchedulerMetrics) RecordRun(job string, startedAt time.Time, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs++
	m.totalDuration += duration
	m.lastRun[job] = startedAt
	m.lastRunAnyJob = startedAt

	result := metrics.ResultSuccess
	if err != nil {
		m.failures++
		m.lastError[job] = err.Error()
		result = metrics.ResultFailure
	} else {
		delete(m.lastError, job)
	}
	metrics.SchedulerRuns.WithLabelValues(job, result).Inc()
}

func (m *SchedulerMetrics) SetNextRun(job string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRun[job] = at
}

// NextRun returns the scheduled time of a job, zero if unknown
func (m *SchedulerMetrics) NextRun(job string) time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nextRun[job]
}

func (m *SchedulerMetrics) Runs() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.runs
}

func (m *SchedulerMetrics) Failures() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.failures
}

// GetMetricsSummary returns a snapshot, jobs ordered by next run
func (m *SchedulerMetrics) GetMetricsSummary() MetricsSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := MetricsSummary{
		Runs:     m.runs,
		Failures: m.failures,
		LastRun:  m.lastRunAnyJob,
	}
	if m.runs > 0 {
		summary.AverageRunDuration = (m.totalDuration / time.Duration(m.runs)).String()
		summary.ErrorRate = float64(m.failures) / float64(m.runs) * 100
	} else {
		summary.AverageRunDuration = time.Duration(0).String()
	}

	for name, next := range m.nextRun {
		summary.Jobs = append(summary.Jobs, JobStatus{
			Name:      name,
			LastRun:   m.lastRun[name],
			NextRun:   next,
			LastError: m.lastError[name],
		})
	}
	sort.Slice(summary.Jobs, func(i, j int) bool {
		return summary.Jobs[i].NextRun.Before(summary.Jobs[j].NextRun)
	})
	return summary
}
