package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"chorebot-api/internal/common"
	"chorebot-api/internal/config"

	"go.uber.org/zap"
)

// Scheduler defines the interface for the background digest scheduler
type Scheduler interface {
	Start(ctx context.Context) error
	Stop() error
	IsRunning() bool
	GetMetrics() *SchedulerMetrics
}

type scheduler struct {
	config  config.SchedulerConfig
	jobs    []Job
	clock   common.Clock
	logger  *zap.Logger
	metrics *SchedulerMetrics

	ctx    context.Context
	cancel context.CancelFunc

	wg      sync.WaitGroup
	running atomic.Bool
}

// NewScheduler creates a scheduler that polls every PollInterval seconds and
// runs the jobs whose time has come
func NewScheduler(cfg config.SchedulerConfig, jobs []Job, clock common.Clock, logger *zap.Logger) (Scheduler, error) {
	if cfg.PollInterval <= 0 {
		return nil, NewConfigurationError("poll_interval", cfg.PollInterval, "must be greater than 0")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, NewConfigurationError("shutdown_timeout", cfg.ShutdownTimeout, "must be greater than 0")
	}
	if len(jobs) == 0 {
		return nil, NewConfigurationError("jobs", len(jobs), "at least one job is required")
	}
	if clock == nil {
		clock = common.NewRealClock()
	}

	return &scheduler{
		config:  cfg,
		jobs:    jobs,
		clock:   clock,
		logger:  logger,
		metrics: NewSchedulerMetrics(),
	}, nil
}

// Start schedules every job from the current time and starts the polling loop
func (s *scheduler) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return NewSchedulerError(ErrSchedulerAlreadyRunning, "scheduler is already running")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)

	now := s.clock.Now()
	for _, job := range s.jobs {
		next := job.NextRun(now)
		s.metrics.SetNextRun(job.Name(), next)
		s.logger.Info("Job scheduled",
			zap.String("job", job.Name()),
			zap.Time("next_run", next))
	}

	s.logger.Info("Starting digest scheduler",
		zap.Int("poll_interval_seconds", s.config.PollInterval),
		zap.Int("job_count", len(s.jobs)))

	s.wg.Add(1)
	go s.loop()

	return nil
}

// Stop cancels the loop and waits for a running job up to the shutdown timeout
func (s *scheduler) Stop() error {
	if !s.running.Load() {
		return NewSchedulerError(ErrSchedulerNotRunning, "scheduler is not running")
	}

	s.logger.Info("Stopping digest scheduler...")
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Duration(s.config.ShutdownTimeout) * time.Second):
		s.logger.Warn("Scheduler shutdown timed out, a job may still be running")
		return NewShutdownError("shutdown timeout exceeded", s.config.ShutdownTimeout)
	}

	s.running.Store(false)
	s.logger.Info("Digest scheduler stopped")
	return nil
}

func (s *scheduler) IsRunning() bool {
	return s.running.Load()
}

func (s *scheduler) GetMetrics() *SchedulerMetrics {
	return s.metrics
}

func (s *scheduler) loop() {
	defer s.wg.Done()

	poll := time.Duration(s.config.PollInterval) * time.Second
	for {
		select {
		case <-s.ctx.Done():
			s.logger.Debug("Scheduler loop stopping due to context cancellation")
			return
		case <-s.clock.After(poll):
			s.runDue(s.ctx)
		}
	}
}
