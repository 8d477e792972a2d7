package scheduler

import (
	"context"

	"go.uber.org/zap"
)

// runDue runs every job whose next run is not after now, then reschedules it.
// Jobs run one after another; a failing job does not stop the others.
func (s *scheduler) runDue(ctx context.Context) {
	for _, job := range s.jobs {
		if ctx.Err() != nil {
			return
		}
		now := s.clock.Now()
		if now.Before(s.metrics.NextRun(job.Name())) {
			continue
		}

		err := s.runJob(ctx, job)
		next := job.NextRun(s.clock.Now())
		s.metrics.SetNextRun(job.Name(), next)

		if err != nil {
			s.logger.Error("Scheduled job failed, rescheduled",
				zap.String("job", job.Name()),
				zap.Time("next_run", next),
				zap.Error(err))
			continue
		}
		s.logger.Info("Scheduled job completed",
			zap.String("job", job.Name()),
			zap.Time("next_run", next))
	}
}

func (s *scheduler) runJob(ctx context.Context, job Job) (err error) {
	startedAt := s.clock.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Scheduled job panic recovered",
				zap.String("job", job.Name()),
				zap.Any("panic", r))
			err = NewJobPanicError(job.Name(), r)
		}
		s.metrics.RecordRun(job.Name(), startedAt, s.clock.Now().Sub(startedAt), err)
	}()

	s.logger.Debug("Running scheduled job", zap.String("job", job.Name()))
	if runErr := job.Run(ctx); runErr != nil {
		return NewJobError(job.Name(), runErr)
	}
	return nil
}
