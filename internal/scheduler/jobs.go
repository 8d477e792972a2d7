package scheduler

import (
	"context"
	"time"

	"chorebot-api/internal/config"
	"chorebot-api/internal/digest"

	"go.uber.org/zap"
)

// Job is a unit of scheduled work. NextRun must return a time strictly after now.
type Job interface {
	Name() string
	NextRun(now time.Time) time.Time
	Run(ctx context.Context) error
}

const (
	JobDailyDigest   = "daily_digest"
	JobWeeklySummary = "weekly_summary"
)

// DailyAt returns the first hour:minute wall-clock time in loc after now
func DailyAt(now time.Time, hour, minute int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(now) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
	}
	return next
}

// WeeklyAt returns the first weekday hour:minute in loc after now
func WeeklyAt(now time.Time, weekday time.Weekday, hour, minute int, loc *time.Location) time.Time {
	local := now.In(loc)
	ahead := (int(weekday) - int(local.Weekday()) + 7) % 7
	next := time.Date(local.Year(), local.Month(), local.Day()+ahead, hour, minute, 0, 0, loc)
	if !next.After(now) {
		next = time.Date(local.Year(), local.Month(), local.Day()+ahead+7, hour, minute, 0, 0, loc)
	}
	return next
}

// DailyDigestJob sends the overdue and due-soon digest once a day
type DailyDigestJob struct {
	digest digest.Service
	hour   int
	minute int
	loc    *time.Location
	logger *zap.Logger
}

func (j *DailyDigestJob) Name() string { return JobDailyDigest }

func (j *DailyDigestJob) NextRun(now time.Time) time.Time {
	return DailyAt(now, j.hour, j.minute, j.loc)
}

func (j *DailyDigestJob) Run(ctx context.Context) error {
	report, err := j.digest.SendDaily(ctx)
	if err != nil {
		return err
	}
	logReport(j.logger, report)
	return nil
}

// WeeklySummaryJob sends the 7-day statistics summary
type WeeklySummaryJob struct {
	digest  digest.Service
	weekday time.Weekday
	hour    int
	minute  int
	loc     *time.Location
	logger  *zap.Logger
}

func (j *WeeklySummaryJob) Name() string { return JobWeeklySummary }

func (j *WeeklySummaryJob) NextRun(now time.Time) time.Time {
	return WeeklyAt(now, j.weekday, j.hour, j.minute, j.loc)
}

func (j *WeeklySummaryJob) Run(ctx context.Context) error {
	report, err := j.digest.SendWeekly(ctx)
	if err != nil {
		return err
	}
	logReport(j.logger, report)
	return nil
}

func logReport(logger *zap.Logger, report digest.Report) {
	logger.Info("Digest run finished",
		zap.String("kind", string(report.Kind)),
		zap.Int("recipients", report.Recipients),
		zap.Int("delivered", report.Delivered),
		zap.Int("failed", len(report.Failed)),
		zap.Bool("skipped", report.Skipped))
}

// NewDigestJobs builds the daily and weekly digest jobs from configuration
func NewDigestJobs(cfg config.SchedulerConfig, loc *time.Location, svc digest.Service, logger *zap.Logger) ([]Job, error) {
	if loc == nil {
		loc = time.UTC
	}
	dailyHour, dailyMinute, err := config.ParseClock(cfg.DailyTime)
	if err != nil {
		return nil, NewConfigurationError("daily_time", cfg.DailyTime, err.Error())
	}
	weeklyHour, weeklyMinute, err := config.ParseClock(cfg.WeeklyTime)
	if err != nil {
		return nil, NewConfigurationError("weekly_time", cfg.WeeklyTime, err.Error())
	}
	weekday, err := config.ParseWeekday(cfg.WeeklyDay)
	if err != nil {
		return nil, NewConfigurationError("weekly_day", cfg.WeeklyDay, err.Error())
	}

	return []Job{
		&DailyDigestJob{
			digest: svc,
			hour:   dailyHour,
			minute: dailyMinute,
			loc:    loc,
			logger: logger.With(zap.String("job", JobDailyDigest)),
		},
		&WeeklySummaryJob{
			digest:  svc,
			weekday: weekday,
			hour:    weeklyHour,
			minute:  weeklyMinute,
			loc:     loc,
			logger:  logger.With(zap.String("job", JobWeeklySummary)),
		},
	}, nil
}
