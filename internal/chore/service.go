package chore

import (
	"context"
	"strings"
	"time"

	"chorebot-api/internal/common"
	"chorebot-api/internal/events"
	"chorebot-api/internal/metrics"
	"chorebot-api/internal/user"

	"go.uber.org/zap"
)

const (
	DefaultRetentionDays = 90
	NextTasksLimit       = 5
)

// ServiceConfig tunes the task service
type ServiceConfig struct {
	RetentionDays int
	Location      *time.Location
	SeedDefaults  bool
}

// TaskUpdate is a partial update. Nil fields are left alone.
type TaskUpdate struct {
	Name         *string
	IntervalDays *int
}

// Service defines the task operations used by the HTTP API, the bot, the
// digests and the CLI.
type Service interface {
	Now() time.Time
	Location() *time.Location

	AddTask(ctx context.Context, name string, intervalDays int, source events.Source) (*Task, error)
	RenameTask(ctx context.Context, id uint, name string) (*Task, error)
	UpdateInterval(ctx context.Context, id uint, intervalDays int) (*Task, error)
	UpdateTask(ctx context.Context, id uint, update TaskUpdate) (*Task, error)
	DeleteTask(ctx context.Context, id uint, source events.Source) (*Task, error)
	MarkDone(ctx context.Context, id uint, profile user.Profile, source events.Source) (*Task, error)

	GetTask(ctx context.Context, id uint) (*Task, error)
	FindTask(ctx context.Context, query string) (*Task, error)
	ListTasks(ctx context.Context) ([]Task, error)
	ListViews(ctx context.Context) ([]TaskView, error)
	Overdue(ctx context.Context) ([]Task, error)
	DueSoon(ctx context.Context, threshold int) ([]Task, error)
	NextTasks(ctx context.Context) ([]Task, error)
	Progress(ctx context.Context) (Progress, error)

	Statistics(ctx context.Context, days int) (Statistics, error)
	HistoryStats(ctx context.Context) (HistoryStats, error)
	CompletionRate(ctx context.Context, id uint, days int) (float64, error)
	SeedDefaults(ctx context.Context) (int, error)
}

type taskService struct {
	repo     Repository
	users    user.Repository
	eventBus events.EventBus
	clock    common.Clock
	config   ServiceConfig
	logger   *zap.Logger
}

// NewTaskService creates a new task service
func NewTaskService(repo Repository, users user.Repository, eventBus events.EventBus, clock common.Clock, cfg ServiceConfig, logger *zap.Logger) Service {
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = DefaultRetentionDays
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &taskService{
		repo:     repo,
		users:    users,
		eventBus: eventBus,
		clock:    clock,
		config:   cfg,
		logger:   logger,
	}
}

func (s *taskService) Now() time.Time {
	return s.clock.Now()
}

func (s *taskService) Location() *time.Location {
	return s.config.Location
}

func (s *taskService) publish(topic string, event interface{}) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(topic, event); err != nil {
		s.logger.Warn("Failed to publish event", zap.String("topic", topic), zap.Error(err))
	}
}

func (s *taskService) AddTask(ctx context.Context, name string, intervalDays int, source events.Source) (*Task, error) {
	task, err := s.repo.Add(ctx, name, intervalDays, s.clock.Now())
	if err != nil {
		return nil, err
	}

	s.publish(events.TopicTaskCreated, events.TaskCreated{
		Event:        events.NewEvent(),
		TaskID:       task.ID,
		Name:         task.Name,
		IntervalDays: task.IntervalDays,
		Source:       source,
	})
	return task, nil
}

func (s *taskService) RenameTask(ctx context.Context, id uint, name string) (*Task, error) {
	return s.repo.Rename(ctx, id, name)
}

func (s *taskService) UpdateInterval(ctx context.Context, id uint, intervalDays int) (*Task, error) {
	return s.repo.UpdateInterval(ctx, id, intervalDays)
}

// UpdateTask validates every supplied field before writing, then renames and
// updates the interval in that order.
func (s *taskService) UpdateTask(ctx context.Context, id uint, update TaskUpdate) (*Task, error) {
	if update.Name != nil {
		if err := validateName(strings.TrimSpace(*update.Name)); err != nil {
			return nil, err
		}
	}
	if update.IntervalDays != nil {
		if err := validateInterval(*update.IntervalDays); err != nil {
			return nil, err
		}
	}

	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		if task, err = s.repo.Rename(ctx, id, *update.Name); err != nil {
			return nil, err
		}
	}
	if update.IntervalDays != nil {
		if task, err = s.repo.UpdateInterval(ctx, id, *update.IntervalDays); err != nil {
			return nil, err
		}
	}
	return task, nil
}

func (s *taskService) DeleteTask(ctx context.Context, id uint, source events.Source) (*Task, error) {
	task, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish(events.TopicTaskDeleted, events.TaskDeleted{
		Event:  events.NewEvent(),
		TaskID: task.ID,
		Name:   task.Name,
		Source: source,
	})
	return task, nil
}

// MarkDone records the completion, then prunes history past the retention
// window. A failed prune is logged and does not fail the completion.
func (s *taskService) MarkDone(ctx context.Context, id uint, profile user.Profile, source events.Source) (*Task, error) {
	now := s.clock.Now()
	task, err := s.repo.MarkDone(ctx, id, profile, now)
	if err != nil {
		return nil, err
	}
	metrics.TaskCompletions.WithLabelValues(string(source)).Inc()

	cutoff := now.AddDate(0, 0, -s.config.RetentionDays)
	if _, err := s.repo.PruneHistory(ctx, cutoff); err != nil {
		s.logger.Error("Failed to prune task history", zap.Time("cutoff", cutoff), zap.Error(err))
	}

	completedBy := profile.FirstName
	if completedBy == "" && s.users != nil {
		completedBy = s.users.DisplayName(ctx, profile.ChatID)
	}
	s.publish(events.TopicTaskCompleted, events.TaskCompleted{
		Event:        events.NewEvent(),
		TaskID:       task.ID,
		TaskName:     task.Name,
		IntervalDays: task.IntervalDays,
		ChatID:       profile.ChatID,
		CompletedBy:  completedBy,
		CompletedAt:  now,
		Source:       source,
	})
	return task, nil
}

func (s *taskService) GetTask(ctx context.Context, id uint) (*Task, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *taskService) FindTask(ctx context.Context, query string) (*Task, error) {
	return s.repo.FindByName(ctx, query)
}

func (s *taskService) ListTasks(ctx context.Context) ([]Task, error) {
	return s.repo.List(ctx)
}

// ListViews annotates every task with its status and completer name
func (s *taskService) ListViews(ctx context.Context) ([]TaskView, error) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	var ids []int64
	seen := make(map[int64]bool)
	for _, t := range tasks {
		if t.LastDoneBy != nil && !seen[*t.LastDoneBy] {
			seen[*t.LastDoneBy] = true
			ids = append(ids, *t.LastDoneBy)
		}
	}
	var names map[int64]string
	if s.users != nil {
		names = s.users.DisplayNames(ctx, ids)
	}

	now := s.clock.Now()
	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, NewTaskView(t, now, names))
	}
	return views, nil
}

func (s *taskService) Overdue(ctx context.Context) ([]Task, error) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return FilterOverdue(tasks, s.clock.Now()), nil
}

func (s *taskService) DueSoon(ctx context.Context, threshold int) ([]Task, error) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return FilterDueSoon(tasks, s.clock.Now(), threshold), nil
}

func (s *taskService) NextTasks(ctx context.Context) ([]Task, error) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return NextUp(tasks, s.clock.Now(), NextTasksLimit), nil
}

func (s *taskService) Progress(ctx context.Context) (Progress, error) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return Progress{}, err
	}
	return Summarize(tasks, s.clock.Now()), nil
}

func (s *taskService) Statistics(ctx context.Context, days int) (Statistics, error) {
	if days <= 0 {
		return Statistics{}, common.NewValidationError("days", "days must be a positive integer")
	}
	since := s.clock.Now().AddDate(0, 0, -days)
	records, err := s.repo.HistorySince(ctx, since)
	if err != nil {
		return Statistics{}, err
	}
	return Aggregate(records, days, since, s.config.Location), nil
}

func (s *taskService) HistoryStats(ctx context.Context) (HistoryStats, error) {
	return s.repo.HistoryStats(ctx, s.clock.Now())
}

func (s *taskService) CompletionRate(ctx context.Context, id uint, days int) (float64, error) {
	if days <= 0 {
		return 0, common.NewValidationError("days", "days must be a positive integer")
	}
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}

	windowStart := s.clock.Now().AddDate(0, 0, -days)
	lookback := windowStart.Add(-time.Duration(task.IntervalDays+1) * day)
	completions, err := s.repo.CompletionsSince(ctx, id, lookback)
	if err != nil {
		return 0, err
	}
	return CompletionRate(*task, completions, windowStart), nil
}

// SeedDefaults adds DefaultTasks to an empty store when seeding is enabled
func (s *taskService) SeedDefaults(ctx context.Context) (int, error) {
	if !s.config.SeedDefaults {
		return 0, nil
	}
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	added := 0
	now := s.clock.Now()
	for _, d := range DefaultTasks {
		if _, err := s.repo.Add(ctx, d.Name, d.IntervalDays, now); err != nil {
			if common.IsConflict(err) {
				continue
			}
			return added, err
		}
		added++
	}
	s.logger.Info("Seeded default tasks", zap.Int("count", added))
	return added, nil
}
