package chore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"chorebot-api/internal/common"
	"chorebot-api/internal/database"
	"chorebot-api/internal/user"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxNameLength = 255
	maxCandidates = 10
)

// gormTaskRepository implements Repository using GORM
type gormTaskRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormTaskRepository creates a new GORM-based task repository
func NewGormTaskRepository(db *gorm.DB, logger *zap.Logger) Repository {
	return &gormTaskRepository{
		db:     db,
		logger: logger,
	}
}

// storeTime normalizes timestamps so both drivers compare and round-trip them
// identically.
func storeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func validateName(name string) error {
	if name == "" {
		return common.NewValidationError("name", "name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return common.NewValidationError("name", fmt.Sprintf("name must be at most %d characters", maxNameLength))
	}
	return nil
}

func validateInterval(days int) error {
	if days <= 0 {
		return common.NewValidationError("interval_days", "interval_days must be a positive integer")
	}
	return nil
}

func taskNotFound(id uint) error {
	return common.NotFoundError{Resource: "Task", ID: fmt.Sprint(id)}
}

func (r *gormTaskRepository) Add(ctx context.Context, name string, intervalDays int, at time.Time) (*Task, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateInterval(intervalDays); err != nil {
		return nil, err
	}

	task := &Task{
		Name:         name,
		NameKey:      common.FoldKey(name),
		IntervalDays: intervalDays,
		CreatedAt:    storeTime(at),
	}

	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		if database.IsUniqueViolation(err) {
			r.logger.Debug("Task name already taken", zap.String("name", name))
			return nil, common.ConflictError{Resource: "Task", Field: "name", Value: name}
		}
		return nil, common.WrapStorageError(err, "add task")
	}

	r.logger.Info("Task created", zap.Uint("task_id", task.ID), zap.String("name", name))
	return task, nil
}

// Rename returns NotFoundError for an unknown id. A task may be renamed to a
// case variant of its own name.
func (r *gormTaskRepository) Rename(ctx context.Context, id uint, name string) (*Task, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	var task Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, id).Error; err != nil {
			return err
		}
		return tx.Model(&Task{}).Where("id = ?", id).Updates(map[string]interface{}{
			"name":     name,
			"name_key": common.FoldKey(name),
		}).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, taskNotFound(id)
		case database.IsUniqueViolation(err):
			return nil, common.ConflictError{Resource: "Task", Field: "name", Value: name}
		default:
			return nil, common.WrapStorageError(err, "rename task")
		}
	}

	task.Name = name
	task.NameKey = common.FoldKey(name)
	r.logger.Info("Task renamed", zap.Uint("task_id", id), zap.String("name", name))
	return &task, nil
}

func (r *gormTaskRepository) UpdateInterval(ctx context.Context, id uint, intervalDays int) (*Task, error) {
	if err := validateInterval(intervalDays); err != nil {
		return nil, err
	}

	res := r.db.WithContext(ctx).Model(&Task{}).Where("id = ?", id).Update("interval_days", intervalDays)
	if res.Error != nil {
		return nil, common.WrapStorageError(res.Error, "update task interval")
	}
	if res.RowsAffected == 0 {
		return nil, taskNotFound(id)
	}

	r.logger.Info("Task interval updated", zap.Uint("task_id", id), zap.Int("interval_days", intervalDays))
	return r.GetByID(ctx, id)
}

// Delete removes the task and its history in one transaction and returns the
// removed task.
func (r *gormTaskRepository) Delete(ctx context.Context, id uint) (*Task, error) {
	var task Task
	var historyRows int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, id).Error; err != nil {
			return err
		}
		res := tx.Where("task_id = ?", id).Delete(&TaskHistory{})
		if res.Error != nil {
			return res.Error
		}
		historyRows = res.RowsAffected
		return tx.Delete(&Task{}, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, taskNotFound(id)
		}
		return nil, common.WrapStorageError(err, "delete task")
	}

	r.logger.Info("Task deleted",
		zap.Uint("task_id", id),
		zap.String("name", task.Name),
		zap.Int64("history_rows", historyRows))
	return &task, nil
}

func (r *gormTaskRepository) MarkDone(ctx context.Context, id uint, profile user.Profile, at time.Time) (*Task, error) {
	if profile.ChatID == 0 {
		return nil, common.NewValidationError("chat_id", "chat_id is required")
	}
	at = storeTime(at)

	var task Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := user.UpsertTx(tx, profile, at); err != nil {
			return err
		}

		res := tx.Model(&Task{}).Where("id = ?", id).Updates(map[string]interface{}{
			"last_done":    at,
			"last_done_by": profile.ChatID,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Create(&TaskHistory{TaskID: id, DoneBy: profile.ChatID, DoneAt: at}).Error; err != nil {
			return err
		}
		return tx.First(&task, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, taskNotFound(id)
		}
		return nil, common.WrapStorageError(err, "mark task done")
	}

	r.logger.Info("Task completed", zap.Uint("task_id", id), zap.Int64("chat_id", profile.ChatID))
	return &task, nil
}

func (r *gormTaskRepository) List(ctx context.Context) ([]Task, error) {
	var tasks []Task
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&tasks).Error; err != nil {
		return nil, common.WrapStorageError(err, "list tasks")
	}
	return tasks, nil
}

func (r *gormTaskRepository) GetByID(ctx context.Context, id uint) (*Task, error) {
	var task Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, taskNotFound(id)
		}
		return nil, common.WrapStorageError(err, "get task")
	}
	return &task, nil
}

// FindByName resolves a case-insensitive query. An exact name wins, then a
// single substring match. Several substring matches yield AmbiguousNameError.
func (r *gormTaskRepository) FindByName(ctx context.Context, query string) (*Task, error) {
	key := common.FoldKey(query)
	if key == "" {
		return nil, common.NewValidationError("name", "name is required")
	}
	db := r.db.WithContext(ctx)

	var exact Task
	err := db.Where("name_key = ?", key).First(&exact).Error
	if err == nil {
		return &exact, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.WrapStorageError(err, "find task by name")
	}

	var matches []Task
	err = db.Where(`name_key LIKE ? ESCAPE '\'`, "%"+database.EscapeLike(key)+"%").
		Order("name ASC").
		Limit(maxCandidates).
		Find(&matches).Error
	if err != nil {
		return nil, common.WrapStorageError(err, "find task by name")
	}

	switch len(matches) {
	case 0:
		return nil, common.NotFoundError{Resource: "Task", ID: strings.TrimSpace(query)}
	case 1:
		return &matches[0], nil
	default:
		names := make([]string, 0, len(matches))
		for _, t := range matches {
			names = append(names, t.Name)
		}
		return nil, AmbiguousNameError{Query: strings.TrimSpace(query), Candidates: names}
	}
}

func (r *gormTaskRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Task{}).Count(&count).Error; err != nil {
		return 0, common.WrapStorageError(err, "count tasks")
	}
	return count, nil
}

func (r *gormTaskRepository) PruneHistory(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("done_at < ?", storeTime(before)).Delete(&TaskHistory{})
	if res.Error != nil {
		return 0, common.WrapStorageError(res.Error, "prune task history")
	}
	if res.RowsAffected > 0 {
		r.logger.Info("Pruned task history", zap.Int64("rows", res.RowsAffected), zap.Time("before", before))
	}
	return res.RowsAffected, nil
}

func (r *gormTaskRepository) HistorySince(ctx context.Context, since time.Time) ([]HistoryRecord, error) {
	var records []HistoryRecord
	err := r.db.WithContext(ctx).
		Table("task_history").
		Select("task_history.task_id, tasks.name AS task_name, task_history.done_by, " +
			"users.first_name AS user_first_name, users.username AS user_name, task_history.done_at").
		Joins("JOIN tasks ON tasks.id = task_history.task_id").
		Joins("LEFT JOIN users ON users.chat_id = task_history.done_by").
		Where("task_history.done_at >= ?", storeTime(since)).
		Order("task_history.done_at ASC").
		Scan(&records).Error
	if err != nil {
		return nil, common.WrapStorageError(err, "load task history")
	}
	return records, nil
}

func (r *gormTaskRepository) CompletionsSince(ctx context.Context, taskID uint, since time.Time) ([]time.Time, error) {
	var rows []TaskHistory
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND done_at >= ?", taskID, storeTime(since)).
		Order("done_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, common.WrapStorageError(err, "load task completions")
	}

	times := make([]time.Time, 0, len(rows))
	for _, row := range rows {
		times = append(times, row.DoneAt)
	}
	return times, nil
}

func (r *gormTaskRepository) HistoryStats(ctx context.Context, now time.Time) (HistoryStats, error) {
	var stats HistoryStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&TaskHistory{}).Count(&stats.Total).Error; err != nil {
		return HistoryStats{}, common.WrapStorageError(err, "count task history")
	}
	if err := db.Model(&TaskHistory{}).Where("done_at >= ?", storeTime(now.AddDate(0, 0, -30))).Count(&stats.Last30Days).Error; err != nil {
		return HistoryStats{}, common.WrapStorageError(err, "count task history")
	}
	if err := db.Model(&TaskHistory{}).Where("done_at >= ?", storeTime(now.AddDate(0, 0, -7))).Count(&stats.Last7Days).Error; err != nil {
		return HistoryStats{}, common.WrapStorageError(err, "count task history")
	}
	return stats, nil
}
