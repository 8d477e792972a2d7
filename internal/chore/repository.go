package chore

import (
	"context"
	"time"

	"chorebot-api/internal/user"
)

// Repository is the Task Store. Every write is atomic; uniqueness of task
// names is enforced by the store itself.
type Repository interface {
	Add(ctx context.Context, name string, intervalDays int, at time.Time) (*Task, error)
	Rename(ctx context.Context, id uint, name string) (*Task, error)
	UpdateInterval(ctx context.Context, id uint, intervalDays int) (*Task, error)
	Delete(ctx context.Context, id uint) (*Task, error)
	// MarkDone upserts the user, stamps the task and appends history in one
	// transaction.
	MarkDone(ctx context.Context, id uint, profile user.Profile, at time.Time) (*Task, error)

	List(ctx context.Context) ([]Task, error)
	GetByID(ctx context.Context, id uint) (*Task, error)
	FindByName(ctx context.Context, query string) (*Task, error)
	Count(ctx context.Context) (int64, error)

	PruneHistory(ctx context.Context, before time.Time) (int64, error)
	HistorySince(ctx context.Context, since time.Time) ([]HistoryRecord, error)
	CompletionsSince(ctx context.Context, taskID uint, since time.Time) ([]time.Time, error)
	HistoryStats(ctx context.Context, now time.Time) (HistoryStats, error)
}
