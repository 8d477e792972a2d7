package chore

import "time"

// Task is a recurring chore with a fixed re-do interval
type Task struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"type:varchar(255);not null" json:"name"`
	NameKey      string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_tasks_name_key" json:"-"`
	IntervalDays int        `gorm:"not null;check:chk_tasks_interval_days,interval_days > 0" json:"interval_days"`
	LastDone     *time.Time `json:"last_done"`
	LastDoneBy   *int64     `json:"last_done_by"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
}

// TableName returns the table name for the Task model
func (Task) TableName() string {
	return "tasks"
}

// TaskHistory is an append-only completion record
type TaskHistory struct {
	ID     uint      `gorm:"primaryKey"`
	TaskID uint      `gorm:"not null;index:idx_task_history_task_id"`
	DoneBy int64     `gorm:"not null"`
	DoneAt time.Time `gorm:"not null;index:idx_task_history_done_at"`
}

// TableName returns the table name for the TaskHistory model
func (TaskHistory) TableName() string {
	return "task_history"
}

// TaskView is a task annotated with its computed recurrence status
type TaskView struct {
	ID             uint       `json:"id"`
	Name           string     `json:"name"`
	IntervalDays   int        `json:"interval_days"`
	LastDone       *time.Time `json:"last_done"`
	LastDoneBy     *int64     `json:"last_done_by"`
	LastDoneByName *string    `json:"last_done_by_name"`
	CreatedAt      time.Time  `json:"created_at"`
	IsOverdue      bool       `json:"is_overdue"`
	DaysUntilDue   int        `json:"days_until_due"`
	DaysSinceDone  *int       `json:"days_since_done"`
}

// NewTaskView computes the status fields at now. names maps user ids to
// display names; a missing entry leaves LastDoneByName nil.
func NewTaskView(t Task, now time.Time, names map[int64]string) TaskView {
	view := TaskView{
		ID:           t.ID,
		Name:         t.Name,
		IntervalDays: t.IntervalDays,
		LastDone:     t.LastDone,
		LastDoneBy:   t.LastDoneBy,
		CreatedAt:    t.CreatedAt,
		IsOverdue:    t.IsOverdue(now),
		DaysUntilDue: t.DaysUntilDue(now),
	}
	if days, ok := t.DaysSinceDone(now); ok {
		view.DaysSinceDone = &days
	}
	if t.LastDoneBy != nil {
		if name, ok := names[*t.LastDoneBy]; ok {
			view.LastDoneByName = &name
		}
	}
	return view
}

// HistoryRecord is a completion joined with its task and user
type HistoryRecord struct {
	TaskID        uint
	TaskName      string
	DoneBy        int64
	UserFirstName *string
	UserName      *string
	DoneAt        time.Time
}

// HistoryStats counts history rows over fixed windows
type HistoryStats struct {
	Total      int64 `json:"total"`
	Last30Days int64 `json:"last_30_days"`
	Last7Days  int64 `json:"last_7_days"`
}
