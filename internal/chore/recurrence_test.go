package chore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var refNow = time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

func doneAgo(d time.Duration) *time.Time {
	t := refNow.Add(-d)
	return &t
}

func TestRecurrence(t *testing.T) {
	tests := []struct {
		name          string
		task          Task
		wantSince     int
		wantSinceOK   bool
		wantOverdue   bool
		wantUntilDue  int
		wantState     State
		wantOverdueBy int
	}{
		{
			name:         "never done is overdue with full interval left",
			task:         Task{IntervalDays: 7},
			wantSinceOK:  false,
			wantOverdue:  true,
			wantUntilDue: 7,
			wantState:    StateNeverDone,
		},
		{
			name:         "done exactly one interval ago is overdue",
			task:         Task{IntervalDays: 7, LastDone: doneAgo(7 * day)},
			wantSince:    7,
			wantSinceOK:  true,
			wantOverdue:  true,
			wantUntilDue: 0,
			wantState:    StateOverdue,
		},
		{
			name:         "done three days ago",
			task:         Task{IntervalDays: 7, LastDone: doneAgo(3 * day)},
			wantSince:    3,
			wantSinceOK:  true,
			wantOverdue:  false,
			wantUntilDue: 4,
			wantState:    StateUpcoming,
		},
		{
			name:         "fractional days are floored",
			task:         Task{IntervalDays: 7, LastDone: doneAgo(6*day + 23*time.Hour)},
			wantSince:    6,
			wantSinceOK:  true,
			wantOverdue:  false,
			wantUntilDue: 1,
			wantState:    StateUpcoming,
		},
		{
			name:          "long overdue",
			task:          Task{IntervalDays: 3, LastDone: doneAgo(10 * day)},
			wantSince:     10,
			wantSinceOK:   true,
			wantOverdue:   true,
			wantUntilDue:  0,
			wantState:     StateOverdue,
			wantOverdueBy: 7,
		},
		{
			name:         "completion in the future floors to negative days",
			task:         Task{IntervalDays: 2, LastDone: doneAgo(-time.Hour)},
			wantSince:    -1,
			wantSinceOK:  true,
			wantOverdue:  false,
			wantUntilDue: 3,
			wantState:    StateUpcoming,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			since, ok := tt.task.DaysSinceDone(refNow)
			assert.Equal(t, tt.wantSinceOK, ok)
			assert.Equal(t, tt.wantSince, since)
			assert.Equal(t, tt.wantOverdue, tt.task.IsOverdue(refNow))
			assert.Equal(t, tt.wantUntilDue, tt.task.DaysUntilDue(refNow))

			status := tt.task.Classify(refNow)
			assert.Equal(t, tt.wantState, status.State)
			assert.Equal(t, tt.wantOverdueBy, status.OverdueDays)
		})
	}
}

func TestOverdueIffElapsedReachesInterval(t *testing.T) {
	for interval := 1; interval <= 30; interval++ {
		for elapsed := 0; elapsed <= 40; elapsed++ {
			task := Task{IntervalDays: interval, LastDone: doneAgo(time.Duration(elapsed)*day + time.Minute)}
			since, ok := task.DaysSinceDone(refNow)
			assert.True(t, ok)
			assert.Equal(t, since >= interval, task.IsOverdue(refNow), "interval=%d elapsed=%d", interval, elapsed)
		}
	}
}

func TestIsDueSoon(t *testing.T) {
	tests := []struct {
		name      string
		task      Task
		threshold int
		want      bool
	}{
		{name: "never done is excluded", task: Task{IntervalDays: 1}, threshold: 5, want: false},
		{name: "overdue is excluded", task: Task{IntervalDays: 2, LastDone: doneAgo(2 * day)}, threshold: 5, want: false},
		{name: "one day left with threshold one", task: Task{IntervalDays: 7, LastDone: doneAgo(6 * day)}, threshold: 1, want: true},
		{name: "two days left with threshold one", task: Task{IntervalDays: 7, LastDone: doneAgo(5 * day)}, threshold: 1, want: false},
		{name: "two days left with threshold two", task: Task{IntervalDays: 7, LastDone: doneAgo(5 * day)}, threshold: 2, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.IsDueSoon(refNow, tt.threshold))
		})
	}
}

func TestFilters(t *testing.T) {
	tasks := []Task{
		{ID: 1, IntervalDays: 7},
		{ID: 2, IntervalDays: 7, LastDone: doneAgo(8 * day)},
		{ID: 3, IntervalDays: 7, LastDone: doneAgo(6 * day)},
		{ID: 4, IntervalDays: 7, LastDone: doneAgo(1 * day)},
	}

	overdue := FilterOverdue(tasks, refNow)
	assert.Equal(t, []uint{1, 2}, ids(overdue))

	soon := FilterDueSoon(tasks, refNow, 1)
	assert.Equal(t, []uint{3}, ids(soon))

	assert.Empty(t, FilterDueSoon(nil, refNow, 1))
}

func TestNewTaskView(t *testing.T) {
	by := int64(42)
	task := Task{ID: 5, Name: "Помыть ванну", IntervalDays: 21, LastDone: doneAgo(3 * day), LastDoneBy: &by, CreatedAt: refNow.Add(-30 * day)}

	view := NewTaskView(task, refNow, map[int64]string{42: "Анна"})
	assert.False(t, view.IsOverdue)
	assert.Equal(t, 18, view.DaysUntilDue)
	if assert.NotNil(t, view.DaysSinceDone) {
		assert.Equal(t, 3, *view.DaysSinceDone)
	}
	if assert.NotNil(t, view.LastDoneByName) {
		assert.Equal(t, "Анна", *view.LastDoneByName)
	}

	never := NewTaskView(Task{ID: 6, Name: "x", IntervalDays: 3}, refNow, nil)
	assert.True(t, never.IsOverdue)
	assert.Nil(t, never.DaysSinceDone)
	assert.Nil(t, never.LastDoneByName)
	assert.Equal(t, 3, never.DaysUntilDue)
}

func ids(tasks []Task) []uint {
	out := make([]uint, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}
