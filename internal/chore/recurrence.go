package chore

import "time"

const day = 24 * time.Hour

// State is the rendering bucket of a task
type State int

const (
	StateNeverDone State = iota
	StateOverdue
	StateUpcoming
)

func (s State) String() string {
	switch s {
	case StateNeverDone:
		return "never_done"
	case StateOverdue:
		return "overdue"
	case StateUpcoming:
		return "upcoming"
	default:
		return "unknown"
	}
}

// Status is the classification of a task at a point in time
type Status struct {
	State         State
	DaysSinceDone int
	OverdueDays   int
	DaysLeft      int
}

// DaysSinceDone returns whole days elapsed since the last completion, floored.
// ok is false for a task that was never done.
func (t Task) DaysSinceDone(now time.Time) (days int, ok bool) {
	if t.LastDone == nil {
		return 0, false
	}
	elapsed := now.Sub(*t.LastDone)
	days = int(elapsed / day)
	if elapsed < 0 && elapsed%day != 0 {
		days--
	}
	return days, true
}

// IsOverdue is true for a never-done task and from the moment the elapsed
// days reach the interval.
func (t Task) IsOverdue(now time.Time) bool {
	days, ok := t.DaysSinceDone(now)
	if !ok {
		return true
	}
	return days >= t.IntervalDays
}

// DaysUntilDue returns the full interval for a never-done task. It is
// independent of IsOverdue; callers treat never-done as its own state.
func (t Task) DaysUntilDue(now time.Time) int {
	days, ok := t.DaysSinceDone(now)
	if !ok {
		return t.IntervalDays
	}
	if left := t.IntervalDays - days; left > 0 {
		return left
	}
	return 0
}

// Classify buckets the task for rendering
func (t Task) Classify(now time.Time) Status {
	days, ok := t.DaysSinceDone(now)
	switch {
	case !ok:
		return Status{State: StateNeverDone, DaysLeft: t.IntervalDays}
	case days >= t.IntervalDays:
		return Status{State: StateOverdue, DaysSinceDone: days, OverdueDays: days - t.IntervalDays}
	default:
		return Status{State: StateUpcoming, DaysSinceDone: days, DaysLeft: t.IntervalDays - days}
	}
}

// IsDueSoon reports a task that was done at least once, is not overdue and
// falls due within threshold days.
func (t Task) IsDueSoon(now time.Time, threshold int) bool {
	if t.LastDone == nil || t.IsOverdue(now) {
		return false
	}
	left := t.DaysUntilDue(now)
	return left > 0 && left <= threshold
}

// FilterOverdue keeps overdue tasks, never-done ones included
func FilterOverdue(tasks []Task, now time.Time) []Task {
	var out []Task
	for _, t := range tasks {
		if t.IsOverdue(now) {
			out = append(out, t)
		}
	}
	return out
}

// FilterDueSoon keeps tasks for which IsDueSoon holds
func FilterDueSoon(tasks []Task, now time.Time, threshold int) []Task {
	var out []Task
	for _, t := range tasks {
		if t.IsDueSoon(now, threshold) {
			out = append(out, t)
		}
	}
	return out
}
