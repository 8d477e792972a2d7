package chore

import (
	"sort"
	"time"

	"chorebot-api/internal/user"
)

const topTaskLimit = 5

// UserStats is one user's completions over a statistics window
type UserStats struct {
	ChatID int64    `json:"chat_id"`
	Name   string   `json:"name"`
	Count  int      `json:"count"`
	Tasks  []string `json:"tasks"`
}

// TaskCount is a task name with its number of completions
type TaskCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Statistics summarizes task history over a lookback window. Weekdays is
// indexed by time.Weekday, so index 0 is Sunday.
type Statistics struct {
	PeriodDays int         `json:"period_days"`
	Since      time.Time   `json:"since"`
	Total      int         `json:"total"`
	Users      []UserStats `json:"users"`
	TopTasks   []TaskCount `json:"top_tasks"`
	Weekdays   [7]int      `json:"weekdays"`
}

// Share returns count as a percentage of the window total
func (s Statistics) Share(count int) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(count) / float64(s.Total) * 100
}

// Aggregate builds Statistics from history records. Weekdays are taken in loc.
func Aggregate(records []HistoryRecord, days int, since time.Time, loc *time.Location) Statistics {
	if loc == nil {
		loc = time.UTC
	}
	stats := Statistics{
		PeriodDays: days,
		Since:      since,
		Users:      []UserStats{},
		TopTasks:   []TaskCount{},
	}

	byUser := make(map[int64]*UserStats)
	seenTask := make(map[int64]map[string]bool)
	byTask := make(map[string]int)

	for _, rec := range records {
		stats.Total++
		stats.Weekdays[rec.DoneAt.In(loc).Weekday()]++
		byTask[rec.TaskName]++

		us, ok := byUser[rec.DoneBy]
		if !ok {
			us = &UserStats{ChatID: rec.DoneBy, Name: recordUserName(rec), Tasks: []string{}}
			byUser[rec.DoneBy] = us
			seenTask[rec.DoneBy] = make(map[string]bool)
		}
		us.Count++
		if !seenTask[rec.DoneBy][rec.TaskName] {
			seenTask[rec.DoneBy][rec.TaskName] = true
			us.Tasks = append(us.Tasks, rec.TaskName)
		}
	}

	for _, us := range byUser {
		stats.Users = append(stats.Users, *us)
	}
	sort.Slice(stats.Users, func(i, j int) bool {
		if stats.Users[i].Count != stats.Users[j].Count {
			return stats.Users[i].Count > stats.Users[j].Count
		}
		return stats.Users[i].Name < stats.Users[j].Name
	})

	for name, count := range byTask {
		stats.TopTasks = append(stats.TopTasks, TaskCount{Name: name, Count: count})
	}
	sort.Slice(stats.TopTasks, func(i, j int) bool {
		if stats.TopTasks[i].Count != stats.TopTasks[j].Count {
			return stats.TopTasks[i].Count > stats.TopTasks[j].Count
		}
		return stats.TopTasks[i].Name < stats.TopTasks[j].Name
	})
	if len(stats.TopTasks) > topTaskLimit {
		stats.TopTasks = stats.TopTasks[:topTaskLimit]
	}

	return stats
}

func recordUserName(rec HistoryRecord) string {
	if rec.UserFirstName == nil && rec.UserName == nil {
		return user.UnknownUserName
	}
	return user.User{ChatID: rec.DoneBy, FirstName: rec.UserFirstName, Username: rec.UserName}.DisplayName()
}

// Progress is the on-time summary shown by /stats. Overdue includes tasks
// that were never done.
type Progress struct {
	Total     int `json:"total"`
	OnTime    int `json:"on_time"`
	Overdue   int `json:"overdue"`
	NeverDone int `json:"never_done"`
	Percent   int `json:"percent"`
}

// Summarize computes Progress for tasks at now
func Summarize(tasks []Task, now time.Time) Progress {
	p := Progress{Total: len(tasks)}
	for _, t := range tasks {
		if t.LastDone == nil {
			p.NeverDone++
		}
		if t.IsOverdue(now) {
			p.Overdue++
		} else {
			p.OnTime++
		}
	}
	if p.Total > 0 {
		p.Percent = p.OnTime * 100 / p.Total
	}
	return p
}

// NextUp orders tasks overdue first, then by days until due, and keeps the
// first limit.
func NextUp(tasks []Task, now time.Time, limit int) []Task {
	sorted := make([]Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		oi, oj := sorted[i].IsOverdue(now), sorted[j].IsOverdue(now)
		if oi != oj {
			return oi
		}
		return sorted[i].DaysUntilDue(now) < sorted[j].DaysUntilDue(now)
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// CompletionRate returns the percentage of completions in [windowStart, ...)
// that followed the previous completion, or the task's creation, within
// interval_days + 1 days. completions must be sorted ascending and reach back
// at least interval_days + 1 days before windowStart.
func CompletionRate(task Task, completions []time.Time, windowStart time.Time) float64 {
	grace := time.Duration(task.IntervalDays+1) * day
	prev := task.CreatedAt
	total, onTime := 0, 0
	for _, c := range completions {
		if !c.Before(windowStart) {
			total++
			if c.Sub(prev) <= grace {
				onTime++
			}
		}
		prev = c
	}
	if total == 0 {
		return 0
	}
	return float64(onTime) / float64(total) * 100
}
