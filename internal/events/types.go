package events

import (
	"time"

	"github.com/google/uuid"
)

// Event represents the base event structure with common fields
type Event struct {
	CorrelationID string    `json:"correlation_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewEvent creates a new base event with generated correlation ID
func NewEvent() Event {
	return Event{
		CorrelationID: uuid.New().String(),
		Timestamp:     time.Now(),
	}
}

// Source identifies the surface that caused a change
type Source string

const (
	SourceAPI       Source = "api"
	SourceBot       Source = "bot"
	SourceCLI       Source = "cli"
	SourceScheduler Source = "scheduler"
)

// TaskCompleted is published after a completion has been committed
type TaskCompleted struct {
	Event
	TaskID       uint      `json:"task_id"`
	TaskName     string    `json:"task_name"`
	IntervalDays int       `json:"interval_days"`
	ChatID       int64     `json:"chat_id"`
	CompletedBy  string    `json:"completed_by"`
	CompletedAt  time.Time `json:"completed_at"`
	Source       Source    `json:"source"`
}

// TaskCreated is published when a chore is added
type TaskCreated struct {
	Event
	TaskID       uint   `json:"task_id"`
	Name         string `json:"name"`
	IntervalDays int    `json:"interval_days"`
	Source       Source `json:"source"`
}

// TaskDeleted is published when a chore and its history are removed
type TaskDeleted struct {
	Event
	TaskID uint   `json:"task_id"`
	Name   string `json:"name"`
	Source Source `json:"source"`
}

// ShoppingItemAdded is published when an item lands on the shopping list
type ShoppingItemAdded struct {
	Event
	ItemID   uint   `json:"item_id"`
	Text     string `json:"text"`
	Category string `json:"category"`
	Source   Source `json:"source"`
}

// DigestKind names a reminder digest
type DigestKind string

const (
	DigestDaily  DigestKind = "daily"
	DigestWeekly DigestKind = "weekly"
)

// DigestSent reports the outcome of one digest fan-out
type DigestSent struct {
	Event
	Kind       DigestKind `json:"kind"`
	Recipients int        `json:"recipients"`
	Delivered  int        `json:"delivered"`
}

// Event topics constants
const (
	TopicTaskCompleted     = "task.completed"
	TopicTaskCreated       = "task.created"
	TopicTaskDeleted       = "task.deleted"
	TopicShoppingItemAdded = "shopping.item_added"
	TopicDigestSent        = "digest.sent"
)
