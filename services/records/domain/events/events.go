package events

import (
	"time"

	"github.com/google/uuid"
)

// Watermill topics published by the records context.
const (
	// TopicItemCreated is published when an item (with or without generated
	// tasks) is added to the store.
	TopicItemCreated = "records.item.created"

	// TopicTaskCompleted is published when a maintenance task is completed
	// and its next occurrence is scheduled.
	TopicTaskCompleted = "records.task.completed"
)

// ItemCreatedEvent is published after a new item is persisted.
type ItemCreatedEvent struct {
	EventID          uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version          int       `json:"version"`  // Schema version; increment on breaking changes
	ItemID           string    `json:"item_id"`
	Kind             string    `json:"kind"`
	Make             string    `json:"make"`
	Model            string    `json:"model"`
	Year             int       `json:"year"`
	TaskCount        int       `json:"task_count"`         // tasks created alongside the item
	PendingTaskCount int       `json:"pending_task_count"` // non-completed subset of TaskCount
	OccurredAt       time.Time `json:"occurred_at"`
}

// TaskCompletedEvent is published after a task completes. NextTaskID refers
// to the freshly scheduled next occurrence.
type TaskCompletedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	TaskID     string    `json:"task_id"`
	NextTaskID string    `json:"next_task_id"`
	ItemID     string    `json:"item_id"`
	Title      string    `json:"title"`
	UsageValue int       `json:"usage_value"`
	OccurredAt time.Time `json:"occurred_at"`
}
