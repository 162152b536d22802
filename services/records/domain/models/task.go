package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle state of a maintenance task.
type TaskStatus string

const (
	StatusScheduled TaskStatus = "scheduled"
	StatusUpcoming  TaskStatus = "upcoming"
	StatusOverdue   TaskStatus = "overdue"
	StatusCompleted TaskStatus = "completed"
)

// MaintenanceTask is a recurring maintenance activity tied to one item.
//
// ItemLabel is intentionally denormalized for display ("2022 Toyota Camry")
// and is not re-derived when the owning item is edited.
//
// Invariant: status == completed implies LastCompletedDate is set; any other
// status implies NextDueDate is set and is the authoritative sort key.
type MaintenanceTask struct {
	ID          string `json:"id"`
	ItemID      string `json:"itemId"`
	ItemLabel   string `json:"itemLabel"`
	Title       string `json:"title"`
	Description string `json:"description"`

	// Recurrence intervals; all optional, at least one should be present.
	IntervalMonths int `json:"intervalMonths,omitempty"`
	IntervalMiles  int `json:"intervalMiles,omitempty"`
	IntervalHours  int `json:"intervalHours,omitempty"`

	LastCompletedDate    time.Time `json:"lastCompletedDate,omitzero"`
	LastCompletedMileage int       `json:"lastCompletedMileage,omitempty"`
	LastCompletedHours   int       `json:"lastCompletedHours,omitempty"`

	NextDueDate    time.Time `json:"nextDueDate"`
	NextDueMileage int       `json:"nextDueMileage,omitempty"`
	NextDueHours   int       `json:"nextDueHours,omitempty"`

	Status TaskStatus `json:"status"`
	Parts  []Part     `json:"parts,omitempty"`
}

// NewTaskID returns a fresh task identifier, unique across the store.
func NewTaskID() string {
	return uuid.NewString()
}

// DueThreshold returns the usage threshold on the axis matching the item's
// kind (mileage for vehicles, hours for home items) and whether one is set.
func (t MaintenanceTask) DueThreshold(kind ItemKind) (int, bool) {
	if kind == KindHome {
		return t.NextDueHours, t.NextDueHours > 0
	}
	return t.NextDueMileage, t.NextDueMileage > 0
}

// NextDue computes the next occurrence markers from the task's intervals,
// anchored at the given time and usage counter value. The due date falls back
// to now when no month interval is set; due mileage/hours are zero when the
// respective interval is absent.
func (t MaintenanceTask) NextDue(now time.Time, usage int) (dueDate time.Time, dueMileage, dueHours int) {
	dueDate = now
	if t.IntervalMonths > 0 {
		dueDate = now.AddDate(0, t.IntervalMonths, 0)
	}
	if t.IntervalMiles > 0 {
		dueMileage = usage + t.IntervalMiles
	}
	if t.IntervalHours > 0 {
		dueHours = usage + t.IntervalHours
	}
	return dueDate, dueMileage, dueHours
}
