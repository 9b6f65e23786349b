package domain

import "time"

// TaskStatus represents the completion state of a lead task.
type TaskStatus string

const (
	TaskStatusOpen TaskStatus = "OPEN"
	TaskStatusDone TaskStatus = "DONE"
)

func (s TaskStatus) String() string { return string(s) }

// LeadTask is a follow-up task surfaced in the CRM task list. The call channel
// produces one task per dispatched attempt instead of contacting the lead directly.
type LeadTask struct {
	ID          string
	LeadID      string
	Title       string
	Description string
	DueDate     time.Time
	Status      TaskStatus
	CreatedAt   time.Time
}
