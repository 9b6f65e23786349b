package domain

import (
	"fmt"
	"strings"
	"time"
)

// AttemptStatus represents the lifecycle state of a winback attempt.
type AttemptStatus string

const (
	AttemptStatusPending AttemptStatus = "PENDING"
	AttemptStatusSent    AttemptStatus = "SENT"
	AttemptStatusFailed  AttemptStatus = "FAILED"
	AttemptStatusSkipped AttemptStatus = "SKIPPED"
)

func (s AttemptStatus) String() string { return string(s) }

func (s AttemptStatus) IsValid() bool {
	switch s {
	case AttemptStatusPending, AttemptStatusSent, AttemptStatusFailed, AttemptStatusSkipped:
		return true
	}
	return false
}

func ParseAttemptStatusFromString(s string) (AttemptStatus, error) {
	st := AttemptStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid attempt status %q", ErrValidation, s)
	}
	return st, nil
}

// WinbackAttempt is one concrete, dated unit of outreach. Attempts are created
// in bulk at enrollment, one per sequence step, and finalized independently by
// the dispatch job. A finalized FAILED attempt is never re-created or retried.
//
// A LinkedIn attempt queued for manual handling keeps status PENDING but gets a
// non-nil ExecutedDate, which removes it from due selection.
type WinbackAttempt struct {
	ID            string
	LeadID        string
	SequenceID    string
	StepIndex     int
	Channel       Channel
	ScheduledDate time.Time
	Status        AttemptStatus
	ExecutedDate  *time.Time
	Notes         *string
	ResponseData  *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BuildAttempts materializes one pending attempt per sequence step for a lead.
// Scheduled dates are computed from the lead's lost date plus each step's day
// offset, so they increase monotonically with step index for a valid sequence.
// IDs are left empty for the caller to assign.
func BuildAttempts(lead *Lead, sequence *WinbackSequence) ([]WinbackAttempt, error) {
	if lead == nil {
		return nil, fmt.Errorf("%w: lead is required", ErrValidation)
	}
	if lead.LostDate == nil {
		return nil, fmt.Errorf("%w: lead %s has no lost date", ErrValidation, lead.ID)
	}
	if sequence == nil {
		return nil, fmt.Errorf("%w: sequence is required", ErrValidation)
	}
	if err := sequence.Validate(); err != nil {
		return nil, err
	}

	attempts := make([]WinbackAttempt, 0, len(sequence.Steps))
	for _, step := range sequence.Steps {
		attempts = append(attempts, WinbackAttempt{
			LeadID:        lead.ID,
			SequenceID:    sequence.ID,
			StepIndex:     step.StepIndex,
			Channel:       step.Channel,
			ScheduledDate: lead.LostDate.AddDate(0, 0, step.OffsetDays),
			Status:        AttemptStatusPending,
		})
	}

	return attempts, nil
}
