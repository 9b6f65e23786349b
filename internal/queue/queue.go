package queue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kursadbilgin/winback-engine/internal/domain"
)

// AttemptEventsQueue receives one event per finalized winback attempt.
// Downstream CRM surfaces (task lists, timeline views) consume it; this
// service only publishes.
const AttemptEventsQueue = "winback.attempt-events"

// Publisher publishes attempt outcome events.
type Publisher interface {
	Publish(ctx context.Context, event AttemptEvent) error
	Close() error
}

// AttemptEvent is the broker payload describing one finalized attempt.
type AttemptEvent struct {
	AttemptID  string               `json:"attemptId"`
	LeadID     string               `json:"leadId"`
	SequenceID string               `json:"sequenceId"`
	StepIndex  int                  `json:"stepIndex"`
	Channel    domain.Channel       `json:"channel"`
	Status     domain.AttemptStatus `json:"status"`
	OccurredAt time.Time            `json:"occurredAt"`
}

func (e AttemptEvent) Validate() error {
	if strings.TrimSpace(e.AttemptID) == "" {
		return fmt.Errorf("attemptId is required")
	}
	if strings.TrimSpace(e.LeadID) == "" {
		return fmt.Errorf("leadId is required")
	}
	if e.StepIndex < 0 {
		return fmt.Errorf("stepIndex must not be negative")
	}
	if !e.Status.IsValid() {
		return fmt.Errorf("invalid status %q", e.Status)
	}
	if e.OccurredAt.IsZero() {
		return fmt.Errorf("occurredAt is required")
	}
	return nil
}
