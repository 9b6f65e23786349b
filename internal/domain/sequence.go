package domain

import (
	"fmt"
	"strings"
	"time"
)

// Channel represents the outreach channel of a sequence step.
type Channel string

const (
	ChannelEmail    Channel = "EMAIL"
	ChannelCall     Channel = "CALL"
	ChannelLinkedIn Channel = "LINKEDIN"
)

func (c Channel) String() string { return string(c) }

func (c Channel) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelCall, ChannelLinkedIn:
		return true
	}
	return false
}

func ParseChannelFromString(s string) (Channel, error) {
	ch := Channel(strings.ToUpper(strings.TrimSpace(s)))
	if !ch.IsValid() {
		return "", fmt.Errorf("%w: invalid channel %q", ErrValidation, s)
	}
	return ch, nil
}

// WinbackSequence is a named, ordered outreach template. Exactly one active
// sequence should carry the IsDefault flag; enrollment refuses to run without
// an active sequence to fall back on.
type WinbackSequence struct {
	ID        string
	Name      string
	Active    bool
	IsDefault bool
	Steps     []SequenceStep
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SelectDefault picks the canonical outreach sequence from candidates: the
// active sequence flagged default wins; with no flagged sequence the
// earliest-created active one is used. Inactive sequences never win, flag or
// not. Returns ErrNotFound when no sequence is active at all.
func SelectDefault(sequences []WinbackSequence) (*WinbackSequence, error) {
	var fallback *WinbackSequence
	for i := range sequences {
		candidate := &sequences[i]
		if !candidate.Active {
			continue
		}
		if candidate.IsDefault {
			return candidate, nil
		}
		if fallback == nil || candidate.CreatedAt.Before(fallback.CreatedAt) {
			fallback = candidate
		}
	}
	if fallback == nil {
		return nil, fmt.Errorf("%w: no active winback sequence", ErrNotFound)
	}
	return fallback, nil
}

// SequenceStep is one templated touch within a sequence. OffsetDays counts
// from the lead's lost date, not from enrollment time.
type SequenceStep struct {
	ID              string
	SequenceID      string
	StepIndex       int
	OffsetDays      int
	Channel         Channel
	Subject         *string
	MessageTemplate *string
	CreatedAt       time.Time
}

func (s *WinbackSequence) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: sequence name is required", ErrValidation)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("%w: sequence must define at least one step", ErrValidation)
	}

	for i, step := range s.Steps {
		if step.StepIndex != i {
			return fmt.Errorf("%w: step index %d out of order (position %d)", ErrValidation, step.StepIndex, i)
		}
		if step.OffsetDays < 0 {
			return fmt.Errorf("%w: step %d has negative day offset", ErrValidation, i)
		}
		if !step.Channel.IsValid() {
			return fmt.Errorf("%w: step %d has invalid channel %q", ErrValidation, i, step.Channel)
		}
		if i > 0 && step.OffsetDays < s.Steps[i-1].OffsetDays {
			return fmt.Errorf("%w: step %d offset decreases", ErrValidation, i)
		}
	}

	return nil
}
