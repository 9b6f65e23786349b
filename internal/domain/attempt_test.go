package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseChannelFromString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Channel
		wantErr bool
	}{
		{name: "valid uppercase", input: "EMAIL", want: ChannelEmail},
		{name: "valid lowercase with spaces", input: " linkedin ", want: ChannelLinkedIn},
		{name: "invalid", input: "fax", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseChannelFromString(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("ParseChannelFromString() error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseChannelFromString() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseChannelFromString() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBuildAttemptsOnePerStep(t *testing.T) {
	t.Parallel()

	lostDate := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	lead := &Lead{ID: "lead-1", Status: LeadStatusDisqualified, WinbackStage: StageCold, LostDate: &lostDate}
	sequence := &WinbackSequence{
		ID:   "seq-1",
		Name: "standard winback",
		Steps: []SequenceStep{
			{SequenceID: "seq-1", StepIndex: 0, OffsetDays: 3, Channel: ChannelEmail},
			{SequenceID: "seq-1", StepIndex: 1, OffsetDays: 10, Channel: ChannelCall},
		},
	}

	attempts, err := BuildAttempts(lead, sequence)
	if err != nil {
		t.Fatalf("BuildAttempts() error = %v", err)
	}

	if len(attempts) != 2 {
		t.Fatalf("attempt count = %d, want 2", len(attempts))
	}

	wantDates := []time.Time{lostDate.AddDate(0, 0, 3), lostDate.AddDate(0, 0, 10)}
	for i, attempt := range attempts {
		if attempt.StepIndex != i {
			t.Fatalf("attempt %d step index = %d", i, attempt.StepIndex)
		}
		if !attempt.ScheduledDate.Equal(wantDates[i]) {
			t.Fatalf("attempt %d scheduled = %s, want %s", i, attempt.ScheduledDate, wantDates[i])
		}
		if attempt.Status != AttemptStatusPending {
			t.Fatalf("attempt %d status = %s, want PENDING", i, attempt.Status)
		}
		if attempt.LeadID != "lead-1" || attempt.SequenceID != "seq-1" {
			t.Fatalf("attempt %d references = %s/%s", i, attempt.LeadID, attempt.SequenceID)
		}
		if i > 0 && attempts[i].ScheduledDate.Before(attempts[i-1].ScheduledDate) {
			t.Fatalf("scheduled dates not monotone at step %d", i)
		}
	}
}

func TestBuildAttemptsRequiresLostDate(t *testing.T) {
	t.Parallel()

	sequence := &WinbackSequence{
		ID:    "seq-1",
		Name:  "standard winback",
		Steps: []SequenceStep{{StepIndex: 0, OffsetDays: 0, Channel: ChannelEmail}},
	}

	_, err := BuildAttempts(&Lead{ID: "lead-1"}, sequence)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("BuildAttempts() error = %v, want ErrValidation", err)
	}
}

func TestBuildAttemptsRejectsInvalidSequence(t *testing.T) {
	t.Parallel()

	lostDate := time.Now().UTC()
	lead := &Lead{ID: "lead-1", LostDate: &lostDate}

	tests := []struct {
		name     string
		sequence *WinbackSequence
	}{
		{name: "no steps", sequence: &WinbackSequence{ID: "s", Name: "empty"}},
		{
			name: "decreasing offsets",
			sequence: &WinbackSequence{ID: "s", Name: "bad", Steps: []SequenceStep{
				{StepIndex: 0, OffsetDays: 10, Channel: ChannelEmail},
				{StepIndex: 1, OffsetDays: 3, Channel: ChannelCall},
			}},
		},
		{
			name: "invalid channel",
			sequence: &WinbackSequence{ID: "s", Name: "bad", Steps: []SequenceStep{
				{StepIndex: 0, OffsetDays: 0, Channel: Channel("FAX")},
			}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := BuildAttempts(lead, tt.sequence); !errors.Is(err, ErrValidation) {
				t.Fatalf("BuildAttempts() error = %v, want ErrValidation", err)
			}
		})
	}
}
