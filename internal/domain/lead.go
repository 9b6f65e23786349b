package domain

import (
	"fmt"
	"strings"
	"time"
)

// LeadStatus represents the pipeline lifecycle state of a lead.
type LeadStatus string

const (
	LeadStatusActive       LeadStatus = "ACTIVE"
	LeadStatusDisqualified LeadStatus = "DISQUALIFIED"
)

func (s LeadStatus) String() string { return string(s) }

func (s LeadStatus) IsValid() bool {
	switch s {
	case LeadStatusActive, LeadStatusDisqualified:
		return true
	}
	return false
}

// WinbackStage tracks how far a lost lead has moved through winback outreach.
// Stages only move forward: COLD -> CAMPAIGN_SENT.
type WinbackStage string

const (
	StageCold         WinbackStage = "COLD"
	StageCampaignSent WinbackStage = "CAMPAIGN_SENT"
)

func (s WinbackStage) String() string { return string(s) }

func (s WinbackStage) IsValid() bool {
	switch s {
	case StageCold, StageCampaignSent:
		return true
	}
	return false
}

func ParseWinbackStageFromString(s string) (WinbackStage, error) {
	st := WinbackStage(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid winback stage %q", ErrValidation, s)
	}
	return st, nil
}

// Lead is a prospect record owned by the CRM. The winback jobs only touch
// the winback fields; everything else is mutated by unrelated CRM flows.
type Lead struct {
	ID                 string
	Name               string
	Email              *string
	Phone              *string
	Status             LeadStatus
	WinbackStage       WinbackStage
	LostDate           *time.Time
	LostReason         *string
	LastWinbackAttempt *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// EligibilityWindow bounds how long ago a lead must have been lost to qualify
// for winback enrollment, measured in whole days from "now".
type EligibilityWindow struct {
	MinDays int
	MaxDays int
}

// DefaultEligibilityWindow selects leads lost at least 30 and at most 365 days ago.
var DefaultEligibilityWindow = EligibilityWindow{MinDays: 30, MaxDays: 365}

// Bounds returns the [oldest, newest] lost_date range for the window.
func (w EligibilityWindow) Bounds(now time.Time) (oldest, newest time.Time) {
	oldest = now.AddDate(0, 0, -w.MaxDays)
	newest = now.AddDate(0, 0, -w.MinDays)
	return oldest, newest
}

func (w EligibilityWindow) Validate() error {
	if w.MinDays < 0 || w.MaxDays <= 0 || w.MinDays >= w.MaxDays {
		return fmt.Errorf("%w: invalid eligibility window [%d, %d]", ErrValidation, w.MinDays, w.MaxDays)
	}
	return nil
}

// unrecoverableLostReasons excludes leads whose loss cause cannot be won back.
// Having a lost reason is not itself exclusionary; only these specific reasons are.
var unrecoverableLostReasons = map[string]struct{}{
	"competitor locked in": {},
	"company dissolved":    {},
	"do not contact":       {},
}

// IsUnrecoverableLostReason reports whether a lost reason disqualifies a lead
// from winback outreach.
func IsUnrecoverableLostReason(reason *string) bool {
	if reason == nil {
		return false
	}
	_, found := unrecoverableLostReasons[strings.ToLower(strings.TrimSpace(*reason))]
	return found
}
