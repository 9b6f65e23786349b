package domain

import (
	"testing"
	"time"
)

func TestEligibilityWindowBounds(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	oldest, newest := DefaultEligibilityWindow.Bounds(now)

	if want := now.AddDate(0, 0, -365); !oldest.Equal(want) {
		t.Fatalf("oldest = %s, want %s", oldest, want)
	}
	if want := now.AddDate(0, 0, -30); !newest.Equal(want) {
		t.Fatalf("newest = %s, want %s", newest, want)
	}
}

func TestEligibilityWindowValidate(t *testing.T) {
	t.Parallel()

	if err := (EligibilityWindow{MinDays: 30, MaxDays: 365}).Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if err := (EligibilityWindow{MinDays: 365, MaxDays: 30}).Validate(); err == nil {
		t.Fatal("inverted window should be invalid")
	}
	if err := (EligibilityWindow{MinDays: -1, MaxDays: 30}).Validate(); err == nil {
		t.Fatal("negative minimum should be invalid")
	}
}

func TestIsUnrecoverableLostReason(t *testing.T) {
	t.Parallel()

	strPtr := func(s string) *string { return &s }

	tests := []struct {
		name   string
		reason *string
		want   bool
	}{
		{name: "nil reason is recoverable", reason: nil, want: false},
		{name: "ordinary reason is recoverable", reason: strPtr("budget cut this quarter"), want: false},
		{name: "competitor locked in", reason: strPtr("competitor locked in"), want: true},
		{name: "case and spacing normalized", reason: strPtr("  Competitor Locked In "), want: true},
		{name: "do not contact", reason: strPtr("do not contact"), want: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsUnrecoverableLostReason(tt.reason); got != tt.want {
				t.Fatalf("IsUnrecoverableLostReason() = %v, want %v", got, tt.want)
			}
		})
	}
}
