package domain

import (
	"errors"
	"testing"
	"time"
)

func sequenceAt(id string, createdDaysAgo int, active, isDefault bool) WinbackSequence {
	return WinbackSequence{
		ID:        id,
		Name:      "Sequence " + id,
		Active:    active,
		IsDefault: isDefault,
		CreatedAt: time.Now().AddDate(0, 0, -createdDaysAgo),
	}
}

func TestSelectDefault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		sequences []WinbackSequence
		wantID    string
		wantErr   bool
	}{
		{
			name: "default flag beats older unflagged active",
			sequences: []WinbackSequence{
				sequenceAt("old-unflagged", 100, true, false),
				sequenceAt("new-default", 1, true, true),
			},
			wantID: "new-default",
		},
		{
			name: "earliest created wins among unflagged actives",
			sequences: []WinbackSequence{
				sequenceAt("newer", 5, true, false),
				sequenceAt("oldest", 90, true, false),
				sequenceAt("middle", 30, true, false),
			},
			wantID: "oldest",
		},
		{
			name: "inactive sequence never wins even when flagged default",
			sequences: []WinbackSequence{
				sequenceAt("inactive-default", 1, false, true),
				sequenceAt("active-plain", 10, true, false),
			},
			wantID: "active-plain",
		},
		{
			name: "zero active sequences",
			sequences: []WinbackSequence{
				sequenceAt("inactive-a", 10, false, false),
				sequenceAt("inactive-b", 20, false, true),
			},
			wantErr: true,
		},
		{
			name:    "empty candidate set",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := SelectDefault(tt.sequences)
			if tt.wantErr {
				if !errors.Is(err, ErrNotFound) {
					t.Fatalf("SelectDefault() error = %v, want ErrNotFound", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SelectDefault() error = %v", err)
			}
			if got.ID != tt.wantID {
				t.Fatalf("SelectDefault() = %s, want %s", got.ID, tt.wantID)
			}
		})
	}
}
