package outreach

import (
	"context"

	"github.com/kursadbilgin/winback-engine/internal/domain"
)

// LinkedInHandler never sends anything. Outbound LinkedIn messaging is manual,
// so the attempt is queued for a person and kept out of further automation.
type LinkedInHandler struct{}

func NewLinkedInHandler() *LinkedInHandler { return &LinkedInHandler{} }

func (h *LinkedInHandler) Channel() domain.Channel { return domain.ChannelLinkedIn }

func (h *LinkedInHandler) Execute(_ context.Context, _ domain.WinbackAttempt, _ domain.Lead, _ *domain.SequenceStep) Result {
	return Result{
		Outcome:  OutcomePendingHuman,
		Notes:    "queued for manual LinkedIn outreach",
		Response: map[string]string{"handler": "linkedin-manual"},
	}
}
