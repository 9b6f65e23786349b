package outreach

import (
	"context"

	"github.com/kursadbilgin/winback-engine/internal/domain"
)

// Outcome is the uniform result of executing one outreach attempt.
type Outcome string

const (
	// OutcomeSent means the automated action completed.
	OutcomeSent Outcome = "SENT"
	// OutcomeFailed means the automated action was tried and did not complete.
	OutcomeFailed Outcome = "FAILED"
	// OutcomeSkipped means no handler was willing to act on the attempt.
	OutcomeSkipped Outcome = "SKIPPED"
	// OutcomePendingHuman means the attempt was handed to a person; it is not
	// an error and must not be retried automatically.
	OutcomePendingHuman Outcome = "PENDING_HUMAN"
)

// Result carries the outcome plus audit metadata for the attempt record.
// Response names the automated path that handled the attempt.
type Result struct {
	Outcome  Outcome
	Notes    string
	Response map[string]string
}

// Handler executes one channel's outreach action. Implementations must not
// panic on missing lead contact details; they report OutcomeFailed instead.
type Handler interface {
	Channel() domain.Channel
	Execute(ctx context.Context, attempt domain.WinbackAttempt, lead domain.Lead, step *domain.SequenceStep) Result
}

// Registry resolves a channel to its handler. Unknown channel values resolve
// to nothing; callers finalize those attempts as skipped.
type Registry struct {
	handlers map[domain.Channel]Handler
}

func NewRegistry(handlers ...Handler) *Registry {
	registry := &Registry{handlers: make(map[domain.Channel]Handler, len(handlers))}
	for _, h := range handlers {
		if h == nil {
			continue
		}
		registry.handlers[h.Channel()] = h
	}
	return registry
}

func (r *Registry) Resolve(channel domain.Channel) (Handler, bool) {
	if r == nil {
		return nil, false
	}
	h, ok := r.handlers[channel]
	return h, ok
}
