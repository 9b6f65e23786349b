package service

import (
	"context"
	"sync"
	"time"

	"github.com/kursadbilgin/winback-engine/internal/domain"
	"github.com/kursadbilgin/winback-engine/internal/joblock"
	"github.com/kursadbilgin/winback-engine/internal/outreach"
	"github.com/kursadbilgin/winback-engine/internal/queue"
	"github.com/kursadbilgin/winback-engine/internal/repository"
)

type fakeLeadRepo struct {
	mu             sync.Mutex
	eligible       []domain.Lead
	eligibleErr    error
	advanced       []string
	advanceErr     error
	resets         []string
	resetErr       error
	eligibleCalls  int
	eligibleLimit  int
	eligibleWindow domain.EligibilityWindow
}

func (f *fakeLeadRepo) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	for i := range f.eligible {
		if f.eligible[i].ID == id {
			lead := f.eligible[i]
			return &lead, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeLeadRepo) GetEligibleForWinback(
	ctx context.Context,
	window domain.EligibilityWindow,
	asOf time.Time,
	limit int,
) ([]domain.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.eligibleCalls++
	f.eligibleLimit = limit
	f.eligibleWindow = window
	if f.eligibleErr != nil {
		return nil, f.eligibleErr
	}
	return append([]domain.Lead(nil), f.eligible...), nil
}

func (f *fakeLeadRepo) AdvanceWinbackStage(ctx context.Context, id string, stage domain.WinbackStage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.advanceErr != nil {
		return f.advanceErr
	}
	f.advanced = append(f.advanced, id)
	return nil
}

func (f *fakeLeadRepo) ResetWinbackStage(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resetErr != nil {
		return f.resetErr
	}
	f.resets = append(f.resets, id)
	return nil
}

type fakeSequenceRepo struct {
	sequence   *domain.WinbackSequence
	defaultErr error
	byIDErr    error
	byIDCalls  int
}

func (f *fakeSequenceRepo) GetDefault(ctx context.Context) (*domain.WinbackSequence, error) {
	if f.defaultErr != nil {
		return nil, f.defaultErr
	}
	return f.sequence, nil
}

func (f *fakeSequenceRepo) GetByID(ctx context.Context, id string) (*domain.WinbackSequence, error) {
	f.byIDCalls++
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	if f.sequence == nil || f.sequence.ID != id {
		return nil, domain.ErrNotFound
	}
	return f.sequence, nil
}

type enrollCall struct {
	leadID   string
	attempts []domain.WinbackAttempt
}

type fakeEnrollmentRepo struct {
	mu    sync.Mutex
	calls []enrollCall
	// errByLead returns that error for the named lead only.
	errByLead map[string]error
}

func (f *fakeEnrollmentRepo) EnrollLead(
	ctx context.Context,
	leadID string,
	enrolledAt time.Time,
	attempts []domain.WinbackAttempt,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errByLead[leadID]; ok {
		return err
	}
	f.calls = append(f.calls, enrollCall{leadID: leadID, attempts: attempts})
	return nil
}

type fakeAttemptRepo struct {
	mu           sync.Mutex
	due          []repository.DueAttempt
	dueErr       error
	finalized    map[string]repository.Finalization
	finalizeErr  error
	requestedCap int
}

func (f *fakeAttemptRepo) GetDueWithLeads(ctx context.Context, asOf time.Time, limit int) ([]repository.DueAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requestedCap = limit
	if f.dueErr != nil {
		return nil, f.dueErr
	}
	return append([]repository.DueAttempt(nil), f.due...), nil
}

func (f *fakeAttemptRepo) Finalize(ctx context.Context, id string, outcome repository.Finalization) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finalizeErr != nil {
		return f.finalizeErr
	}
	if f.finalized == nil {
		f.finalized = make(map[string]repository.Finalization)
	}
	f.finalized[id] = outcome
	return nil
}

func (f *fakeAttemptRepo) ListByLead(ctx context.Context, leadID string) ([]domain.WinbackAttempt, error) {
	return nil, nil
}

func (f *fakeAttemptRepo) List(ctx context.Context, params repository.AttemptListParams) ([]domain.WinbackAttempt, int64, error) {
	return nil, 0, nil
}

type fakeJobRunRepo struct {
	mu   sync.Mutex
	runs []domain.JobRun
	err  error
}

func (f *fakeJobRunRepo) Create(ctx context.Context, run *domain.JobRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.runs = append(f.runs, *run)
	return nil
}

type fakeLocker struct {
	mu       sync.Mutex
	err      error
	acquired []string
	released int
}

func (f *fakeLocker) Acquire(ctx context.Context, job string) (func(context.Context) error, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.acquired = append(f.acquired, job)
	return func(context.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.released++
		return nil
	}, nil
}

var _ joblock.Locker = (*fakeLocker)(nil)

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.AttemptEvent
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, event queue.AttemptEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

// stubHandler returns a fixed result for one channel and records calls.
type stubHandler struct {
	channel domain.Channel
	result  outreach.Result
	calls   int
	steps   []*domain.SequenceStep
}

func (h *stubHandler) Channel() domain.Channel { return h.channel }

func (h *stubHandler) Execute(
	ctx context.Context,
	attempt domain.WinbackAttempt,
	lead domain.Lead,
	step *domain.SequenceStep,
) outreach.Result {
	h.calls++
	h.steps = append(h.steps, step)
	return h.result
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func testSequence() *domain.WinbackSequence {
	return &domain.WinbackSequence{
		ID:        "seq-1",
		Name:      "Standard Winback",
		Active:    true,
		IsDefault: true,
		Steps: []domain.SequenceStep{
			{
				ID:              "step-0",
				SequenceID:      "seq-1",
				StepIndex:       0,
				OffsetDays:      0,
				Channel:         domain.ChannelEmail,
				Subject:         strPtr("We miss you, {{.Name}}"),
				MessageTemplate: strPtr("Hi {{.Name}}, let's reconnect."),
			},
			{
				ID:         "step-1",
				SequenceID: "seq-1",
				StepIndex:  1,
				OffsetDays: 3,
				Channel:    domain.ChannelCall,
			},
			{
				ID:         "step-2",
				SequenceID: "seq-1",
				StepIndex:  2,
				OffsetDays: 10,
				Channel:    domain.ChannelLinkedIn,
			},
		},
	}
}

func testLead(id string, lostDaysAgo int) domain.Lead {
	lost := time.Now().AddDate(0, 0, -lostDaysAgo)
	return domain.Lead{
		ID:           id,
		Name:         "Ada Lovelace",
		Email:        strPtr("ada@example.com"),
		Phone:        strPtr("+15551234567"),
		Status:       domain.LeadStatusDisqualified,
		WinbackStage: domain.StageCold,
		LostDate:     &lost,
		LostReason:   strPtr("budget cut"),
	}
}
