package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kursadbilgin/winback-engine/internal/domain"
	"github.com/kursadbilgin/winback-engine/internal/joblock"
	"github.com/kursadbilgin/winback-engine/internal/observability"
	"github.com/kursadbilgin/winback-engine/internal/outreach"
	"github.com/kursadbilgin/winback-engine/internal/queue"
	"github.com/kursadbilgin/winback-engine/internal/repository"
)

// DispatchResult aggregates one dispatch run's counters.
type DispatchResult struct {
	RunDate        time.Time `json:"runDate"`
	Processed      int       `json:"processed"`
	EmailsSent     int       `json:"emailsSent"`
	CallsCreated   int       `json:"callsCreated"`
	LinkedInQueued int       `json:"linkedinQueued"`
	Skipped        int       `json:"skipped"`
	Failed         int       `json:"failed"`
	Errors         int       `json:"errors"`
}

// DispatchService runs the due-attempt job: it picks up pending attempts
// whose scheduled date has arrived, hands each one to its channel handler,
// and finalizes the attempt with the handler's outcome. One bad attempt
// never blocks the rest of the batch.
type DispatchService struct {
	attempts  repository.AttemptRepository
	leads     repository.LeadRepository
	sequences repository.SequenceRepository
	jobRuns   repository.JobRunRepository
	registry  *outreach.Registry
	publisher queue.Publisher
	locker    joblock.Locker
	metrics   *observability.Metrics
	logger    *zap.Logger

	batchSize int
	now       func() time.Time
}

func NewDispatchService(
	attempts repository.AttemptRepository,
	leads repository.LeadRepository,
	sequences repository.SequenceRepository,
	jobRuns repository.JobRunRepository,
	registry *outreach.Registry,
	publisher queue.Publisher,
	locker joblock.Locker,
	metrics *observability.Metrics,
	logger *zap.Logger,
	batchSize int,
) *DispatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &DispatchService{
		attempts:  attempts,
		leads:     leads,
		sequences: sequences,
		jobRuns:   jobRuns,
		registry:  registry,
		publisher: publisher,
		locker:    locker,
		metrics:   metrics,
		logger:    logger,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// Run executes one dispatch pass over at most batchSize due attempts.
// Returns joblock.ErrLockHeld when another dispatch run is already in flight.
func (s *DispatchService) Run(ctx context.Context) (*DispatchResult, error) {
	release, err := s.locker.Acquire(ctx, domain.JobDispatch)
	if err != nil {
		return nil, fmt.Errorf("acquire dispatch lock: %w", err)
	}
	defer func() {
		if err := release(ctx); err != nil {
			s.logger.Warn("failed to release dispatch lock", zap.Error(err))
		}
	}()

	start := s.now()
	logger := observability.WithContextLogger(s.logger, ctx).With(
		zap.String("job", domain.JobDispatch),
	)

	due, err := s.attempts.GetDueWithLeads(ctx, start, s.batchSize)
	if err != nil {
		s.observeRun(start, false)
		return nil, fmt.Errorf("select due attempts: %w", err)
	}

	result := &DispatchResult{RunDate: start, Processed: len(due)}
	steps := newStepCache(s.sequences)

	for i := range due {
		if err := s.dispatchAttempt(ctx, logger, &due[i], steps, result); err != nil {
			result.Errors++
			logger.Error("failed to dispatch attempt",
				zap.String("attempt_id", due[i].Attempt.ID),
				zap.String("lead_id", due[i].Lead.ID),
				zap.Error(err),
			)
		}
	}

	recordJobRun(ctx, s.jobRuns, logger, domain.JobDispatch, start, true, result)
	s.observeRun(start, true)

	logger.Info("dispatch run finished",
		zap.Int("processed", result.Processed),
		zap.Int("emails_sent", result.EmailsSent),
		zap.Int("calls_created", result.CallsCreated),
		zap.Int("linkedin_queued", result.LinkedInQueued),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Int("errors", result.Errors),
	)
	return result, nil
}

func (s *DispatchService) dispatchAttempt(
	ctx context.Context,
	logger *zap.Logger,
	due *repository.DueAttempt,
	steps *stepCache,
	result *DispatchResult,
) error {
	attempt := due.Attempt

	step, err := steps.stepFor(ctx, attempt.SequenceID, attempt.StepIndex)
	if err != nil {
		// Handlers fall back to default message content without a step.
		logger.Warn("sequence step lookup failed",
			zap.String("sequence_id", attempt.SequenceID),
			zap.Int("step_index", attempt.StepIndex),
			zap.Error(err),
		)
	}

	var outcome outreach.Result
	if handler, ok := s.registry.Resolve(attempt.Channel); ok {
		began := s.now()
		outcome = handler.Execute(ctx, attempt, due.Lead, step)
		if s.metrics != nil {
			s.metrics.ObserveDispatchDuration(string(attempt.Channel), s.now().Sub(began))
		}
	} else {
		outcome = outreach.Result{
			Outcome:  outreach.OutcomeSkipped,
			Notes:    fmt.Sprintf("no handler registered for channel %q", attempt.Channel),
			Response: map[string]string{"handler": "unknown-channel-skip"},
		}
	}

	status := statusForOutcome(outcome.Outcome)
	finalization := repository.Finalization{
		Status:       status,
		ExecutedDate: s.now(),
	}
	if outcome.Notes != "" {
		notes := outcome.Notes
		finalization.Notes = &notes
	}
	if len(outcome.Response) > 0 {
		raw, err := json.Marshal(outcome.Response)
		if err == nil {
			data := string(raw)
			finalization.ResponseData = &data
		}
	}

	if err := s.attempts.Finalize(ctx, attempt.ID, finalization); err != nil {
		return fmt.Errorf("finalize attempt: %w", err)
	}

	s.countOutcome(attempt.Channel, outcome.Outcome, result)
	if s.metrics != nil {
		s.metrics.IncAttemptDispatched(string(attempt.Channel), string(outcome.Outcome))
	}

	// The first successful step marks the lead as worked; the enrollment run
	// already did this optimistically, so the update is idempotent.
	if attempt.StepIndex == 0 && status == domain.AttemptStatusSent {
		if err := s.leads.AdvanceWinbackStage(ctx, due.Lead.ID, domain.StageCampaignSent); err != nil {
			return fmt.Errorf("advance winback stage: %w", err)
		}
	}

	s.publishEvent(ctx, logger, attempt, status)
	return nil
}

// publishEvent emits the attempt outcome for downstream CRM consumers. The
// event is a side channel; a broker hiccup must not fail the attempt.
func (s *DispatchService) publishEvent(
	ctx context.Context,
	logger *zap.Logger,
	attempt domain.WinbackAttempt,
	status domain.AttemptStatus,
) {
	if s.publisher == nil {
		return
	}
	event := queue.AttemptEvent{
		AttemptID:  attempt.ID,
		LeadID:     attempt.LeadID,
		SequenceID: attempt.SequenceID,
		StepIndex:  attempt.StepIndex,
		Channel:    attempt.Channel,
		Status:     status,
		OccurredAt: s.now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Warn("failed to publish attempt event",
			zap.String("attempt_id", attempt.ID),
			zap.Error(err),
		)
	}
}

func (s *DispatchService) countOutcome(channel domain.Channel, outcome outreach.Outcome, result *DispatchResult) {
	switch outcome {
	case outreach.OutcomeSent:
		switch channel {
		case domain.ChannelEmail:
			result.EmailsSent++
		case domain.ChannelCall:
			result.CallsCreated++
		}
	case outreach.OutcomePendingHuman:
		result.LinkedInQueued++
	case outreach.OutcomeSkipped:
		result.Skipped++
	case outreach.OutcomeFailed:
		result.Failed++
	}
}

func (s *DispatchService) observeRun(start time.Time, success bool) {
	if s.metrics != nil {
		s.metrics.ObserveJobRun(domain.JobDispatch, success, s.now().Sub(start))
	}
}

// statusForOutcome maps a handler outcome onto the attempt status column.
// PENDING_HUMAN keeps the attempt PENDING; the executed date set at
// finalization is what keeps it out of later dispatch runs.
func statusForOutcome(outcome outreach.Outcome) domain.AttemptStatus {
	switch outcome {
	case outreach.OutcomeSent:
		return domain.AttemptStatusSent
	case outreach.OutcomeFailed:
		return domain.AttemptStatusFailed
	case outreach.OutcomeSkipped:
		return domain.AttemptStatusSkipped
	case outreach.OutcomePendingHuman:
		return domain.AttemptStatusPending
	default:
		return domain.AttemptStatusFailed
	}
}

// stepCache memoizes sequence lookups for the duration of one dispatch run.
type stepCache struct {
	sequences repository.SequenceRepository
	loaded    map[string]*domain.WinbackSequence
	failed    map[string]error
}

func newStepCache(sequences repository.SequenceRepository) *stepCache {
	return &stepCache{
		sequences: sequences,
		loaded:    make(map[string]*domain.WinbackSequence),
		failed:    make(map[string]error),
	}
}

func (c *stepCache) stepFor(ctx context.Context, sequenceID string, stepIndex int) (*domain.SequenceStep, error) {
	sequence, ok := c.loaded[sequenceID]
	if !ok {
		if err, failed := c.failed[sequenceID]; failed {
			return nil, err
		}
		var err error
		sequence, err = c.sequences.GetByID(ctx, sequenceID)
		if err != nil {
			c.failed[sequenceID] = err
			return nil, err
		}
		c.loaded[sequenceID] = sequence
	}

	for i := range sequence.Steps {
		if sequence.Steps[i].StepIndex == stepIndex {
			return &sequence.Steps[i], nil
		}
	}
	return nil, fmt.Errorf("%w: sequence %s has no step %d", domain.ErrNotFound, sequenceID, stepIndex)
}
