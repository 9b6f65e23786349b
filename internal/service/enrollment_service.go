package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kursadbilgin/winback-engine/internal/domain"
	"github.com/kursadbilgin/winback-engine/internal/joblock"
	"github.com/kursadbilgin/winback-engine/internal/observability"
	"github.com/kursadbilgin/winback-engine/internal/repository"
)

// ErrNoDefaultSequence reports that no active winback sequence exists. The
// enrollment run aborts without touching any lead; an operator has to create
// a sequence before enrollment can do anything. Wraps domain.ErrNotFound so
// callers matching either sentinel see it.
var ErrNoDefaultSequence = fmt.Errorf("no active winback sequence configured: %w", domain.ErrNotFound)

// EnrollmentResult aggregates one enrollment run's counters. It is returned
// to the caller, logged, and stored as the run log's details.
type EnrollmentResult struct {
	RunDate         time.Time `json:"runDate"`
	Eligible        int       `json:"eligible"`
	Enrolled        int       `json:"enrolled"`
	AttemptsCreated int       `json:"attemptsCreated"`
	SkippedReason   int       `json:"skippedReason"`
	AlreadyEnrolled int       `json:"alreadyEnrolled"`
	Errors          int       `json:"errors"`
}

// EnrollmentService runs the daily enrollment job: it finds lost leads inside
// the eligibility window that have not been worked yet, and enrolls each one
// into the default sequence by creating its full schedule of attempts.
type EnrollmentService struct {
	leads       repository.LeadRepository
	sequences   repository.SequenceRepository
	enrollments repository.EnrollmentRepository
	jobRuns     repository.JobRunRepository
	locker      joblock.Locker
	metrics     *observability.Metrics
	logger      *zap.Logger

	window      domain.EligibilityWindow
	leadsPerRun int
	now         func() time.Time
}

func NewEnrollmentService(
	leads repository.LeadRepository,
	sequences repository.SequenceRepository,
	enrollments repository.EnrollmentRepository,
	jobRuns repository.JobRunRepository,
	locker joblock.Locker,
	metrics *observability.Metrics,
	logger *zap.Logger,
	window domain.EligibilityWindow,
	leadsPerRun int,
) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if leadsPerRun <= 0 {
		leadsPerRun = 500
	}
	return &EnrollmentService{
		leads:       leads,
		sequences:   sequences,
		enrollments: enrollments,
		jobRuns:     jobRuns,
		locker:      locker,
		metrics:     metrics,
		logger:      logger,
		window:      window,
		leadsPerRun: leadsPerRun,
		now:         time.Now,
	}
}

// Run executes one enrollment pass. Missing default sequence and selection
// failures abort the run with no partial state; per-lead failures are counted
// and do not stop the remaining leads. Returns joblock.ErrLockHeld when
// another enrollment run is already in flight.
func (s *EnrollmentService) Run(ctx context.Context) (*EnrollmentResult, error) {
	release, err := s.locker.Acquire(ctx, domain.JobEnrollment)
	if err != nil {
		return nil, fmt.Errorf("acquire enrollment lock: %w", err)
	}
	defer func() {
		if err := release(ctx); err != nil {
			s.logger.Warn("failed to release enrollment lock", zap.Error(err))
		}
	}()

	start := s.now()
	logger := observability.WithContextLogger(s.logger, ctx).With(
		zap.String("job", domain.JobEnrollment),
	)

	sequence, err := s.sequences.GetDefault(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Error("enrollment aborted: no active sequence")
		s.observeRun(start, false)
		return nil, ErrNoDefaultSequence
	}
	if err != nil {
		s.observeRun(start, false)
		return nil, fmt.Errorf("load default sequence: %w", err)
	}

	leads, err := s.leads.GetEligibleForWinback(ctx, s.window, start, s.leadsPerRun)
	if err != nil {
		s.observeRun(start, false)
		return nil, fmt.Errorf("select eligible leads: %w", err)
	}

	result := &EnrollmentResult{RunDate: start, Eligible: len(leads)}

	for i := range leads {
		lead := leads[i]

		if domain.IsUnrecoverableLostReason(lead.LostReason) {
			result.SkippedReason++
			continue
		}

		if err := s.enrollLead(ctx, &lead, sequence, result); err != nil {
			result.Errors++
			logger.Error("failed to enroll lead",
				zap.String("lead_id", lead.ID),
				zap.Error(err),
			)
		}
	}

	recordJobRun(ctx, s.jobRuns, logger, domain.JobEnrollment, start, true, result)
	s.observeRun(start, true)

	logger.Info("enrollment run finished",
		zap.Int("eligible", result.Eligible),
		zap.Int("enrolled", result.Enrolled),
		zap.Int("attempts_created", result.AttemptsCreated),
		zap.Int("skipped_reason", result.SkippedReason),
		zap.Int("already_enrolled", result.AlreadyEnrolled),
		zap.Int("errors", result.Errors),
	)
	return result, nil
}

func (s *EnrollmentService) enrollLead(
	ctx context.Context,
	lead *domain.Lead,
	sequence *domain.WinbackSequence,
	result *EnrollmentResult,
) error {
	attempts, err := domain.BuildAttempts(lead, sequence)
	if err != nil {
		return fmt.Errorf("build attempts: %w", err)
	}
	for i := range attempts {
		attempts[i].ID = uuid.NewString()
	}

	err = s.enrollments.EnrollLead(ctx, lead.ID, result.RunDate, attempts)
	if errors.Is(err, domain.ErrConflict) {
		// Another run got here first, or the lead carries stale attempts.
		result.AlreadyEnrolled++
		return nil
	}
	if err != nil {
		// The transactional repo rolls back on its own; the reset covers
		// EnrollmentRepository implementations without that guarantee and is
		// a no-op for leads still cold.
		if resetErr := s.leads.ResetWinbackStage(ctx, lead.ID); resetErr != nil {
			s.logger.Error("failed to revert winback stage after enrollment error",
				zap.String("lead_id", lead.ID),
				zap.Error(resetErr),
			)
		}
		return fmt.Errorf("persist enrollment: %w", err)
	}

	result.Enrolled++
	result.AttemptsCreated += len(attempts)
	if s.metrics != nil {
		s.metrics.IncLeadEnrolled()
		s.metrics.AddAttemptsCreated(len(attempts))
	}
	return nil
}

func (s *EnrollmentService) observeRun(start time.Time, success bool) {
	if s.metrics != nil {
		s.metrics.ObserveJobRun(domain.JobEnrollment, success, s.now().Sub(start))
	}
}
