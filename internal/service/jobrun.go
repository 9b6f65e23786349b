package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kursadbilgin/winback-engine/internal/domain"
	"github.com/kursadbilgin/winback-engine/internal/repository"
)

// recordJobRun writes the per-run audit row with the run's counters as JSON
// details. The run itself already happened, so a persistence failure here is
// logged and swallowed rather than failing the job.
func recordJobRun(
	ctx context.Context,
	repo repository.JobRunRepository,
	logger *zap.Logger,
	jobName string,
	runDate time.Time,
	success bool,
	details any,
) {
	run := &domain.JobRun{
		ID:      uuid.NewString(),
		JobName: jobName,
		RunDate: runDate,
		Success: success,
		Details: marshalDetails(details),
	}
	if err := repo.Create(ctx, run); err != nil {
		logger.Error("failed to persist job run log",
			zap.String("job", jobName),
			zap.Error(err),
		)
	}
}

func marshalDetails(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"marshalError":%q}`, err.Error())
	}
	return string(raw)
}
