package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kursadbilgin/winback-engine/internal/joblock"
)

const defaultRunnerInterval = 15 * time.Minute

// Runner fires one job on a fixed interval, starting with an immediate run.
// A run that loses the cross-process lock race is logged at debug and is not
// an error; some other instance is doing the work.
type Runner struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error
	logger   *zap.Logger
}

func NewRunner(
	name string,
	interval time.Duration,
	run func(ctx context.Context) error,
	logger *zap.Logger,
) (*Runner, error) {
	if name == "" {
		return nil, errors.New("runner requires a job name")
	}
	if run == nil {
		return nil, errors.New("runner requires a run function")
	}
	if interval <= 0 {
		interval = defaultRunnerInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Runner{
		name:     name,
		interval: interval,
		run:      run,
		logger:   logger,
	}, nil
}

func (r *Runner) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	r.fire(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if ctx.Err() != nil {
				return nil
			}
			r.fire(ctx)
		}
	}
}

func (r *Runner) fire(ctx context.Context) {
	err := r.run(ctx)
	if err == nil || ctx.Err() != nil {
		return
	}
	if errors.Is(err, joblock.ErrLockHeld) {
		r.logger.Debug("job already running elsewhere", zap.String("job", r.name))
		return
	}
	r.logger.Error("job run failed", zap.String("job", r.name), zap.Error(err))
}
