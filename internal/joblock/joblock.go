package joblock

import (
	"context"
	"errors"
)

// ErrLockHeld reports that another invocation of the same job is running.
var ErrLockHeld = errors.New("job lock held")

// Locker serializes job invocations across processes. Acquire returns a
// release function on success and ErrLockHeld when the job is already running,
// guarding against overlapping schedule firings double-processing records.
type Locker interface {
	Acquire(ctx context.Context, job string) (release func(context.Context) error, err error)
}
