package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kursadbilgin/winback-engine/internal/joblock"
	goredis "github.com/redis/go-redis/v9"
)

const defaultLockTTL = 10 * time.Minute

// Release only deletes the key while this invocation still owns it.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

var _ joblock.Locker = (*RunLock)(nil)

// RunLock is a Redis advisory lock keyed by job name. The TTL bounds how long
// a crashed invocation can block the next one.
type RunLock struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewRunLock(client *goredis.Client, ttl time.Duration) (*RunLock, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}

	return &RunLock{client: client, ttl: ttl}, nil
}

func (l *RunLock) Acquire(ctx context.Context, job string) (func(context.Context) error, error) {
	if l == nil || l.client == nil {
		return nil, fmt.Errorf("run lock is not initialized")
	}

	normalizedJob := strings.TrimSpace(job)
	if normalizedJob == "" {
		return nil, fmt.Errorf("job name is required")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	key := fmt.Sprintf("winback:runlock:%s", normalizedJob)
	token := uuid.NewString()

	acquired, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire job lock %q: %w", normalizedJob, err)
	}
	if !acquired {
		return nil, fmt.Errorf("%w: %s", joblock.ErrLockHeld, normalizedJob)
	}

	release := func(ctx context.Context) error {
		if ctx == nil {
			ctx = context.Background()
		}
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("failed to release job lock %q: %w", normalizedJob, err)
		}
		return nil
	}

	return release, nil
}
