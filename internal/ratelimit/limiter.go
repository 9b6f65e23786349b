package ratelimit

import "context"

// RateLimiter throttles outbound sends per outreach channel.
type RateLimiter interface {
	Allow(ctx context.Context, channel string) (bool, error)
	Wait(ctx context.Context, channel string) error
}
