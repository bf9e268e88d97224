// Package ratelimit caps outbound email volume per user over a fixed window.
//
// Two backends implement the same contract: an in-process map for
// single-instance deployments, and a redis counter for multi-instance ones.
// Bypass sends (large-expense alerts) are always allowed and never counted.
package ratelimit

import (
	"context"
	"time"
)

const (
	DefaultWindow = time.Hour
	DefaultMax    = 10
)

type Limiter interface {
	// Allow reports whether one more email may go out for the user and, when
	// allowed and not bypassed, counts it. A blocked call does not extend the
	// window. Bypass calls always return true and are invisible to the counter.
	Allow(ctx context.Context, userID int, bypass bool) bool

	// Count returns the user's current window count and when the window resets.
	Count(ctx context.Context, userID int) (int, time.Time)

	// Reset clears the user's window.
	Reset(ctx context.Context, userID int)

	// ClearAll clears every window. Admin and test hook.
	ClearAll(ctx context.Context)

	// CleanupExpired drops stale state so memory stays bounded.
	CleanupExpired(ctx context.Context)
}
