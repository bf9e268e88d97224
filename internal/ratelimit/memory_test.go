package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterCapsAtMax(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(time.Hour, 10)

	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow(ctx, 1, false), "send %d should be allowed", i+1)
	}
	assert.False(t, l.Allow(ctx, 1, false), "11th send should be blocked")

	count, _ := l.Count(ctx, 1)
	assert.Equal(t, 10, count, "blocked call must not increment")
}

func TestMemoryLimiterBypassIsInvisible(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(time.Hour, 10)

	for i := 0; i < 10; i++ {
		require.True(t, l.Allow(ctx, 1, false))
	}
	require.False(t, l.Allow(ctx, 1, false))

	// Bypass goes through even when capped and does not touch the counter.
	assert.True(t, l.Allow(ctx, 1, true))
	count, _ := l.Count(ctx, 1)
	assert.Equal(t, 10, count)
}

func TestMemoryLimiterWindowExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(time.Hour, 2).WithClock(func() time.Time { return now })

	require.True(t, l.Allow(ctx, 1, false))
	require.True(t, l.Allow(ctx, 1, false))
	require.False(t, l.Allow(ctx, 1, false))

	now = now.Add(time.Hour + time.Second)

	assert.True(t, l.Allow(ctx, 1, false), "new window should start fresh")
	count, resetAt := l.Count(ctx, 1)
	assert.Equal(t, 1, count)
	assert.Equal(t, now.Add(time.Hour), resetAt)
}

func TestMemoryLimiterBlockedCallDoesNotExtendWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(time.Hour, 1).WithClock(func() time.Time { return now })

	require.True(t, l.Allow(ctx, 1, false))
	_, resetBefore := l.Count(ctx, 1)

	now = now.Add(30 * time.Minute)
	require.False(t, l.Allow(ctx, 1, false))

	_, resetAfter := l.Count(ctx, 1)
	assert.Equal(t, resetBefore, resetAfter)
}

func TestMemoryLimiterUsersAreIndependent(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(time.Hour, 1)

	require.True(t, l.Allow(ctx, 1, false))
	require.False(t, l.Allow(ctx, 1, false))
	assert.True(t, l.Allow(ctx, 2, false))
}

func TestMemoryLimiterReset(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(time.Hour, 1)

	require.True(t, l.Allow(ctx, 1, false))
	require.False(t, l.Allow(ctx, 1, false))

	l.Reset(ctx, 1)
	assert.True(t, l.Allow(ctx, 1, false))
}

func TestMemoryLimiterCleanupExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(time.Hour, 5).WithClock(func() time.Time { return now })

	require.True(t, l.Allow(ctx, 1, false))
	now = now.Add(2 * time.Hour)
	require.True(t, l.Allow(ctx, 2, false))

	l.CleanupExpired(ctx)

	assert.NotContains(t, l.entries, 1)
	assert.Contains(t, l.entries, 2)
}

func TestMemoryLimiterCountEmpty(t *testing.T) {
	l := NewMemoryLimiter(time.Hour, 10)
	count, resetAt := l.Count(context.Background(), 42)
	assert.Zero(t, count)
	assert.True(t, resetAt.IsZero())
}
