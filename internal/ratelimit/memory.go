package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	count       int
	windowStart time.Time
}

// MemoryLimiter keeps per-user counters in a process-local map. State does
// not survive restarts and is not shared between instances.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[int]*memoryEntry
	window  time.Duration
	max     int
	now     func() time.Time
}

func NewMemoryLimiter(window time.Duration, max int) *MemoryLimiter {
	if window <= 0 {
		window = DefaultWindow
	}
	if max <= 0 {
		max = DefaultMax
	}
	return &MemoryLimiter{
		entries: make(map[int]*memoryEntry),
		window:  window,
		max:     max,
		now:     time.Now,
	}
}

// WithClock replaces the clock. Test hook.
func (l *MemoryLimiter) WithClock(now func() time.Time) *MemoryLimiter {
	l.now = now
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, userID int, bypass bool) bool {
	if bypass {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[userID]
	if !ok || now.Sub(e.windowStart) > l.window {
		l.entries[userID] = &memoryEntry{count: 1, windowStart: now}
		return true
	}

	if e.count >= l.max {
		return false
	}

	e.count++
	return true
}

func (l *MemoryLimiter) Count(_ context.Context, userID int) (int, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[userID]
	if !ok || l.now().Sub(e.windowStart) > l.window {
		return 0, time.Time{}
	}
	return e.count, e.windowStart.Add(l.window)
}

func (l *MemoryLimiter) Reset(_ context.Context, userID int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, userID)
}

func (l *MemoryLimiter) ClearAll(_ context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[int]*memoryEntry)
}

func (l *MemoryLimiter) CleanupExpired(_ context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for userID, e := range l.entries {
		if now.Sub(e.windowStart) > l.window {
			delete(l.entries, userID)
		}
	}
}
