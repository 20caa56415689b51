package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type memoryEntry struct {
	limiter  *rate.Limiter
	window   time.Duration
	lastSeen time.Time
}

// MemoryLimiter is the in-process fallback used when no shared store is
// configured. Counters are local to one instance.
type MemoryLimiter struct {
	mu        sync.Mutex
	entries   map[string]*memoryEntry
	now       func() time.Time
	lastSweep time.Time
}

// NewMemoryLimiter constructs an empty limiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{entries: make(map[string]*memoryEntry), now: time.Now}
}

// Check consumes one token from the bucket for key. The bucket holds limit
// tokens and refills completely over window.
func (l *MemoryLimiter) Check(_ context.Context, key string, limit int, window time.Duration) (Result, error) {
	if limit <= 0 || window <= 0 {
		return Result{Allowed: true, ResetAt: l.now().UTC()}, nil
	}
	now := l.now()
	interval := window / time.Duration(limit)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep(now, window)

	entry, ok := l.entries[key]
	if !ok {
		entry = &memoryEntry{limiter: rate.NewLimiter(rate.Every(interval), limit), window: window}
		l.entries[key] = entry
	}
	entry.lastSeen = now
	if window > entry.window {
		entry.window = window
	}

	allowed := entry.limiter.AllowN(now, 1)
	tokens := entry.limiter.TokensAt(now)
	remaining := int(tokens)
	if remaining < 0 {
		remaining = 0
	}
	missing := float64(limit) - tokens
	resetAt := now.Add(time.Duration(missing * float64(interval)))
	return Result{Allowed: allowed, Remaining: remaining, ResetAt: resetAt.UTC()}, nil
}

func (l *MemoryLimiter) sweep(now time.Time, window time.Duration) {
	if now.Sub(l.lastSweep) < window {
		return
	}
	// An idle bucket is only dropped once it has fully refilled.
	for key, entry := range l.entries {
		if now.Sub(entry.lastSeen) > entry.window {
			delete(l.entries, key)
		}
	}
	l.lastSweep = now
}
