package ratelimiter

import (
	"sync"
	"time"
)

// Limiter allows at most one action per interval. It is used to keep
// per-buffer progress logging from flooding the log output and is safe
// for concurrent use.
type Limiter struct {
	mu          sync.Mutex
	interval    time.Duration
	lastAllowed time.Time
}

// New creates a limiter that allows one action per interval.
func New(interval time.Duration) *Limiter {
	return &Limiter{interval: interval}
}

// Allow reports whether an action is allowed now and, if so, records
// it as the last allowed action.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastAllowed) >= l.interval {
		l.lastAllowed = now
		return true
	}
	return false
}

// Reset clears the limiter, allowing the next action immediately.
func (l *Limiter) Reset() {
	l.mu.Lock()
	l.lastAllowed = time.Time{}
	l.mu.Unlock()
}
