package session

import "time"

// rateLimiter gates repeated triggers to at most one per interval. The
// clock is injected so tests can drive it deterministically.
type rateLimiter struct {
	interval time.Duration
	clock    func() time.Time
	last     time.Time
}

func newRateLimiter(interval time.Duration, clock func() time.Time) *rateLimiter {
	return &rateLimiter{interval: interval, clock: clock}
}

// Allow reports whether enough time has passed since the last accepted
// trigger, recording the trigger when it has
func (l *rateLimiter) Allow() bool {
	now := l.clock()
	if !l.last.IsZero() && now.Sub(l.last) < l.interval {
		return false
	}
	l.last = now
	return true
}

// Reset clears the limiter so the next trigger is accepted immediately
func (l *rateLimiter) Reset() {
	l.last = time.Time{}
}
