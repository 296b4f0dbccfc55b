package session

import (
	"testing"
	"time"
)

func TestRateLimiter(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	limiter := newRateLimiter(time.Second, clock.Now)

	if !limiter.Allow() {
		t.Fatal("first trigger must pass")
	}
	if limiter.Allow() {
		t.Error("immediate retrigger must be dropped")
	}

	clock.Advance(500 * time.Millisecond)
	if limiter.Allow() {
		t.Error("trigger inside the interval must be dropped")
	}

	clock.Advance(500 * time.Millisecond)
	if !limiter.Allow() {
		t.Error("trigger after the interval must pass")
	}
}

func TestRateLimiterReset(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	limiter := newRateLimiter(time.Minute, clock.Now)

	limiter.Allow()
	if limiter.Allow() {
		t.Fatal("retrigger must be dropped")
	}

	limiter.Reset()
	if !limiter.Allow() {
		t.Error("trigger after reset must pass")
	}
}
