package session

import (
	"testing"
	"time"
)

func TestRateLimiterWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	r := newRateLimiter(2)
	r.now = func() time.Time { return now }

	if !r.allow() || !r.allow() {
		t.Fatalf("first two events must pass")
	}
	if r.allow() {
		t.Fatalf("third event in the window must be rejected")
	}

	now = now.Add(time.Minute)
	if !r.allow() {
		t.Fatalf("new window must reset the counter")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	r := newRateLimiter(0)
	for i := 0; i < 1000; i++ {
		if !r.allow() {
			t.Fatalf("disabled limiter rejected event %d", i)
		}
	}

	var nilLimiter *rateLimiter
	if !nilLimiter.allow() {
		t.Fatalf("nil limiter must allow")
	}
}
