package srv

import "testing"

func TestTokenBucketStartsFull(t *testing.T) {
	tb := newTokenBucket(5, 10)
	for i := 0; i < 10; i++ {
		if !tb.allow() {
			t.Fatalf("token %d should have been allowed, bucket starts full", i)
		}
	}
	if tb.allow() {
		t.Error("11th immediate call should be denied, bucket exhausted")
	}
}

func TestSubmitLimiterAllowsUpToBurst(t *testing.T) {
	l := newSubmitLimiter()
	allowed := 0
	for i := 0; i < 20; i++ {
		if l.Allow() {
			allowed++
		}
	}
	if allowed != submitRateLimit.burst {
		t.Errorf("expected exactly %d allowed bursts, got %d", submitRateLimit.burst, allowed)
	}
}
