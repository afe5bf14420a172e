package srv

import "time"

// submitRateLimit is the fixed policy for word:submit: capacity 10,
// refilling 5/sec, starting full. No other event type is rate-limited.
var submitRateLimit = struct {
	rate  float64
	burst int
}{rate: 5, burst: 10}

// tokenBucket implements the token bucket algorithm, starting full.
type tokenBucket struct {
	tokens    float64
	max       float64
	rate      float64
	lastCheck time.Time
}

// newTokenBucket creates a new token bucket starting full.
func newTokenBucket(rate float64, burst int) *tokenBucket {
	return &tokenBucket{
		tokens:    float64(burst),
		max:       float64(burst),
		rate:      rate,
		lastCheck: time.Now(),
	}
}

// allow checks if a token is available and consumes one if so.
func (tb *tokenBucket) allow() bool {
	now := time.Now()
	elapsed := now.Sub(tb.lastCheck).Seconds()
	tb.lastCheck = now

	tb.tokens += elapsed * tb.rate
	if tb.tokens > tb.max {
		tb.tokens = tb.max
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// submitLimiter rate-limits one connection's word:submit events. A
// rejected submit is dropped silently — there is no violation counter
// and no disconnect escalation.
type submitLimiter struct {
	bucket *tokenBucket
}

// newSubmitLimiter creates a limiter for one connection.
func newSubmitLimiter() *submitLimiter {
	return &submitLimiter{bucket: newTokenBucket(submitRateLimit.rate, submitRateLimit.burst)}
}

// Allow reports whether the next word:submit should be processed.
func (l *submitLimiter) Allow() bool {
	return l.bucket.allow()
}
