// Package backoff provides exponential reconnect backoff for the agent's
// long-lived connections.
//
// Both connection roles (the MQTT publish session and the WebSocket stream
// subscription) use the same discipline: doubling delays from an initial
// value up to a cap, unbounded attempts, reset to the initial value after
// every successful connection. Each connection owns its own Backoff
// instance; state is never shared across roles.
package backoff

import "time"

// Policy describes the delay bounds for a reconnect loop.
type Policy struct {
	// Initial is the delay before the first retry.
	Initial time.Duration

	// Max caps the delay; doubling stops once it is reached.
	Max time.Duration
}

// Backoff tracks retry state for a single reconnecting connection.
// It is not safe for concurrent use; each reconnect loop owns one instance.
type Backoff struct {
	policy   Policy
	attempts int
}

// New creates a Backoff with the given policy.
// A non-positive Initial defaults to one second; a Max below Initial is
// raised to Initial.
func New(policy Policy) *Backoff {
	if policy.Initial <= 0 {
		policy.Initial = time.Second
	}
	if policy.Max < policy.Initial {
		policy.Max = policy.Initial
	}
	return &Backoff{policy: policy}
}

// Next records a failed attempt and returns the delay to wait before the
// next one. The returned sequence is non-decreasing: Initial, 2*Initial,
// 4*Initial, ... capped at Max.
func (b *Backoff) Next() time.Duration {
	delay := b.policy.Initial
	for i := 0; i < b.attempts; i++ {
		delay *= 2
		if delay >= b.policy.Max {
			delay = b.policy.Max
			break
		}
	}
	b.attempts++
	return delay
}

// Reset clears the attempt count. Called on every successful transition
// into the connected state so the next outage starts from Initial again.
func (b *Backoff) Reset() {
	b.attempts = 0
}

// Attempts returns the number of consecutive failures recorded since the
// last Reset.
func (b *Backoff) Attempts() int {
	return b.attempts
}
