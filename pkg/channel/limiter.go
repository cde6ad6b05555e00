// limiter.go implements handshake admission control.
//
// Key exchange is by far the most expensive operation the server
// performs, so accepted connections pass through a token bucket before
// any handshake work starts. Connections that exceed the configured rate
// are dropped before a single byte of key material is computed.
package channel

import (
	"sync"
	"time"
)

// HandshakeLimiter caps the rate of accepted handshakes using a token
// bucket. A zero or negative rate disables the limit.
type HandshakeLimiter struct {
	mu         sync.Mutex
	rate       float64
	burst      int
	tokens     float64
	lastRefill time.Time
}

// NewHandshakeLimiter creates a limiter allowing rate handshakes per
// second with the given burst allowance.
func NewHandshakeLimiter(rate float64, burst int) *HandshakeLimiter {
	return &HandshakeLimiter{
		rate:       rate,
		burst:      burst,
		tokens:     float64(burst),
		lastRefill: time.Now(),
	}
}

// AllowHandshake consumes one token if available and reports whether the
// handshake may proceed.
func (l *HandshakeLimiter) AllowHandshake() bool {
	if l.rate <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(l.lastRefill).Seconds()
	l.lastRefill = now

	l.tokens += elapsed * l.rate
	if l.tokens > float64(l.burst) {
		l.tokens = float64(l.burst)
	}

	if l.tokens < 1.0 {
		return false
	}
	l.tokens--
	return true
}
