package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector aggregates counters from channel endpoints and servers.
type Collector struct {
	// Connection metrics
	connectionsActive atomic.Uint64
	connectionsTotal  atomic.Uint64

	// Handshake metrics
	handshakesTotal  atomic.Uint64
	handshakesFailed atomic.Uint64
	handshakeLatency *Histogram

	// Traffic metrics
	messagesSent     atomic.Uint64
	messagesReceived atomic.Uint64
	bytesSent        atomic.Uint64
	bytesReceived    atomic.Uint64

	// Security metrics
	authFailures atomic.Uint64
	rateLimited  atomic.Uint64

	// Error metrics
	oversizedFrames atomic.Uint64
	protocolErrors  atomic.Uint64

	// Creation time for uptime tracking
	createdAt time.Time

	// Labels for this collector instance
	labels Labels
}

// Labels represents key-value pairs for metric labeling.
type Labels map[string]string

// NewCollector creates a new metrics collector.
func NewCollector(labels Labels) *Collector {
	if labels == nil {
		labels = make(Labels)
	}

	return &Collector{
		handshakeLatency: NewHistogram(HandshakeLatencyBuckets),
		createdAt:        time.Now(),
		labels:           labels,
	}
}

// HandshakeLatencyBuckets holds the default bucket bounds for handshake
// duration in milliseconds. Loopback handshakes land well under a
// millisecond, impaired ones in the hundreds.
var HandshakeLatencyBuckets = []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000}

// --- Connection Metrics ---

// ConnectionStarted increments active and total connection counters.
func (c *Collector) ConnectionStarted() {
	c.connectionsActive.Add(1)
	c.connectionsTotal.Add(1)
}

// ConnectionEnded decrements the active connection counter.
func (c *Collector) ConnectionEnded() {
	for {
		current := c.connectionsActive.Load()
		if current == 0 {
			return
		}
		if c.connectionsActive.CompareAndSwap(current, current-1) {
			return
		}
	}
}

// --- Handshake Metrics ---

// HandshakeCompleted records a successful handshake and its duration.
func (c *Collector) HandshakeCompleted(d time.Duration) {
	c.handshakesTotal.Add(1)
	c.handshakeLatency.Observe(d.Seconds() * 1e3)
}

// HandshakeFailed records a failed handshake attempt.
func (c *Collector) HandshakeFailed() {
	c.handshakesTotal.Add(1)
	c.handshakesFailed.Add(1)
}

// --- Traffic Metrics ---

// MessageSent records one outbound message of the given plaintext size.
func (c *Collector) MessageSent(bytes int) {
	c.messagesSent.Add(1)
	if bytes > 0 {
		c.bytesSent.Add(uint64(bytes))
	}
}

// MessageReceived records one inbound message of the given plaintext size.
func (c *Collector) MessageReceived(bytes int) {
	c.messagesReceived.Add(1)
	if bytes > 0 {
		c.bytesReceived.Add(uint64(bytes))
	}
}

// --- Security Metrics ---

// RecordAuthFailure increments the authentication failure counter.
func (c *Collector) RecordAuthFailure() {
	c.authFailures.Add(1)
}

// RecordRateLimited increments the rate-limited handshake counter.
func (c *Collector) RecordRateLimited() {
	c.rateLimited.Add(1)
}

// --- Error Metrics ---

// RecordOversizedFrame increments the oversized frame counter.
func (c *Collector) RecordOversizedFrame() {
	c.oversizedFrames.Add(1)
}

// RecordProtocolError increments the protocol error counter.
func (c *Collector) RecordProtocolError() {
	c.protocolErrors.Add(1)
}

// --- Snapshot ---

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	// Timestamp of the snapshot
	Timestamp time.Time

	// Uptime since collector creation
	Uptime time.Duration

	// Connection metrics
	ConnectionsActive uint64
	ConnectionsTotal  uint64

	// Handshake metrics
	HandshakesTotal  uint64
	HandshakesFailed uint64

	// Traffic metrics
	MessagesSent     uint64
	MessagesReceived uint64
	BytesSent        uint64
	BytesReceived    uint64

	// Security metrics
	AuthFailures uint64
	RateLimited  uint64

	// Error metrics
	OversizedFrames uint64
	ProtocolErrors  uint64

	// Histogram summaries
	HandshakeLatency HistogramSummary

	// Labels
	Labels Labels
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		Timestamp:         time.Now(),
		Uptime:            time.Since(c.createdAt),
		ConnectionsActive: c.connectionsActive.Load(),
		ConnectionsTotal:  c.connectionsTotal.Load(),
		HandshakesTotal:   c.handshakesTotal.Load(),
		HandshakesFailed:  c.handshakesFailed.Load(),
		MessagesSent:      c.messagesSent.Load(),
		MessagesReceived:  c.messagesReceived.Load(),
		BytesSent:         c.bytesSent.Load(),
		BytesReceived:     c.bytesReceived.Load(),
		AuthFailures:      c.authFailures.Load(),
		RateLimited:       c.rateLimited.Load(),
		OversizedFrames:   c.oversizedFrames.Load(),
		ProtocolErrors:    c.protocolErrors.Load(),
		HandshakeLatency:  c.handshakeLatency.Summary(),
		Labels:            c.labels,
	}
}

// Reset clears all metrics (useful for testing).
func (c *Collector) Reset() {
	c.connectionsActive.Store(0)
	c.connectionsTotal.Store(0)
	c.handshakesTotal.Store(0)
	c.handshakesFailed.Store(0)
	c.messagesSent.Store(0)
	c.messagesReceived.Store(0)
	c.bytesSent.Store(0)
	c.bytesReceived.Store(0)
	c.authFailures.Store(0)
	c.rateLimited.Store(0)
	c.oversizedFrames.Store(0)
	c.protocolErrors.Store(0)
	c.handshakeLatency.Reset()
	c.createdAt = time.Now()
}

// --- Global Collector ---

var (
	globalCollector     *Collector
	globalCollectorOnce sync.Once
)

// Global returns the global metrics collector.
// Creates one with default settings if not already initialized.
func Global() *Collector {
	globalCollectorOnce.Do(func() {
		globalCollector = NewCollector(Labels{"instance": "default"})
	})
	return globalCollector
}

// SetGlobal sets the global metrics collector.
// Should be called during initialization before any metrics are recorded.
func SetGlobal(c *Collector) {
	globalCollector = c
}
