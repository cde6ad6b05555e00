package metrics

import (
	"context"
	"errors"
	"time"

	qerrors "github.com/bhaskardatta/Quantum-performance-simulator/internal/errors"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/channel"
)

// ChannelObserver adapts the collector, tracer, and logger to the
// channel.Observer interface. Attach one to a client or server to record
// metrics and traces for its connections.
type ChannelObserver struct {
	collector *Collector
	tracer    Tracer
	logger    *Logger
	role      string
}

var _ channel.Observer = (*ChannelObserver)(nil)

// ChannelObserverConfig configures a channel observer.
type ChannelObserverConfig struct {
	Collector *Collector
	Tracer    Tracer
	Logger    *Logger
	Role      string // "client" or "server"
}

// NewChannelObserver creates a channel observer. Nil fields fall back to
// the package globals.
func NewChannelObserver(cfg ChannelObserverConfig) *ChannelObserver {
	if cfg.Collector == nil {
		cfg.Collector = Global()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = GetTracer()
	}
	if cfg.Logger == nil {
		cfg.Logger = GetLogger()
	}
	if cfg.Role == "" {
		cfg.Role = "server"
	}

	return &ChannelObserver{
		collector: cfg.Collector,
		tracer:    cfg.Tracer,
		logger:    cfg.Logger.Named("channel").With(Fields{"role": cfg.Role}),
		role:      cfg.Role,
	}
}

// OnConnectionStart records a new connection.
func (o *ChannelObserver) OnConnectionStart(remoteAddr string) {
	o.collector.ConnectionStarted()
	o.logger.Info("connection started", Fields{"remote_addr": remoteAddr})
}

// OnConnectionEnd records the end of a connection.
func (o *ChannelObserver) OnConnectionEnd(remoteAddr string) {
	o.collector.ConnectionEnded()
	o.logger.Info("connection ended", Fields{"remote_addr": remoteAddr})
}

// OnHandshakeStart returns a context and completion function framing one
// key exchange.
func (o *ChannelObserver) OnHandshakeStart(ctx context.Context, mode string) (context.Context, func(error)) {
	spanName := SpanHandshakeServer
	kind := SpanKindServer
	if o.role == "client" {
		spanName = SpanHandshakeClient
		kind = SpanKindClient
	}

	start := time.Now()
	ctx, endSpan := o.tracer.StartSpan(ctx, spanName,
		WithSpanKind(kind),
		WithAttributes(SpanAttributes{Mode: mode, Role: o.role}.ToMap()),
	)

	o.logger.Debug("handshake started", Fields{"mode": mode})

	return ctx, func(err error) {
		duration := time.Since(start)

		if err != nil {
			o.collector.HandshakeFailed()
			o.logger.Error("handshake failed", Fields{
				"mode":     mode,
				"error":    err.Error(),
				"duration": duration.String(),
			})
		} else {
			o.collector.HandshakeCompleted(duration)
			o.logger.Info("handshake completed", Fields{
				"mode":     mode,
				"duration": duration.String(),
			})
		}

		endSpan(err)
	}
}

// OnMessageSent records one outbound message.
func (o *ChannelObserver) OnMessageSent(plaintextLen int) {
	o.collector.MessageSent(plaintextLen)
}

// OnMessageReceived records one inbound message.
func (o *ChannelObserver) OnMessageReceived(plaintextLen int) {
	o.collector.MessageReceived(plaintextLen)
}

// OnAuthFailure records a message that failed authentication.
func (o *ChannelObserver) OnAuthFailure() {
	o.collector.RecordAuthFailure()
	o.logger.Warn("message authentication failed")
}

// OnRateLimited records a handshake dropped by the rate limiter.
func (o *ChannelObserver) OnRateLimited(remoteAddr string) {
	o.collector.RecordRateLimited()
	o.logger.Warn("handshake rate limited", Fields{"remote_addr": remoteAddr})
}

// OnProtocolError records a channel or accept-loop failure. Oversized
// frames are counted separately from other protocol errors.
func (o *ChannelObserver) OnProtocolError(err error) {
	if errors.Is(err, qerrors.ErrFrameTooLarge) {
		o.collector.RecordOversizedFrame()
	}
	o.collector.RecordProtocolError()
	o.logger.Error("protocol error", Fields{"error": err.Error()})
}

// Logger returns the observer's logger for custom logging.
func (o *ChannelObserver) Logger() *Logger {
	return o.logger
}
