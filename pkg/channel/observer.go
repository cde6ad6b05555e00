package channel

import "context"

// Observer provides hooks for connection lifecycle, channel traffic, and
// handshake tracing. Implementations should be lightweight; callbacks may
// run on hot paths.
type Observer interface {
	// OnConnectionStart fires when a transport connection is established,
	// before the handshake begins.
	OnConnectionStart(remoteAddr string)

	// OnConnectionEnd fires when a connection is torn down.
	OnConnectionEnd(remoteAddr string)

	// OnHandshakeStart returns a context and a completion function that is
	// called with the handshake outcome.
	OnHandshakeStart(ctx context.Context, mode string) (context.Context, func(error))

	// OnMessageSent fires after a message has been sealed and written.
	OnMessageSent(plaintextLen int)

	// OnMessageReceived fires after a message has been read and opened.
	OnMessageReceived(plaintextLen int)

	// OnAuthFailure fires when an incoming message fails authentication.
	OnAuthFailure()

	// OnRateLimited fires when a connection is refused by the handshake
	// rate limiter.
	OnRateLimited(remoteAddr string)

	// OnProtocolError fires on any framing or protocol violation.
	OnProtocolError(err error)
}
