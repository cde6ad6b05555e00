// Package channel implements the encrypted message layer and the
// connection endpoints built on top of it.
//
// This file (channel.go) provides:
//   - Authenticated encryption of text messages over an established key
//   - Fresh random nonce generation per message
//   - Fail-closed channel state: after any framing or authentication
//     failure the channel refuses further traffic, since frame boundaries
//     cannot be recovered once a length field is suspect
//   - The termination sentinel convention
package channel

import (
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/bhaskardatta/Quantum-performance-simulator/internal/constants"
	qerrors "github.com/bhaskardatta/Quantum-performance-simulator/internal/errors"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/crypto"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/protocol"
)

// Sentinel is the reserved application message that ends the receiving
// side's read loop after delivery. Matching is case-insensitive.
const Sentinel = "exit"

// IsSentinel reports whether message is the termination sentinel.
func IsSentinel(message string) bool {
	return strings.EqualFold(message, Sentinel)
}

// Config holds configuration for a secure channel.
type Config struct {
	// Suite selects the AEAD cipher. Defaults to AES-256-GCM.
	Suite constants.CipherSuite

	// ReadTimeout bounds a single Receive. Zero means no timeout.
	ReadTimeout time.Duration

	// WriteTimeout bounds a single Send. Zero means no timeout.
	WriteTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Suite: constants.CipherSuiteAES256GCM,
	}
}

// Channel provides authenticated encrypted messaging over an established
// session key.
//
// A Channel is safe for concurrent use. Writes are serialized; a failure
// in either direction latches the channel unusable because the stream can
// no longer be trusted to be aligned on a frame boundary.
type Channel struct {
	conn  net.Conn
	aead  *crypto.AEAD
	codec *protocol.Codec

	readTimeout  time.Duration
	writeTimeout time.Duration

	// Mutex for write operations
	writeMu sync.Mutex

	// Channel state
	stateMu sync.RWMutex
	failed  bool
	closed  bool

	observer Observer
}

// New creates a secure channel over conn keyed with sessionKey.
//
// The key is copied into the cipher state; the caller should zeroize its
// own copy once the channel is constructed.
func New(conn net.Conn, sessionKey []byte) (*Channel, error) {
	return NewWithConfig(conn, sessionKey, DefaultConfig())
}

// NewWithConfig creates a secure channel with custom configuration.
func NewWithConfig(conn net.Conn, sessionKey []byte, config Config) (*Channel, error) {
	suite := config.Suite
	if suite == 0 {
		suite = constants.CipherSuiteAES256GCM
	}

	aead, err := crypto.NewAEAD(suite, sessionKey)
	if err != nil {
		return nil, err
	}

	return &Channel{
		conn:         conn,
		aead:         aead,
		codec:        protocol.NewCodec(),
		readTimeout:  config.ReadTimeout,
		writeTimeout: config.WriteTimeout,
	}, nil
}

// SetObserver sets an observer for channel traffic events.
func (ch *Channel) SetObserver(observer Observer) {
	ch.observer = observer
}

// Send seals message under a fresh random nonce and writes it as one
// sealed frame pair.
func (ch *Channel) Send(message string) error {
	if err := ch.usable(); err != nil {
		return err
	}

	nonce, err := ch.aead.NewNonce()
	if err != nil {
		return ch.fail(err)
	}

	ciphertext, err := ch.aead.Seal(nonce, []byte(message))
	if err != nil {
		return ch.fail(err)
	}

	ch.writeMu.Lock()
	if ch.writeTimeout > 0 {
		_ = ch.conn.SetWriteDeadline(time.Now().Add(ch.writeTimeout))
	}
	err = ch.codec.WriteSealedMessage(ch.conn, nonce, ciphertext)
	ch.writeMu.Unlock()

	if err != nil {
		return ch.fail(err)
	}

	if ch.observer != nil {
		ch.observer.OnMessageSent(len(message))
	}
	return nil
}

// Receive reads one sealed message and returns its text.
//
// A clean close by the peer returns ErrChannelClosed. Any authentication
// failure or malformed frame returns an error and latches the channel
// unusable; there is no resynchronization.
func (ch *Channel) Receive() (string, error) {
	if err := ch.usable(); err != nil {
		return "", err
	}

	if ch.readTimeout > 0 {
		_ = ch.conn.SetReadDeadline(time.Now().Add(ch.readTimeout))
	}

	nonce, ciphertext, err := ch.codec.ReadSealedMessage(ch.conn)
	if err != nil {
		if err == io.EOF {
			ch.markClosed()
			return "", qerrors.ErrChannelClosed
		}
		return "", ch.fail(err)
	}

	plaintext, err := ch.aead.Open(nonce, ciphertext)
	if err != nil {
		if ch.observer != nil && qerrors.Is(err, qerrors.ErrAuthenticationFailed) {
			ch.observer.OnAuthFailure()
		}
		return "", ch.fail(err)
	}

	if ch.observer != nil {
		ch.observer.OnMessageReceived(len(plaintext))
	}
	return string(plaintext), nil
}

// Close closes the underlying connection. It is safe to call more than
// once; close errors from the transport are discarded.
func (ch *Channel) Close() error {
	ch.stateMu.Lock()
	if ch.closed {
		ch.stateMu.Unlock()
		return nil
	}
	ch.closed = true
	ch.stateMu.Unlock()

	_ = ch.conn.Close()
	return nil
}

// Closed reports whether the channel has been closed by either side.
func (ch *Channel) Closed() bool {
	ch.stateMu.RLock()
	defer ch.stateMu.RUnlock()
	return ch.closed
}

// usable returns the state error barring traffic, if any.
func (ch *Channel) usable() error {
	ch.stateMu.RLock()
	defer ch.stateMu.RUnlock()
	if ch.closed {
		return qerrors.ErrChannelClosed
	}
	if ch.failed {
		return qerrors.ErrChannelUnusable
	}
	return nil
}

// fail latches the channel unusable and reports the error.
func (ch *Channel) fail(err error) error {
	ch.stateMu.Lock()
	ch.failed = true
	ch.stateMu.Unlock()

	if ch.observer != nil {
		ch.observer.OnProtocolError(err)
	}
	return err
}

// markClosed records a close observed from the peer side.
func (ch *Channel) markClosed() {
	ch.stateMu.Lock()
	ch.closed = true
	ch.stateMu.Unlock()
}
