// client.go implements the connecting endpoint.
//
// A Client dials the server, runs the configured handshake engine, and
// speaks the secure channel over the resulting key. Dial failures and
// handshake failures are reported under distinct error classes so callers
// can tell an absent server from a broken exchange.
package channel

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/bhaskardatta/Quantum-performance-simulator/internal/constants"
	qerrors "github.com/bhaskardatta/Quantum-performance-simulator/internal/errors"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/crypto"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/handshake"
)

// ClientConfig holds configuration for a client endpoint.
type ClientConfig struct {
	// Mode selects the handshake engine. Defaults to the post-quantum mode.
	Mode handshake.Mode

	// Suite selects the channel AEAD cipher. Defaults to AES-256-GCM.
	Suite constants.CipherSuite

	// DialTimeout bounds the TCP connect. Zero means the OS default.
	DialTimeout time.Duration

	// ReadTimeout and WriteTimeout bound individual channel operations.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Observer receives lifecycle and traffic events.
	Observer Observer
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Mode:        handshake.ModePostQuantum,
		Suite:       constants.CipherSuiteAES256GCM,
		DialTimeout: 10 * time.Second,
	}
}

// Client is the connecting endpoint of a secure channel.
//
// A zero Client is not usable; construct with NewClient. Connect must
// succeed before Send or Receive. All methods are safe for concurrent use.
type Client struct {
	config ClientConfig
	engine handshake.Engine

	mu      sync.RWMutex
	channel *Channel
	address string
	lastErr error
}

// NewClient creates a client for the configured handshake mode.
func NewClient(config ClientConfig) (*Client, error) {
	if config.Mode == "" {
		config.Mode = handshake.ModePostQuantum
	}

	engine, err := handshake.EngineForMode(config.Mode)
	if err != nil {
		return nil, err
	}

	return &Client{
		config: config,
		engine: engine,
	}, nil
}

// Mode returns the handshake mode this client uses.
func (c *Client) Mode() handshake.Mode {
	return c.engine.Mode()
}

// Connect dials the server, runs the handshake, and establishes the
// secure channel.
//
// A socket-level failure is reported under ErrConnectFailed; a failure
// during the key exchange is reported under ErrHandshakeFailed and leaves
// no key material behind. In both cases the client remains disconnected.
func (c *Client) Connect(address string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil {
		c.lastErr = qerrors.ErrAlreadyConnected
		return c.lastErr
	}

	conn, err := net.DialTimeout("tcp", address, c.config.DialTimeout)
	if err != nil {
		c.lastErr = fmt.Errorf("%w: %w", qerrors.ErrConnectFailed, err)
		return c.lastErr
	}

	if c.config.Observer != nil {
		c.config.Observer.OnConnectionStart(address)
	}

	key, err := c.runHandshake(conn)
	if err != nil {
		_ = conn.Close()
		if c.config.Observer != nil {
			c.config.Observer.OnConnectionEnd(address)
		}
		c.lastErr = fmt.Errorf("%w: %w", qerrors.ErrHandshakeFailed, err)
		return c.lastErr
	}
	defer crypto.Zeroize(key)

	channel, err := NewWithConfig(conn, key, Config{
		Suite:        c.config.Suite,
		ReadTimeout:  c.config.ReadTimeout,
		WriteTimeout: c.config.WriteTimeout,
	})
	if err != nil {
		_ = conn.Close()
		c.lastErr = err
		return err
	}
	channel.SetObserver(c.config.Observer)

	c.channel = channel
	c.address = address
	c.lastErr = nil
	return nil
}

// runHandshake executes the client side of the key exchange with observer
// hooks around it.
func (c *Client) runHandshake(conn net.Conn) ([]byte, error) {
	var done func(error)
	if c.config.Observer != nil {
		_, done = c.config.Observer.OnHandshakeStart(context.Background(), c.engine.Mode().String())
	}

	key, err := c.engine.ClientHandshake(conn)
	if done != nil {
		done(err)
	}
	return key, err
}

// Connected reports whether a secure channel is established.
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel != nil && !c.channel.Closed()
}

// Send transmits one message over the established channel.
func (c *Client) Send(message string) error {
	channel, err := c.current()
	if err != nil {
		return c.recordError(err)
	}
	return c.recordError(channel.Send(message))
}

// Receive reads one message from the established channel.
func (c *Client) Receive() (string, error) {
	channel, err := c.current()
	if err != nil {
		return "", c.recordError(err)
	}
	message, err := channel.Receive()
	return message, c.recordError(err)
}

// LastError returns the error from the most recent Connect, Send, or
// Receive, or nil if that operation succeeded.
func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// recordError stores the outcome of an operation in the last-error slot
// and passes it through.
func (c *Client) recordError(err error) error {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
	return err
}

// Close tears down the channel and the connection. It is safe to call
// at any time, including before Connect and more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	channel := c.channel
	address := c.address
	c.channel = nil
	c.address = ""
	c.mu.Unlock()

	if channel == nil {
		return nil
	}
	_ = channel.Close()
	if c.config.Observer != nil {
		c.config.Observer.OnConnectionEnd(address)
	}
	return nil
}

// current returns the established channel or ErrNotConnected.
func (c *Client) current() (*Channel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.channel == nil {
		return nil, qerrors.ErrNotConnected
	}
	return c.channel, nil
}
