// server.go implements the accepting endpoint.
//
// This file (server.go) provides:
//   - A bounded-poll accept loop that notices a stop request within one
//     poll interval even when no connection is pending
//   - Sequential connection handling: handshake, then a receive loop that
//     runs until the sentinel, a clean close, or a channel failure
//   - A thread-safe last-message slot with an observable signal, plus a
//     buffered message stream for external consumers
//   - Idempotent stop with a bounded join
package channel

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bhaskardatta/Quantum-performance-simulator/internal/constants"
	qerrors "github.com/bhaskardatta/Quantum-performance-simulator/internal/errors"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/crypto"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/handshake"
)

const (
	// acceptPollInterval bounds how long a stop request can go unnoticed
	// while the listener waits for a connection.
	acceptPollInterval = 1 * time.Second

	// stopJoinTimeout bounds how long Stop waits for the serve loop to
	// finish before returning.
	stopJoinTimeout = 2 * time.Second

	// defaultMessageBuffer is the capacity of the Messages stream.
	defaultMessageBuffer = 64
)

// ServerState represents the current state of the server.
type ServerState int32

const (
	// ServerStopped indicates the server is not running
	ServerStopped ServerState = iota

	// ServerListening indicates the server is waiting for a connection
	ServerListening

	// ServerHandshaking indicates a key exchange is in progress
	ServerHandshaking

	// ServerServing indicates an established channel is being read
	ServerServing
)

// String returns a human-readable state name.
func (s ServerState) String() string {
	switch s {
	case ServerStopped:
		return "stopped"
	case ServerListening:
		return "listening"
	case ServerHandshaking:
		return "handshaking"
	case ServerServing:
		return "serving"
	default:
		return "unknown"
	}
}

// ServerConfig holds configuration for a server endpoint.
type ServerConfig struct {
	// Address is the TCP listen address, for example "127.0.0.1:0".
	Address string

	// Mode selects the handshake engine. Defaults to the post-quantum mode.
	Mode handshake.Mode

	// Suite selects the channel AEAD cipher. Defaults to AES-256-GCM.
	Suite constants.CipherSuite

	// ReadTimeout and WriteTimeout bound individual channel operations.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// HandshakeRate caps accepted handshakes per second. Zero disables
	// the limiter.
	HandshakeRate float64

	// HandshakeBurst is the burst allowance of the handshake limiter.
	// Defaults to 1 when HandshakeRate is set.
	HandshakeBurst int

	// MessageBuffer is the capacity of the Messages stream. When the
	// buffer is full, further messages are dropped from the stream; the
	// last-message slot always keeps the newest.
	MessageBuffer int

	// Observer receives lifecycle and traffic events.
	Observer Observer
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Address:       "127.0.0.1:0",
		Mode:          handshake.ModePostQuantum,
		Suite:         constants.CipherSuiteAES256GCM,
		MessageBuffer: defaultMessageBuffer,
	}
}

// Server is the accepting endpoint of the secure channel.
//
// One connection is served at a time: each accepted socket runs its
// handshake and receive loop to completion before the next accept. The
// last received message is published through a mutex-guarded slot and an
// observable signal; the slot and the running flag are the only state
// shared with external callers, and neither lock is held across I/O.
type Server struct {
	config  ServerConfig
	engine  handshake.Engine
	limiter *HandshakeLimiter

	state atomic.Int32

	// Guards the run lifecycle fields below.
	mu       sync.Mutex
	running  bool
	listener net.Listener
	ready    chan struct{}
	done     chan struct{}
	finished chan struct{}

	// Last-message slot and its observable signal.
	msgMu       sync.Mutex
	lastMessage string
	hasMessage  bool
	msgSignal   chan struct{}

	messages chan string
}

// NewServer creates a server for the configured handshake mode. The
// server does not listen until Start is called.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Address == "" {
		config.Address = "127.0.0.1:0"
	}
	if config.Mode == "" {
		config.Mode = handshake.ModePostQuantum
	}
	if config.MessageBuffer <= 0 {
		config.MessageBuffer = defaultMessageBuffer
	}

	engine, err := handshake.EngineForMode(config.Mode)
	if err != nil {
		return nil, err
	}

	var limiter *HandshakeLimiter
	if config.HandshakeRate > 0 {
		burst := config.HandshakeBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = NewHandshakeLimiter(config.HandshakeRate, burst)
	}

	return &Server{
		config:    config,
		engine:    engine,
		limiter:   limiter,
		ready:     make(chan struct{}),
		msgSignal: make(chan struct{}),
		messages:  make(chan string, config.MessageBuffer),
	}, nil
}

// Mode returns the handshake mode this server uses.
func (s *Server) Mode() handshake.Mode {
	return s.engine.Mode()
}

// State returns the current server state.
func (s *Server) State() ServerState {
	return ServerState(s.state.Load())
}

// Start binds the listener and launches the serve loop in the background.
//
// The returned error covers bind failures only; accept and handshake
// failures during operation are reported through the observer and do not
// stop the server. Once Start returns nil the Ready channel is closed and
// clients may dial.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return qerrors.ErrServerRunning
	}

	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}

	s.listener = listener
	s.running = true
	s.done = make(chan struct{})
	s.finished = make(chan struct{})
	s.state.Store(int32(ServerListening))

	go s.run(listener, s.done, s.finished)

	close(s.ready)
	return nil
}

// Ready returns a channel that is closed once the listener is bound and
// accepting. Callers may dial as soon as it is closed.
func (s *Server) Ready() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Addr returns the bound listener address, or nil when not running.
// With a ":0" configured address this is how callers learn the port.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop requests the serve loop to exit and closes the listener.
//
// Stop is idempotent and safe to call while a connection is mid-
// handshake; an in-flight exchange is left to complete or fail on its
// own rather than being torn down under the peer. The call waits a
// bounded time for the loop to finish and returns even if a connection
// is still draining.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.done)
	listener := s.listener
	finished := s.finished
	s.listener = nil
	s.ready = make(chan struct{})
	s.mu.Unlock()

	if listener != nil {
		_ = listener.Close()
	}

	select {
	case <-finished:
	case <-time.After(stopJoinTimeout):
	}
	return nil
}

// LastMessage returns the most recently received message, if any.
func (s *Server) LastMessage() (string, bool) {
	s.msgMu.Lock()
	defer s.msgMu.Unlock()
	return s.lastMessage, s.hasMessage
}

// WaitForMessage blocks until a message has been received or the timeout
// elapses. It returns immediately when a message already arrived earlier
// in the server's lifetime.
func (s *Server) WaitForMessage(timeout time.Duration) (string, bool) {
	s.msgMu.Lock()
	if s.hasMessage {
		message := s.lastMessage
		s.msgMu.Unlock()
		return message, true
	}
	signal := s.msgSignal
	s.msgMu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-signal:
		return s.LastMessage()
	case <-timer.C:
		return "", false
	}
}

// Messages returns the stream of received messages. The stream is never
// closed; consumers should select against their own cancellation signal.
func (s *Server) Messages() <-chan string {
	return s.messages
}

// run is the accept loop. It owns the listener and exits when the done
// channel closes or the listener is shut.
func (s *Server) run(listener net.Listener, done, finished chan struct{}) {
	defer func() {
		s.state.Store(int32(ServerStopped))
		close(finished)
	}()

	for {
		select {
		case <-done:
			return
		default:
		}

		if d, ok := listener.(interface{ SetDeadline(time.Time) error }); ok {
			_ = d.SetDeadline(time.Now().Add(acceptPollInterval))
		}

		conn, err := listener.Accept()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			if s.config.Observer != nil {
				s.config.Observer.OnProtocolError(err)
			}
			continue
		}

		s.handleConnection(conn, done)
	}
}

// handleConnection serves one accepted connection to completion.
func (s *Server) handleConnection(conn net.Conn, done chan struct{}) {
	defer func() {
		_ = conn.Close()
		s.state.Store(int32(ServerListening))
	}()

	remoteAddr := conn.RemoteAddr().String()

	if s.limiter != nil && !s.limiter.AllowHandshake() {
		if s.config.Observer != nil {
			s.config.Observer.OnRateLimited(remoteAddr)
		}
		return
	}

	if s.config.Observer != nil {
		s.config.Observer.OnConnectionStart(remoteAddr)
		defer s.config.Observer.OnConnectionEnd(remoteAddr)
	}

	s.state.Store(int32(ServerHandshaking))

	key, err := s.runHandshake(conn)
	if err != nil {
		return
	}

	channel, err := NewWithConfig(conn, key, Config{
		Suite:        s.config.Suite,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	})
	crypto.Zeroize(key)
	if err != nil {
		return
	}
	channel.SetObserver(s.config.Observer)

	s.state.Store(int32(ServerServing))
	s.serveChannel(channel, done)
}

// runHandshake executes the server side of the key exchange with observer
// hooks around it.
func (s *Server) runHandshake(conn net.Conn) ([]byte, error) {
	var hsDone func(error)
	if s.config.Observer != nil {
		_, hsDone = s.config.Observer.OnHandshakeStart(context.Background(), s.engine.Mode().String())
	}

	key, err := s.engine.ServerHandshake(conn)
	if hsDone != nil {
		hsDone(err)
	}
	return key, err
}

// serveChannel reads messages until the sentinel, a clean close, or a
// channel failure. The sentinel is delivered like any other message
// before the loop ends.
func (s *Server) serveChannel(channel *Channel, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		default:
		}

		message, err := channel.Receive()
		if err != nil {
			return
		}

		s.recordMessage(message)

		if IsSentinel(message) {
			return
		}
	}
}

// recordMessage publishes a received message to the last-message slot,
// wakes waiters, and feeds the message stream.
func (s *Server) recordMessage(message string) {
	s.msgMu.Lock()
	s.lastMessage = message
	s.hasMessage = true
	close(s.msgSignal)
	s.msgSignal = make(chan struct{})
	s.msgMu.Unlock()

	select {
	case s.messages <- message:
	default:
	}
}
