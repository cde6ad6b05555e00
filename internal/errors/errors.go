// Package errors defines custom error types for the secure channel stack.
// These errors provide detailed information for debugging while maintaining
// security by not leaking sensitive information in error messages.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for cryptographic operations
var (
	// ErrInvalidKeySize indicates that a key has an incorrect size
	ErrInvalidKeySize = errors.New("crypto: invalid key size")

	// ErrInvalidPublicKey indicates that a public key is invalid
	ErrInvalidPublicKey = errors.New("crypto: invalid public key")

	// ErrInvalidPrivateKey indicates that a private key is invalid
	ErrInvalidPrivateKey = errors.New("crypto: invalid private key")

	// ErrKeyGenerationFailed indicates that key generation failed
	ErrKeyGenerationFailed = errors.New("crypto: key generation failed")

	// ErrEncapsulationFailed indicates that KEM encapsulation failed
	ErrEncapsulationFailed = errors.New("kem: encapsulation failed")

	// ErrDecapsulationFailed indicates that KEM decapsulation failed
	ErrDecapsulationFailed = errors.New("kem: decapsulation failed")

	// ErrInvalidCiphertext indicates that a KEM ciphertext is malformed
	ErrInvalidCiphertext = errors.New("kem: invalid ciphertext")

	// ErrSignatureFailed indicates that signing failed
	ErrSignatureFailed = errors.New("sign: signing failed")

	// ErrSignatureInvalid indicates that signature verification failed
	ErrSignatureInvalid = errors.New("sign: signature verification failed")
)

// Sentinel errors for AEAD operations
var (
	// ErrAuthenticationFailed indicates AEAD authentication/decryption failed
	ErrAuthenticationFailed = errors.New("aead: authentication failed")

	// ErrInvalidNonce indicates the nonce size is incorrect
	ErrInvalidNonce = errors.New("aead: invalid nonce size")

	// ErrCiphertextTooShort indicates ciphertext is too short to be valid
	ErrCiphertextTooShort = errors.New("aead: ciphertext too short")
)

// Sentinel errors for framing operations
var (
	// ErrInvalidFrame indicates a wire frame is malformed
	ErrInvalidFrame = errors.New("frame: invalid frame")

	// ErrFrameTooLarge indicates a frame exceeds the maximum size
	ErrFrameTooLarge = errors.New("frame: frame too large")
)

// Sentinel errors for handshake operations
var (
	// ErrHandshakeFailed indicates the handshake failed
	ErrHandshakeFailed = errors.New("handshake: handshake failed")

	// ErrUnsupportedMode indicates an unknown handshake mode
	ErrUnsupportedMode = errors.New("handshake: unsupported mode")

	// ErrUnsupportedCipherSuite indicates an unsupported cipher suite
	ErrUnsupportedCipherSuite = errors.New("handshake: unsupported cipher suite")
)

// Sentinel errors for channel operations
var (
	// ErrChannelClosed indicates the channel has been closed
	ErrChannelClosed = errors.New("channel: connection closed")

	// ErrChannelUnusable indicates a prior failure poisoned the channel.
	// There is no resynchronization; callers must tear down and redial.
	ErrChannelUnusable = errors.New("channel: unusable after failure")

	// ErrNotConnected indicates no secure channel is established
	ErrNotConnected = errors.New("channel: not connected")

	// ErrAlreadyConnected indicates a connect attempt on a live channel
	ErrAlreadyConnected = errors.New("channel: already connected")

	// ErrConnectFailed indicates the transport connection could not be made
	ErrConnectFailed = errors.New("channel: connect failed")
)

// Sentinel errors for server operations
var (
	// ErrServerRunning indicates the server is already running
	ErrServerRunning = errors.New("server: already running")

	// ErrServerStopped indicates the server is not running
	ErrServerStopped = errors.New("server: not running")

	// ErrRateLimited indicates a handshake was rejected by the rate limiter
	ErrRateLimited = errors.New("server: handshake rate limited")
)

// Sentinel errors for benchmark operations
var (
	// ErrBenchAborted indicates a handshake failure aborted the benchmark run
	ErrBenchAborted = errors.New("bench: run aborted by handshake failure")

	// ErrInvalidConfig indicates a benchmark configuration is invalid
	ErrInvalidConfig = errors.New("bench: invalid configuration")
)

// CryptoError wraps a cryptographic error with additional context
type CryptoError struct {
	Op  string // Operation that failed
	Err error  // Underlying error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CryptoError) Unwrap() error {
	return e.Err
}

// NewCryptoError creates a new CryptoError
func NewCryptoError(op string, err error) *CryptoError {
	return &CryptoError{Op: op, Err: err}
}

// ProtocolError wraps a protocol error with additional context
type ProtocolError struct {
	Phase string // Protocol phase (e.g., "handshake", "transport")
	Err   error  // Underlying error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol %s: %v", e.Phase, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// NewProtocolError creates a new ProtocolError
func NewProtocolError(phase string, err error) *ProtocolError {
	return &ProtocolError{Phase: phase, Err: err}
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
