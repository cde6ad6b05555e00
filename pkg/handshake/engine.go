// Package handshake implements the key establishment engines for the
// secure channel.
//
// Three engines share one interface:
//
//   - classical: ephemeral ECDH over P-384 with HKDF-SHA256 derivation
//   - pqc: ML-KEM-768 encapsulation authenticated by ML-DSA-65 signatures
//   - hybrid: classical followed by pqc on the same stream, both secrets
//     folded into one key
//
// Every engine either returns the same fresh 32-byte session key on both
// sides or fails with an error and no key; there is no partial success.
// Engines are stateless and safe for concurrent use. All per-connection
// state lives on the stack of the handshake call.
package handshake

import (
	"fmt"
	"io"
	"strings"

	qerrors "github.com/bhaskardatta/Quantum-performance-simulator/internal/errors"
)

// Mode identifies a handshake engine.
type Mode string

const (
	// ModeClassical is ephemeral ECDH over P-384.
	ModeClassical Mode = "classical"

	// ModePostQuantum is ML-KEM-768 authenticated with ML-DSA-65.
	ModePostQuantum Mode = "pqc"

	// ModeHybrid combines the classical and post-quantum exchanges.
	ModeHybrid Mode = "hybrid"
)

// Modes returns all supported modes in canonical order.
func Modes() []Mode {
	return []Mode{ModeClassical, ModePostQuantum, ModeHybrid}
}

// String returns the canonical name of the mode.
func (m Mode) String() string {
	return string(m)
}

// IsValid reports whether the mode names a known engine.
func (m Mode) IsValid() bool {
	switch m {
	case ModeClassical, ModePostQuantum, ModeHybrid:
		return true
	default:
		return false
	}
}

// ParseMode parses a mode name. Matching is case-insensitive and ignores
// surrounding whitespace.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeClassical:
		return ModeClassical, nil
	case ModePostQuantum:
		return ModePostQuantum, nil
	case ModeHybrid:
		return ModeHybrid, nil
	default:
		return "", fmt.Errorf("%w: %q", qerrors.ErrUnsupportedMode, s)
	}
}

// Engine performs one side of a key establishment exchange.
//
// Both calls block until the exchange completes or fails. On success the
// returned key is exactly 32 bytes and equal on both ends of the stream;
// on failure no key material is returned.
type Engine interface {
	// Mode returns the mode this engine implements.
	Mode() Mode

	// ClientHandshake runs the connecting side of the exchange.
	ClientHandshake(rw io.ReadWriter) ([]byte, error)

	// ServerHandshake runs the accepting side of the exchange.
	ServerHandshake(rw io.ReadWriter) ([]byte, error)
}

// EngineForMode returns the engine implementing the given mode.
func EngineForMode(mode Mode) (Engine, error) {
	switch mode {
	case ModeClassical:
		return NewClassical(), nil
	case ModePostQuantum:
		return NewPostQuantum(), nil
	case ModeHybrid:
		return NewHybrid(), nil
	default:
		return nil, fmt.Errorf("%w: %q", qerrors.ErrUnsupportedMode, mode)
	}
}
