// hybrid.go implements the combined classical + post-quantum engine.
//
// The hybrid exchange runs the classical ECDH handshake and then the
// post-quantum handshake back to back on the same stream, in that order,
// and folds both raw secrets into one session key. Recovering the key
// requires breaking both P-384 and ML-KEM-768.
//
// Only the post-quantum half is authenticated; the classical half keeps
// its man-in-the-middle exposure, which the combined derivation does not
// repair.
package handshake

import (
	"io"

	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/crypto"
)

// Hybrid chains the classical and post-quantum exchanges over one stream.
type Hybrid struct {
	classical *Classical
	pq        *PostQuantum
}

// NewHybrid creates the hybrid engine.
func NewHybrid() *Hybrid {
	return &Hybrid{
		classical: NewClassical(),
		pq:        NewPostQuantum(),
	}
}

// Mode returns ModeHybrid.
func (e *Hybrid) Mode() Mode {
	return ModeHybrid
}

// ServerHandshake runs both accepting-side exchanges and derives the
// session key from the pair of raw secrets.
func (e *Hybrid) ServerHandshake(rw io.ReadWriter) ([]byte, error) {
	classicalSecret, err := e.classical.serverExchange(rw)
	if err != nil {
		return nil, err
	}
	defer crypto.Zeroize(classicalSecret)

	pqSecret, err := e.pq.serverExchange(rw)
	if err != nil {
		return nil, err
	}
	defer crypto.Zeroize(pqSecret)

	return crypto.DeriveHybridKey(classicalSecret, pqSecret)
}

// ClientHandshake runs both connecting-side exchanges and derives the
// session key from the pair of raw secrets.
func (e *Hybrid) ClientHandshake(rw io.ReadWriter) ([]byte, error) {
	classicalSecret, err := e.classical.clientExchange(rw)
	if err != nil {
		return nil, err
	}
	defer crypto.Zeroize(classicalSecret)

	pqSecret, err := e.pq.clientExchange(rw)
	if err != nil {
		return nil, err
	}
	defer crypto.Zeroize(pqSecret)

	return crypto.DeriveHybridKey(classicalSecret, pqSecret)
}
