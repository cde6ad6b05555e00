// postquantum.go implements the ML-KEM + ML-DSA handshake engine.
//
// Handshake Protocol:
//
//	Client                                 Server
//	    |                                      |
//	    | <------ signing public key --------- |  (1)
//	    |                                      |
//	    | ------- signing public key --------> |  (2)
//	    | ------- KEM public key ------------> |  (3)
//	    | ------- sig(KEM public key) -------> |  (4)
//	    |                                      |
//	    |       [Server verifies, then         |
//	    |        encapsulates and signs]       |
//	    |                                      |
//	    | <------ KEM ciphertext ------------- |  (5)
//	    | <------ sig(KEM ciphertext) -------- |  (6)
//	    |                                      |
//	    |     [Both derive session key]        |
//
// Each side verifies the peer's signature before acting on the signed
// value and aborts the exchange on any mismatch. The session key is the
// first 32 bytes of the encapsulated shared secret.
//
// Security Properties:
//   - Quantum resistance: ML-KEM-768 and ML-DSA-65, both NIST category 3
//   - Forward secrecy: fresh KEM and signing keys for every connection
//   - In-band identities only: signing keys are ephemeral and exchanged on
//     the same stream with no trust anchor, so the signatures bind the KEM
//     values to the stream rather than to a verified peer. An attacker who
//     is active at connection time can substitute identities.
package handshake

import (
	"io"

	qerrors "github.com/bhaskardatta/Quantum-performance-simulator/internal/errors"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/crypto"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/protocol"
)

// PostQuantum performs a signed ML-KEM-768 encapsulation exchange.
type PostQuantum struct {
	codec *protocol.Codec
}

// NewPostQuantum creates the post-quantum engine.
func NewPostQuantum() *PostQuantum {
	return &PostQuantum{codec: protocol.NewCodec()}
}

// Mode returns ModePostQuantum.
func (e *PostQuantum) Mode() Mode {
	return ModePostQuantum
}

// ServerHandshake announces the server's signing identity, verifies the
// client's signed KEM key, encapsulates against it, and signs the
// ciphertext before returning the derived session key.
func (e *PostQuantum) ServerHandshake(rw io.ReadWriter) ([]byte, error) {
	sharedSecret, err := e.serverExchange(rw)
	if err != nil {
		return nil, err
	}
	defer crypto.Zeroize(sharedSecret)

	return crypto.SessionKeyFromSharedSecret(sharedSecret)
}

// ClientHandshake sends a signed KEM public key, verifies the server's
// signed ciphertext, and decapsulates it into the session key.
func (e *PostQuantum) ClientHandshake(rw io.ReadWriter) ([]byte, error) {
	sharedSecret, err := e.clientExchange(rw)
	if err != nil {
		return nil, err
	}
	defer crypto.Zeroize(sharedSecret)

	return crypto.SessionKeyFromSharedSecret(sharedSecret)
}

// serverExchange runs the accepting side and returns the raw 32-byte KEM
// shared secret. The hybrid engine consumes the raw secret directly.
func (e *PostQuantum) serverExchange(rw io.ReadWriter) ([]byte, error) {
	signingPair, err := crypto.GenerateSigningKeyPairWithCST()
	if err != nil {
		return nil, err
	}
	defer signingPair.Zeroize()

	if err := e.codec.WriteFrame(rw, signingPair.PublicKeyBytes()); err != nil {
		return nil, err
	}

	clientSigningBytes, err := e.codec.ReadFrame(rw)
	if err != nil {
		return nil, err
	}
	clientSigning, err := crypto.ParseSigningPublicKey(clientSigningBytes)
	if err != nil {
		return nil, err
	}

	clientKEMBytes, err := e.codec.ReadFrame(rw)
	if err != nil {
		return nil, err
	}
	clientKEM, err := crypto.ParseKEMPublicKey(clientKEMBytes)
	if err != nil {
		return nil, err
	}

	keySignature, err := e.codec.ReadFrame(rw)
	if err != nil {
		return nil, err
	}
	if !crypto.VerifySignature(clientSigning, clientKEMBytes, keySignature) {
		return nil, qerrors.NewProtocolError("handshake", qerrors.ErrSignatureInvalid)
	}

	ciphertext, sharedSecret, err := crypto.KEMEncapsulate(clientKEM)
	if err != nil {
		return nil, err
	}

	delivered := false
	defer func() {
		if !delivered {
			crypto.Zeroize(sharedSecret)
		}
	}()

	ctSignature, err := crypto.Sign(signingPair.SigningKey, ciphertext)
	if err != nil {
		return nil, err
	}
	if err := e.codec.WriteFrame(rw, ciphertext); err != nil {
		return nil, err
	}
	if err := e.codec.WriteFrame(rw, ctSignature); err != nil {
		return nil, err
	}

	delivered = true
	return sharedSecret, nil
}

// clientExchange runs the connecting side and returns the raw 32-byte KEM
// shared secret.
func (e *PostQuantum) clientExchange(rw io.ReadWriter) ([]byte, error) {
	serverSigningBytes, err := e.codec.ReadFrame(rw)
	if err != nil {
		return nil, err
	}
	serverSigning, err := crypto.ParseSigningPublicKey(serverSigningBytes)
	if err != nil {
		return nil, err
	}

	signingPair, err := crypto.GenerateSigningKeyPairWithCST()
	if err != nil {
		return nil, err
	}
	defer signingPair.Zeroize()

	if err := e.codec.WriteFrame(rw, signingPair.PublicKeyBytes()); err != nil {
		return nil, err
	}

	kemPair, err := crypto.GenerateKEMKeyPairWithCST()
	if err != nil {
		return nil, err
	}
	defer kemPair.Zeroize()

	kemPublicBytes := kemPair.PublicKeyBytes()
	if err := e.codec.WriteFrame(rw, kemPublicBytes); err != nil {
		return nil, err
	}

	keySignature, err := crypto.Sign(signingPair.SigningKey, kemPublicBytes)
	if err != nil {
		return nil, err
	}
	if err := e.codec.WriteFrame(rw, keySignature); err != nil {
		return nil, err
	}

	ciphertext, err := e.codec.ReadFrame(rw)
	if err != nil {
		return nil, err
	}
	ctSignature, err := e.codec.ReadFrame(rw)
	if err != nil {
		return nil, err
	}
	if !crypto.VerifySignature(serverSigning, ciphertext, ctSignature) {
		return nil, qerrors.NewProtocolError("handshake", qerrors.ErrSignatureInvalid)
	}

	return crypto.KEMDecapsulate(kemPair.DecapsulationKey, ciphertext)
}
