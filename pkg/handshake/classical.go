// classical.go implements the ECDH handshake engine.
//
// Handshake Protocol:
//
//	Client                                 Server
//	    |                                      |
//	    | <------ server public key ---------- |
//	    |                                      |
//	    | ------- client public key ---------> |
//	    |                                      |
//	    |     [Both derive session key]        |
//
// The server generates its ephemeral P-384 key pair up front and speaks
// first; the client waits for the server's key before generating its own.
// Public keys travel as PEM-encoded PKIX blocks inside wire frames. Both
// sides expand the raw ECDH secret through HKDF-SHA256 into the 32-byte
// session key.
//
// Security Properties:
//   - Forward secrecy: fresh key pairs for every connection
//   - No authentication: an active man-in-the-middle can substitute keys;
//     this engine exists as the measurement baseline
//   - No quantum resistance: Shor's algorithm recovers the secret
package handshake

import (
	"crypto/ecdh"
	"io"

	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/crypto"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/protocol"
)

// Classical performs an unauthenticated ephemeral ECDH exchange over P-384.
type Classical struct {
	codec *protocol.Codec
}

// NewClassical creates the classical ECDH engine.
func NewClassical() *Classical {
	return &Classical{codec: protocol.NewCodec()}
}

// Mode returns ModeClassical.
func (e *Classical) Mode() Mode {
	return ModeClassical
}

// ServerHandshake generates an ephemeral key pair, sends its public key,
// and derives the session key from the client's reply.
func (e *Classical) ServerHandshake(rw io.ReadWriter) ([]byte, error) {
	sharedSecret, err := e.serverExchange(rw)
	if err != nil {
		return nil, err
	}
	defer crypto.Zeroize(sharedSecret)

	return crypto.DeriveSessionKey(sharedSecret)
}

// ClientHandshake waits for the server's public key, then replies with a
// fresh key pair of its own and derives the session key.
func (e *Classical) ClientHandshake(rw io.ReadWriter) ([]byte, error) {
	sharedSecret, err := e.clientExchange(rw)
	if err != nil {
		return nil, err
	}
	defer crypto.Zeroize(sharedSecret)

	return crypto.DeriveSessionKey(sharedSecret)
}

// serverExchange runs the accepting side and returns the raw 48-byte ECDH
// secret. The hybrid engine consumes the raw secret directly.
func (e *Classical) serverExchange(rw io.ReadWriter) ([]byte, error) {
	keyPair, err := crypto.GenerateECDHKeyPairWithCST()
	if err != nil {
		return nil, err
	}
	defer keyPair.Zeroize()

	if err := e.sendPublicKey(rw, keyPair); err != nil {
		return nil, err
	}

	peerPublic, err := e.readPublicKey(rw)
	if err != nil {
		return nil, err
	}

	return crypto.ECDHSharedSecret(keyPair.PrivateKey, peerPublic)
}

// clientExchange runs the connecting side and returns the raw 48-byte ECDH
// secret. The client does not generate a key pair until the server's public
// key has arrived intact.
func (e *Classical) clientExchange(rw io.ReadWriter) ([]byte, error) {
	peerPublic, err := e.readPublicKey(rw)
	if err != nil {
		return nil, err
	}

	keyPair, err := crypto.GenerateECDHKeyPairWithCST()
	if err != nil {
		return nil, err
	}
	defer keyPair.Zeroize()

	if err := e.sendPublicKey(rw, keyPair); err != nil {
		return nil, err
	}

	return crypto.ECDHSharedSecret(keyPair.PrivateKey, peerPublic)
}

func (e *Classical) sendPublicKey(w io.Writer, keyPair *crypto.ECDHKeyPair) error {
	publicPEM, err := keyPair.PublicKeyPEM()
	if err != nil {
		return err
	}
	return e.codec.WriteFrame(w, publicPEM)
}

func (e *Classical) readPublicKey(r io.Reader) (*ecdh.PublicKey, error) {
	peerPEM, err := e.codec.ReadFrame(r)
	if err != nil {
		return nil, err
	}
	return crypto.ParseECDHPublicKeyPEM(peerPEM)
}
