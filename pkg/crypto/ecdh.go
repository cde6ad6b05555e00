// ecdh.go implements the classical key agreement over NIST P-384.
//
// P-384 (secp384r1) provides roughly 192 bits of classical security. It is
// NOT quantum-resistant: a large-scale quantum computer running Shor's
// algorithm recovers the shared secret from the public points. It serves as
// the classical baseline the post-quantum handshake is measured against and
// as one half of the hybrid key agreement.
//
// Public keys travel as PEM-encoded PKIX (SubjectPublicKeyInfo) blocks. The
// encoding is self-describing: algorithm identifier, curve OID and the
// uncompressed point, so a peer can reject keys on the wrong curve before
// any group operation.
package crypto

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"

	qerrors "github.com/bhaskardatta/Quantum-performance-simulator/internal/errors"
)

// ECDHKeyPair represents a P-384 key pair for classical ECDH.
type ECDHKeyPair struct {
	// PublicKey is the public component for sharing
	PublicKey *ecdh.PublicKey

	// PrivateKey is the secret component
	PrivateKey *ecdh.PrivateKey
}

// GenerateECDHKeyPair generates a fresh P-384 key pair.
// Returns an error if the system's CSPRNG fails.
func GenerateECDHKeyPair() (*ECDHKeyPair, error) {
	curve := ecdh.P384()

	privateKey, err := curve.GenerateKey(Reader)
	if err != nil {
		return nil, qerrors.NewCryptoError("ECDHKeyPair.Generate", err)
	}

	return &ECDHKeyPair{
		PublicKey:  privateKey.PublicKey(),
		PrivateKey: privateKey,
	}, nil
}

// ECDHSharedSecret computes the P-384 shared secret.
//
// Security Note: the 48-byte result is raw Diffie-Hellman output and must
// never be used as a key directly. Always derive with DeriveSessionKey.
//
// Parameters:
//   - privateKey: The local private key
//   - peerPublic: The peer's public key
//
// Returns:
//   - sharedSecret: 48-byte shared secret
//   - error: Non-nil if either key is invalid
func ECDHSharedSecret(privateKey *ecdh.PrivateKey, peerPublic *ecdh.PublicKey) ([]byte, error) {
	if privateKey == nil {
		return nil, qerrors.ErrInvalidPrivateKey
	}
	if peerPublic == nil {
		return nil, qerrors.ErrInvalidPublicKey
	}

	sharedSecret, err := privateKey.ECDH(peerPublic)
	if err != nil {
		return nil, qerrors.NewCryptoError("ECDHSharedSecret", err)
	}

	return sharedSecret, nil
}

// PublicKeyPEM returns the public key as a PEM-encoded PKIX block.
func (kp *ECDHKeyPair) PublicKeyPEM() ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(kp.PublicKey)
	if err != nil {
		return nil, qerrors.NewCryptoError("ECDHKeyPair.PublicKeyPEM", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

// ParseECDHPublicKeyPEM parses a peer's PEM-encoded PKIX public key and
// returns it as a P-384 ECDH public key. Keys on any other curve, non-EC
// keys and malformed encodings are rejected.
func ParseECDHPublicKeyPEM(data []byte) (*ecdh.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "PUBLIC KEY" {
		return nil, qerrors.ErrInvalidPublicKey
	}

	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, qerrors.NewCryptoError("ParseECDHPublicKeyPEM", err)
	}

	ecKey, ok := parsed.(*ecdsa.PublicKey)
	if !ok {
		return nil, qerrors.ErrInvalidPublicKey
	}

	publicKey, err := ecKey.ECDH()
	if err != nil {
		return nil, qerrors.NewCryptoError("ParseECDHPublicKeyPEM", err)
	}
	if publicKey.Curve() != ecdh.P384() {
		return nil, qerrors.ErrInvalidPublicKey
	}

	return publicKey, nil
}

// Zeroize drops the key material references.
// ecdh.PrivateKey does not expose its scalar for overwriting.
func (kp *ECDHKeyPair) Zeroize() {
	kp.PrivateKey = nil
	kp.PublicKey = nil
}
