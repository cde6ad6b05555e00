// mldsa.go implements the ML-DSA-65 digital signature wrapper.
//
// ML-DSA (Module-Lattice-based Digital Signature Algorithm) is standardized
// in NIST FIPS 204 and built on the Fiat-Shamir with Aborts paradigm over
// module lattices. The 65 parameter set provides NIST Category 3 security,
// matching ML-KEM-768 on the key-establishment side.
//
// Signatures here authenticate handshake values only. Signing identities are
// generated fresh per handshake and discarded afterwards; there is no
// persistent trust anchor binding a key to a peer.
package crypto

import (
	"github.com/cloudflare/circl/sign/mldsa/mldsa65"

	"github.com/bhaskardatta/Quantum-performance-simulator/internal/constants"
	qerrors "github.com/bhaskardatta/Quantum-performance-simulator/internal/errors"
)

// SigningPublicKey wraps an ML-DSA-65 verification key
type SigningPublicKey struct {
	key *mldsa65.PublicKey
}

// SigningPrivateKey wraps an ML-DSA-65 signing key
type SigningPrivateKey struct {
	key *mldsa65.PrivateKey
}

// SigningKeyPair represents an ephemeral ML-DSA-65 signing identity.
type SigningKeyPair struct {
	// VerificationKey is the public key the peer verifies against
	VerificationKey *SigningPublicKey

	// SigningKey is the secret signing component
	SigningKey *SigningPrivateKey
}

// GenerateSigningKeyPair generates a fresh ML-DSA-65 key pair.
// Returns an error if the system's CSPRNG fails.
func GenerateSigningKeyPair() (*SigningKeyPair, error) {
	pub, priv, err := mldsa65.GenerateKey(Reader)
	if err != nil {
		return nil, qerrors.NewCryptoError("SigningKeyPair.Generate", err)
	}

	return &SigningKeyPair{
		VerificationKey: &SigningPublicKey{key: pub},
		SigningKey:      &SigningPrivateKey{key: priv},
	}, nil
}

// Sign signs a message with the deterministic ML-DSA-65 mode.
//
// Parameters:
//   - sk: The signing key
//   - message: The message to sign
//
// Returns:
//   - signature: The signature (3309 bytes)
//   - error: Non-nil if the key is invalid or signing fails
func Sign(sk *SigningPrivateKey, message []byte) ([]byte, error) {
	if sk == nil || sk.key == nil {
		return nil, qerrors.ErrInvalidPrivateKey
	}

	sig := make([]byte, mldsa65.SignatureSize)
	if err := mldsa65.SignTo(sk.key, message, nil, false, sig); err != nil {
		return nil, qerrors.NewCryptoError("Sign", qerrors.ErrSignatureFailed)
	}

	return sig, nil
}

// VerifySignature reports whether signature is a valid ML-DSA-65 signature
// of message under the given verification key. Malformed inputs verify as
// false, never as an error; the caller treats false as a hard abort.
func VerifySignature(pk *SigningPublicKey, message, signature []byte) bool {
	if pk == nil || pk.key == nil {
		return false
	}
	if len(signature) != constants.MLDSASignatureSize {
		return false
	}
	return mldsa65.Verify(pk.key, message, nil, signature)
}

// Bytes returns the encoded bytes of the verification key.
func (pk *SigningPublicKey) Bytes() []byte {
	if pk == nil || pk.key == nil {
		return nil
	}
	buf, err := pk.key.MarshalBinary()
	if err != nil {
		return nil
	}
	return buf
}

// PublicKeyBytes returns the encoded bytes of the verification key.
func (kp *SigningKeyPair) PublicKeyBytes() []byte {
	return kp.VerificationKey.Bytes()
}

// ParseSigningPublicKey parses an ML-DSA-65 verification key from its
// encoded form.
func ParseSigningPublicKey(data []byte) (*SigningPublicKey, error) {
	if len(data) != constants.MLDSAPublicKeySize {
		return nil, qerrors.ErrInvalidPublicKey
	}

	pk := new(mldsa65.PublicKey)
	if err := pk.UnmarshalBinary(data); err != nil {
		return nil, qerrors.NewCryptoError("ParseSigningPublicKey", err)
	}

	return &SigningPublicKey{key: pk}, nil
}

// Zeroize securely erases the signing key material.
// CIRCL does not expose direct zeroization, so the references are cleared.
func (kp *SigningKeyPair) Zeroize() {
	kp.SigningKey = nil
	kp.VerificationKey = nil
}
