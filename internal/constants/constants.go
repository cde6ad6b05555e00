// Package constants defines the cryptographic parameters and protocol
// constants shared by the handshake engines and the secure channel.
//
// Security level: NIST Category 3 on the post-quantum path (ML-KEM-768 +
// ML-DSA-65) and ~192-bit classical security on the ECDH path (P-384).
package constants

// ML-KEM-768 Parameters (NIST FIPS 203)
const (
	// MLKEMPublicKeySize is the size of the ML-KEM-768 encapsulation key in bytes
	MLKEMPublicKeySize = 1184

	// MLKEMPrivateKeySize is the size of the ML-KEM-768 decapsulation key in bytes
	MLKEMPrivateKeySize = 2400

	// MLKEMCiphertextSize is the size of an ML-KEM-768 ciphertext in bytes
	MLKEMCiphertextSize = 1088

	// MLKEMSharedSecretSize is the size of the shared secret from ML-KEM in bytes
	MLKEMSharedSecretSize = 32
)

// ML-DSA-65 Parameters (NIST FIPS 204)
const (
	// MLDSAPublicKeySize is the size of an ML-DSA-65 verification key in bytes
	MLDSAPublicKeySize = 1952

	// MLDSAPrivateKeySize is the size of an ML-DSA-65 signing key in bytes
	MLDSAPrivateKeySize = 4032

	// MLDSASignatureSize is the size of an ML-DSA-65 signature in bytes
	MLDSASignatureSize = 3309
)

// ECDH Parameters (NIST P-384, SEC 1)
const (
	// ECDHPublicKeySize is the size of an uncompressed P-384 public point in bytes
	ECDHPublicKeySize = 97

	// ECDHPrivateKeySize is the size of a P-384 scalar in bytes
	ECDHPrivateKeySize = 48

	// ECDHSharedSecretSize is the size of the raw P-384 shared secret in bytes.
	// The session key is derived from it with HKDF, never used directly.
	ECDHSharedSecretSize = 48
)

// Symmetric Encryption Parameters
const (
	// AESKeySize is the size of AES-256 keys in bytes
	AESKeySize = 32

	// AEADNonceSize is the nonce size of both supported AEADs in bytes (96 bits)
	AEADNonceSize = 12

	// AEADTagSize is the size of the authentication tag in bytes
	AEADTagSize = 16

	// ChaCha20KeySize is the size of ChaCha20-Poly1305 keys in bytes
	ChaCha20KeySize = 32
)

// Key Derivation Parameters (HKDF-SHA256)
const (
	// SessionKeySize is the size of the derived session key in bytes.
	// Every handshake engine produces exactly this many key bytes.
	SessionKeySize = 32

	// KDFInfoHandshake is the HKDF info string for single-algorithm handshakes
	KDFInfoHandshake = "handshake data"

	// KDFInfoHybrid is the HKDF info string for the combined classical+PQ key
	KDFInfoHybrid = "hybrid handshake data"
)

// Frame Limits
const (
	// FrameHeaderSize is the size of the big-endian length prefix in bytes
	FrameHeaderSize = 4

	// MaxFrameSize is the largest frame payload a peer will accept.
	// Frames above this limit are rejected before allocation.
	MaxFrameSize = 65536

	// MinCiphertextSize is the smallest valid AEAD ciphertext (tag only)
	MinCiphertextSize = AEADTagSize
)

// CipherSuite identifiers
type CipherSuite uint16

const (
	// CipherSuiteAES256GCM uses AES-256-GCM for symmetric encryption
	CipherSuiteAES256GCM CipherSuite = 0x0001

	// CipherSuiteChaCha20Poly1305 uses ChaCha20-Poly1305 for symmetric encryption
	CipherSuiteChaCha20Poly1305 CipherSuite = 0x0002
)

// String returns a human-readable name for the cipher suite
func (cs CipherSuite) String() string {
	switch cs {
	case CipherSuiteAES256GCM:
		return "AES-256-GCM"
	case CipherSuiteChaCha20Poly1305:
		return "ChaCha20-Poly1305"
	default:
		return "Unknown"
	}
}

// IsSupported returns true if the cipher suite is supported
func (cs CipherSuite) IsSupported() bool {
	return cs == CipherSuiteAES256GCM || cs == CipherSuiteChaCha20Poly1305
}

// IsFIPSApproved returns true if the cipher suite is FIPS 140-3 approved.
// Currently only AES-256-GCM is FIPS approved; ChaCha20-Poly1305 is not.
func (cs CipherSuite) IsFIPSApproved() bool {
	return cs == CipherSuiteAES256GCM
}
