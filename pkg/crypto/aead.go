// aead.go implements authenticated encryption for the secure channel.
//
// Two AEAD suites are supported:
//   - AES-256-GCM: FIPS-approved, hardware-accelerated on modern CPUs
//   - ChaCha20-Poly1305: high performance without hardware support
//
// Every message is sealed under a fresh random 96-bit nonce generated by
// NewNonce and carried next to the ciphertext on the wire. Random nonces on
// a 96-bit space stay collision-free with overwhelming probability for the
// session lengths this protocol handles; there is no counter state to
// resynchronize after a failure. The protocol binds no associated data.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/bhaskardatta/Quantum-performance-simulator/internal/constants"
	qerrors "github.com/bhaskardatta/Quantum-performance-simulator/internal/errors"
)

// AEAD represents an authenticated encryption cipher bound to one session key.
type AEAD struct {
	cipher cipher.AEAD
	suite  constants.CipherSuite
}

// NewAEAD creates a new AEAD cipher with the specified suite and key.
//
// Parameters:
//   - suite: CipherSuiteAES256GCM or CipherSuiteChaCha20Poly1305
//   - key: 32-byte session key
//
// Returns:
//   - AEAD: The initialized cipher
//   - error: Non-nil if the key size is wrong or suite unsupported
//
// In FIPS builds, suites that are not FIPS 140-3 approved are rejected
// even though the implementation is present.
func NewAEAD(suite constants.CipherSuite, key []byte) (*AEAD, error) {
	if len(key) != constants.SessionKeySize {
		return nil, qerrors.ErrInvalidKeySize
	}
	if FIPSMode() && !suite.IsFIPSApproved() {
		return nil, qerrors.ErrUnsupportedCipherSuite
	}

	var aeadCipher cipher.AEAD

	switch suite {
	case constants.CipherSuiteAES256GCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, qerrors.NewCryptoError("NewAEAD", err)
		}
		aeadCipher, err = cipher.NewGCM(block)
		if err != nil {
			return nil, qerrors.NewCryptoError("NewAEAD", err)
		}

	case constants.CipherSuiteChaCha20Poly1305:
		var err error
		aeadCipher, err = chacha20poly1305.New(key)
		if err != nil {
			return nil, qerrors.NewCryptoError("NewAEAD", err)
		}

	default:
		return nil, qerrors.ErrUnsupportedCipherSuite
	}

	return &AEAD{cipher: aeadCipher, suite: suite}, nil
}

// NewNonce returns a fresh random 12-byte nonce from the CSPRNG.
// Callers must use each nonce for at most one Seal under a given key.
func NewNonce() ([]byte, error) {
	return SecureRandomBytes(constants.AEADNonceSize)
}

// Seal encrypts and authenticates plaintext under the given nonce.
//
// The nonce is NOT included in the returned ciphertext; the framing layer
// carries it explicitly next to the ciphertext.
//
// Returns:
//   - ciphertext: encrypted_data || auth_tag
//   - error: Non-nil if the nonce size is wrong
func (a *AEAD) Seal(nonce, plaintext []byte) ([]byte, error) {
	if len(nonce) != constants.AEADNonceSize {
		return nil, qerrors.ErrInvalidNonce
	}

	return a.cipher.Seal(nil, nonce, plaintext, nil), nil
}

// Open verifies and decrypts ciphertext under the given nonce.
//
// Authentication failure is reported as ErrAuthenticationFailed with no
// further detail, so an attacker learns nothing about why a forgery failed.
//
// Returns:
//   - plaintext: Decrypted data
//   - error: Non-nil if authentication fails or inputs are malformed
func (a *AEAD) Open(nonce, ciphertext []byte) ([]byte, error) {
	if len(nonce) != constants.AEADNonceSize {
		return nil, qerrors.ErrInvalidNonce
	}
	if len(ciphertext) < constants.MinCiphertextSize {
		return nil, qerrors.ErrCiphertextTooShort
	}

	plaintext, err := a.cipher.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, qerrors.ErrAuthenticationFailed
	}

	return plaintext, nil
}

// Suite returns the cipher suite identifier.
func (a *AEAD) Suite() constants.CipherSuite {
	return a.suite
}

// NonceSize returns the required nonce size in bytes.
func (a *AEAD) NonceSize() int {
	return a.cipher.NonceSize()
}

// Overhead returns the authentication tag size in bytes.
func (a *AEAD) Overhead() int {
	return a.cipher.Overhead()
}
