// kdf.go implements session key derivation using HKDF-SHA256 (RFC 5869).
//
// HKDF runs in two stages: Extract compresses the raw key-agreement output
// into a pseudorandom key, Expand stretches it under an info string that
// provides domain separation. Both peers run the identical derivation over
// the identical secret, so the session key matches on both ends or the
// first AEAD open fails.
//
// Key schedule:
//   - classical:    K = HKDF-SHA256(ecdh_secret,           info="handshake data")
//   - post-quantum: K = kem_shared_secret[:32]  (already uniform, see below)
//   - hybrid:       K = HKDF-SHA256(ecdh_secret || kem_ss, info="hybrid handshake data")
//
// The ML-KEM shared secret is the output of a KDF inside the KEM itself and
// is exactly key-sized, so the post-quantum path truncates rather than
// re-derives.
package crypto

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/bhaskardatta/Quantum-performance-simulator/internal/constants"
	qerrors "github.com/bhaskardatta/Quantum-performance-simulator/internal/errors"
)

// DeriveSessionKey derives the 32-byte session key from a raw key-agreement
// secret. Used by the classical handshake; the raw ECDH output is never used
// as a key directly.
func DeriveSessionKey(secret []byte) ([]byte, error) {
	if len(secret) == 0 {
		return nil, qerrors.NewCryptoError("DeriveSessionKey", qerrors.ErrInvalidKeySize)
	}
	return expand(secret, constants.KDFInfoHandshake)
}

// SessionKeyFromSharedSecret produces the session key for the post-quantum
// handshake by truncating the KEM shared secret to exactly SessionKeySize
// bytes. Returns an error if the secret is too short.
func SessionKeyFromSharedSecret(sharedSecret []byte) ([]byte, error) {
	if len(sharedSecret) < constants.SessionKeySize {
		return nil, qerrors.NewCryptoError("SessionKeyFromSharedSecret", qerrors.ErrInvalidKeySize)
	}
	key := make([]byte, constants.SessionKeySize)
	copy(key, sharedSecret[:constants.SessionKeySize])
	return key, nil
}

// DeriveHybridKey combines the classical and post-quantum secrets into one
// 32-byte session key. The concatenation order is fixed (classical first);
// the output is indistinguishable from random if either input is.
func DeriveHybridKey(classicalSecret, pqSecret []byte) ([]byte, error) {
	if len(classicalSecret) == 0 || len(pqSecret) == 0 {
		return nil, qerrors.NewCryptoError("DeriveHybridKey", qerrors.ErrInvalidKeySize)
	}

	combined := make([]byte, 0, len(classicalSecret)+len(pqSecret))
	combined = append(combined, classicalSecret...)
	combined = append(combined, pqSecret...)
	defer Zeroize(combined)

	return expand(combined, constants.KDFInfoHybrid)
}

// expand runs HKDF-SHA256 with a nil salt and the given info string and
// reads exactly SessionKeySize bytes.
func expand(secret []byte, info string) ([]byte, error) {
	r := hkdf.New(sha256.New, secret, nil, []byte(info))

	key := make([]byte, constants.SessionKeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, qerrors.NewCryptoError("hkdf-expand", err)
	}

	return key, nil
}
