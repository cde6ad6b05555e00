// mlkem.go implements the ML-KEM-768 key encapsulation mechanism wrapper.
//
// ML-KEM (Module-Lattice-based Key-Encapsulation Mechanism) is standardized
// in NIST FIPS 203. Its security rests on the computational difficulty of
// the Module Learning With Errors (MLWE) problem over the polynomial ring
// R_q = Z_q[X]/(X^n + 1) with n = 256, q = 3329 and module rank k = 3 for
// the 768 parameter set.
//
// Security Level: NIST Category 3 (equivalent to AES-192 against quantum
// adversaries). The IND-CCA2 property comes from the Fujisaki-Okamoto
// transform with implicit rejection: decapsulating a forged ciphertext
// yields a uniformly random-looking secret rather than an error.
package crypto

import (
	"github.com/cloudflare/circl/kem/mlkem/mlkem768"

	"github.com/bhaskardatta/Quantum-performance-simulator/internal/constants"
	qerrors "github.com/bhaskardatta/Quantum-performance-simulator/internal/errors"
)

// KEMPublicKey wraps an ML-KEM-768 encapsulation key
type KEMPublicKey struct {
	key *mlkem768.PublicKey
}

// KEMPrivateKey wraps an ML-KEM-768 decapsulation key
type KEMPrivateKey struct {
	key *mlkem768.PrivateKey
}

// KEMKeyPair represents an ML-KEM-768 key pair for post-quantum key encapsulation.
type KEMKeyPair struct {
	// EncapsulationKey is the public key used by the peer to encapsulate secrets
	EncapsulationKey *KEMPublicKey

	// DecapsulationKey is the private key used to decapsulate secrets
	DecapsulationKey *KEMPrivateKey
}

// GenerateKEMKeyPair generates a fresh ML-KEM-768 key pair.
// Returns an error if the system's CSPRNG fails.
func GenerateKEMKeyPair() (*KEMKeyPair, error) {
	pk, sk, err := mlkem768.GenerateKeyPair(Reader)
	if err != nil {
		return nil, qerrors.NewCryptoError("KEMKeyPair.Generate", err)
	}

	return &KEMKeyPair{
		EncapsulationKey: &KEMPublicKey{key: pk},
		DecapsulationKey: &KEMPrivateKey{key: sk},
	}, nil
}

// KEMEncapsulate performs key encapsulation against the peer's public key.
//
// A fresh encapsulation seed is drawn from the CSPRNG for every call, so
// encapsulating twice against the same key never repeats a ciphertext.
//
// Parameters:
//   - ek: The recipient's encapsulation key (public key)
//
// Returns:
//   - ciphertext: The encapsulated ciphertext (1088 bytes)
//   - sharedSecret: The shared secret (32 bytes)
//   - error: Non-nil if the key is invalid or the CSPRNG fails
func KEMEncapsulate(ek *KEMPublicKey) (ciphertext, sharedSecret []byte, err error) {
	if ek == nil || ek.key == nil {
		return nil, nil, qerrors.ErrInvalidPublicKey
	}

	ct := make([]byte, mlkem768.CiphertextSize)
	ss := make([]byte, mlkem768.SharedKeySize)

	seed := make([]byte, mlkem768.EncapsulationSeedSize)
	if err := SecureRandom(seed); err != nil {
		return nil, nil, qerrors.NewCryptoError("KEMEncapsulate", err)
	}

	ek.key.EncapsulateTo(ct, ss, seed)

	return ct, ss, nil
}

// KEMDecapsulate recovers the shared secret from a ciphertext.
//
// Implicit rejection means a tampered ciphertext still yields a 32-byte
// value; it simply will not match the encapsulator's secret. Authentication
// of the ciphertext therefore happens at the protocol layer (signature
// verification), not here.
//
// Parameters:
//   - dk: The decapsulation key (private key)
//   - ciphertext: The ciphertext to decapsulate
//
// Returns:
//   - sharedSecret: The shared secret (32 bytes)
//   - error: Non-nil if the key or ciphertext size is invalid
func KEMDecapsulate(dk *KEMPrivateKey, ciphertext []byte) ([]byte, error) {
	if dk == nil || dk.key == nil {
		return nil, qerrors.ErrInvalidPrivateKey
	}

	if len(ciphertext) != constants.MLKEMCiphertextSize {
		return nil, qerrors.ErrInvalidCiphertext
	}

	ss := make([]byte, mlkem768.SharedKeySize)
	dk.key.DecapsulateTo(ss, ciphertext)

	return ss, nil
}

// Bytes returns the encoded bytes of the public key.
func (pk *KEMPublicKey) Bytes() []byte {
	if pk == nil || pk.key == nil {
		return nil
	}
	buf := make([]byte, mlkem768.PublicKeySize)
	pk.key.Pack(buf)
	return buf
}

// PublicKeyBytes returns the encoded bytes of the encapsulation key.
func (kp *KEMKeyPair) PublicKeyBytes() []byte {
	return kp.EncapsulationKey.Bytes()
}

// ParseKEMPublicKey parses an ML-KEM-768 public key from its encoded form.
func ParseKEMPublicKey(data []byte) (*KEMPublicKey, error) {
	if len(data) != constants.MLKEMPublicKeySize {
		return nil, qerrors.ErrInvalidPublicKey
	}

	pk := new(mlkem768.PublicKey)
	if err := pk.Unpack(data); err != nil {
		return nil, qerrors.NewCryptoError("ParseKEMPublicKey", err)
	}

	return &KEMPublicKey{key: pk}, nil
}

// Zeroize securely erases the private key material.
// CIRCL does not expose direct zeroization, so the references are cleared.
func (kp *KEMKeyPair) Zeroize() {
	kp.DecapsulationKey = nil
	kp.EncapsulationKey = nil
}
