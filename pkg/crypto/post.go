// post.go implements Power-On Self-Tests (POST) for FIPS 140-3 compliance.
//
// IMPORTANT: POST is production code, not test code. FIPS 140-3 requires self-tests
// to run at module load time (not just during development testing) to verify the
// cryptographic implementation before any operations are performed. This catches
// issues like corrupted binaries, hardware failures, or tampered code.
//
// POST runs automatically when the crypto package is loaded and verifies that
// all cryptographic primitives produce expected outputs.
//
// The tests verify:
//   - HKDF-SHA256 (key derivation, determinism and domain separation)
//   - AES-256-GCM (authenticated encryption, NIST known answer test)
//   - ML-KEM-768 (post-quantum key encapsulation)
//   - ML-DSA-65 (post-quantum signatures)
//
// In FIPS mode, POST failures cause a panic to prevent use of potentially
// compromised cryptographic implementations. In standard mode, failures are
// recorded but do not prevent operation.
package crypto

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/bhaskardatta/Quantum-performance-simulator/internal/constants"
)

// AES-256-GCM known answer test values, NIST GCM revised spec test cases
// 13 and 14: all-zero key and nonce with empty and all-zero plaintexts.
var (
	postKATAESKey   = make([]byte, 32)
	postKATAESNonce = make([]byte, constants.AEADNonceSize)

	// Case 13: empty plaintext seals to the tag alone.
	postKATAESEmptyExpected, _ = hex.DecodeString("530f8afbc74536b9a963b4f1c4cb738b")

	// Case 14: sixteen zero bytes seal to ciphertext followed by the tag.
	postKATAESBlockExpected, _ = hex.DecodeString(
		"cea7403d4d606b6e074ec5d3baf39d18d0d1c8a799996bf0265b98b5d48ab919")
)

// postKDFSecret is the fixed input for the KDF determinism checks.
var postKDFSecret = []byte("power-on self-test secret material")

// POSTResult contains the results of Power-On Self-Tests
type POSTResult struct {
	Passed        bool
	KDFPassed     bool
	AESPassed     bool
	KEMPassed     bool
	SigningPassed bool
	Errors        []string
}

// postResult stores the cached POST result
var (
	postResult     *POSTResult
	postResultOnce sync.Once
	postRan        bool
)

// RunPOST executes the Power-On Self-Tests and returns the results.
// This function is safe to call multiple times; tests only run once.
func RunPOST() *POSTResult {
	postResultOnce.Do(func() {
		postResult = &POSTResult{
			Passed: true,
		}

		if err := runKDFKAT(); err != nil {
			postResult.Passed = false
			postResult.Errors = append(postResult.Errors, fmt.Sprintf("KDF KAT failed: %v", err))
		} else {
			postResult.KDFPassed = true
		}

		if err := runAESGCMKAT(); err != nil {
			postResult.Passed = false
			postResult.Errors = append(postResult.Errors, fmt.Sprintf("AES-GCM KAT failed: %v", err))
		} else {
			postResult.AESPassed = true
		}

		if err := runKEMKAT(); err != nil {
			postResult.Passed = false
			postResult.Errors = append(postResult.Errors, fmt.Sprintf("ML-KEM KAT failed: %v", err))
		} else {
			postResult.KEMPassed = true
		}

		if err := runSigningKAT(); err != nil {
			postResult.Passed = false
			postResult.Errors = append(postResult.Errors, fmt.Sprintf("ML-DSA KAT failed: %v", err))
		} else {
			postResult.SigningPassed = true
		}

		postRan = true

		// In FIPS mode, POST failures are fatal.
		if FIPSMode() && !postResult.Passed {
			panic(fmt.Sprintf("FIPS POST failed: %v", postResult.Errors))
		}
	})

	return postResult
}

// POSTRan returns true if POST has been executed
func POSTRan() bool {
	return postRan
}

// POSTPassed returns true if POST has run and all tests passed
func POSTPassed() bool {
	if postResult == nil {
		return false
	}
	return postResult.Passed
}

// runKDFKAT verifies that the HKDF-SHA256 derivations are deterministic,
// produce full-length keys, and keep the handshake and hybrid domains
// separated.
func runKDFKAT() error {
	key1, err := DeriveSessionKey(postKDFSecret)
	if err != nil {
		return fmt.Errorf("DeriveSessionKey failed: %w", err)
	}
	key2, err := DeriveSessionKey(postKDFSecret)
	if err != nil {
		return fmt.Errorf("DeriveSessionKey failed: %w", err)
	}

	if len(key1) != constants.SessionKeySize {
		return fmt.Errorf("derived key size mismatch: got %d, want %d", len(key1), constants.SessionKeySize)
	}
	if !bytes.Equal(key1, key2) {
		return fmt.Errorf("derivation is not deterministic")
	}
	if isAllZero(key1) {
		return fmt.Errorf("derived key is all zeros")
	}

	// The hybrid derivation over the same bytes must land in a different
	// domain than the single-algorithm derivation.
	half := len(postKDFSecret) / 2
	hybrid, err := DeriveHybridKey(postKDFSecret[:half], postKDFSecret[half:])
	if err != nil {
		return fmt.Errorf("DeriveHybridKey failed: %w", err)
	}
	if bytes.Equal(hybrid, key1) {
		return fmt.Errorf("hybrid and handshake domains are not separated")
	}

	return nil
}

// runAESGCMKAT verifies AES-256-GCM against NIST known answer tests.
func runAESGCMKAT() error {
	aead, err := NewAEAD(constants.CipherSuiteAES256GCM, postKATAESKey)
	if err != nil {
		return fmt.Errorf("NewAEAD failed: %w", err)
	}

	sealed, err := aead.Seal(postKATAESNonce, nil)
	if err != nil {
		return fmt.Errorf("seal of empty plaintext failed: %w", err)
	}
	if !bytes.Equal(sealed, postKATAESEmptyExpected) {
		return fmt.Errorf("empty plaintext mismatch: got %x, want %x", sealed, postKATAESEmptyExpected)
	}

	block := make([]byte, 16)
	sealed, err = aead.Seal(postKATAESNonce, block)
	if err != nil {
		return fmt.Errorf("seal of zero block failed: %w", err)
	}
	if !bytes.Equal(sealed, postKATAESBlockExpected) {
		return fmt.Errorf("zero block mismatch: got %x, want %x", sealed, postKATAESBlockExpected)
	}

	opened, err := aead.Open(postKATAESNonce, sealed)
	if err != nil {
		return fmt.Errorf("open failed: %w", err)
	}
	if !bytes.Equal(opened, block) {
		return fmt.Errorf("decrypt mismatch: got %x, want %x", opened, block)
	}

	return nil
}

// runKEMKAT verifies ML-KEM-768 with a consistency test. Encapsulation is
// randomized, so the test checks sizes and the encap/decap round trip
// rather than fixed vectors.
func runKEMKAT() error {
	kp, err := GenerateKEMKeyPair()
	if err != nil {
		return fmt.Errorf("GenerateKEMKeyPair failed: %w", err)
	}
	defer kp.Zeroize()

	pkBytes := kp.PublicKeyBytes()
	if len(pkBytes) != constants.MLKEMPublicKeySize {
		return fmt.Errorf("public key size mismatch: got %d, want %d", len(pkBytes), constants.MLKEMPublicKeySize)
	}

	ciphertext, sharedSecret1, err := KEMEncapsulate(kp.EncapsulationKey)
	if err != nil {
		return fmt.Errorf("KEMEncapsulate failed: %w", err)
	}
	if len(ciphertext) != constants.MLKEMCiphertextSize {
		return fmt.Errorf("ciphertext size mismatch: got %d, want %d", len(ciphertext), constants.MLKEMCiphertextSize)
	}
	if len(sharedSecret1) != constants.MLKEMSharedSecretSize {
		return fmt.Errorf("shared secret size mismatch: got %d, want %d", len(sharedSecret1), constants.MLKEMSharedSecretSize)
	}

	sharedSecret2, err := KEMDecapsulate(kp.DecapsulationKey, ciphertext)
	if err != nil {
		return fmt.Errorf("KEMDecapsulate failed: %w", err)
	}
	if !bytes.Equal(sharedSecret1, sharedSecret2) {
		return fmt.Errorf("shared secret mismatch after decapsulation")
	}

	return nil
}

// runSigningKAT verifies ML-DSA-65 with a sign-verify consistency test.
func runSigningKAT() error {
	kp, err := GenerateSigningKeyPair()
	if err != nil {
		return fmt.Errorf("GenerateSigningKeyPair failed: %w", err)
	}
	defer kp.Zeroize()

	message := []byte("power-on signing probe")
	signature, err := Sign(kp.SigningKey, message)
	if err != nil {
		return fmt.Errorf("Sign failed: %w", err)
	}
	if len(signature) != constants.MLDSASignatureSize {
		return fmt.Errorf("signature size mismatch: got %d, want %d", len(signature), constants.MLDSASignatureSize)
	}

	if !VerifySignature(kp.VerificationKey, message, signature) {
		return fmt.Errorf("signature did not verify")
	}

	signature[0] ^= 0xff
	if VerifySignature(kp.VerificationKey, message, signature) {
		return fmt.Errorf("corrupted signature verified")
	}

	return nil
}

// init runs POST automatically when the package is loaded
func init() {
	RunPOST()
}
