// cst.go implements Conditional Self-Tests (CST) for FIPS 140-3 compliance.
//
// Conditional Self-Tests differ from Power-On Self-Tests (POST) in that they run
// during specific cryptographic operations rather than at module initialization.
// They verify that each operation produces consistent, correct results.
//
// FIPS 140-3 requires two types of conditional self-tests:
//
//  1. Pairwise Consistency Test: Verifies that a newly generated key pair is
//     consistent (the private and public keys correspond correctly).
//
//  2. DRBG Health Check: Verifies that the random number generator produces
//     non-repeating, non-zero output.
//
// In FIPS mode, CST failures cause a panic to prevent use of potentially
// compromised keys or random data. In standard mode, failures return errors.
package crypto

import (
	"bytes"
	"fmt"
	"sync"
	"sync/atomic"
)

// CSTConfig configures Conditional Self-Test behavior
type CSTConfig struct {
	// EnablePairwiseTest enables pairwise consistency tests on key generation
	EnablePairwiseTest bool

	// EnableRNGHealthCheck enables health checks on RNG output
	EnableRNGHealthCheck bool

	// RNGHealthCheckInterval is how often to run full RNG health checks
	// (number of SecureRandom calls between checks)
	RNGHealthCheckInterval uint64
}

// DefaultCSTConfig returns the default CST configuration.
// In FIPS mode, all tests are enabled; in standard mode, tests are disabled by default.
func DefaultCSTConfig() CSTConfig {
	return CSTConfig{
		EnablePairwiseTest:     FIPSMode(),
		EnableRNGHealthCheck:   FIPSMode(),
		RNGHealthCheckInterval: 1000,
	}
}

// cstState holds global CST state
var (
	cstConfig     CSTConfig
	cstConfigOnce sync.Once
	rngCallCount  atomic.Uint64
	lastRNGOutput []byte
	lastRNGMutex  sync.Mutex
)

// InitCST initializes Conditional Self-Tests with the given configuration.
// Must be called before any cryptographic operations if custom configuration is needed.
// If not called, default configuration is used.
func InitCST(config CSTConfig) {
	cstConfigOnce.Do(func() {
		cstConfig = config
	})
}

// getConfig returns the CST configuration, initializing with defaults if needed.
func getConfig() CSTConfig {
	cstConfigOnce.Do(func() {
		cstConfig = DefaultCSTConfig()
	})
	return cstConfig
}

// CSTResult contains the results of a Conditional Self-Test
type CSTResult struct {
	Passed bool
	Error  error
}

// cstProbeMessage is signed during the ML-DSA pairwise consistency test.
var cstProbeMessage = []byte("pairwise consistency probe")

// --- Pairwise Consistency Tests ---

// PairwiseConsistencyTestECDH verifies that a P-384 key pair is consistent
// by running a full agreement against a freshly generated test pair.
func PairwiseConsistencyTestECDH(kp *ECDHKeyPair) *CSTResult {
	if kp == nil || kp.PrivateKey == nil || kp.PublicKey == nil {
		return &CSTResult{Passed: false, Error: fmt.Errorf("invalid key pair")}
	}

	testKP, err := GenerateECDHKeyPair()
	if err != nil {
		return &CSTResult{Passed: false, Error: fmt.Errorf("failed to generate test key pair: %w", err)}
	}

	secret1, err := ECDHSharedSecret(kp.PrivateKey, testKP.PublicKey)
	if err != nil {
		return &CSTResult{Passed: false, Error: fmt.Errorf("agreement 1 failed: %w", err)}
	}

	secret2, err := ECDHSharedSecret(testKP.PrivateKey, kp.PublicKey)
	if err != nil {
		return &CSTResult{Passed: false, Error: fmt.Errorf("agreement 2 failed: %w", err)}
	}

	if !ConstantTimeCompare(secret1, secret2) {
		return &CSTResult{Passed: false, Error: fmt.Errorf("shared secrets do not match")}
	}

	if isAllZero(secret1) {
		return &CSTResult{Passed: false, Error: fmt.Errorf("shared secret is all zeros")}
	}

	return &CSTResult{Passed: true}
}

// PairwiseConsistencyTestKEM verifies that an ML-KEM-768 key pair is
// consistent by performing encapsulation and decapsulation.
func PairwiseConsistencyTestKEM(kp *KEMKeyPair) *CSTResult {
	if kp == nil || kp.EncapsulationKey == nil || kp.DecapsulationKey == nil {
		return &CSTResult{Passed: false, Error: fmt.Errorf("invalid key pair")}
	}

	ciphertext, sharedSecret1, err := KEMEncapsulate(kp.EncapsulationKey)
	if err != nil {
		return &CSTResult{Passed: false, Error: fmt.Errorf("encapsulation failed: %w", err)}
	}

	sharedSecret2, err := KEMDecapsulate(kp.DecapsulationKey, ciphertext)
	if err != nil {
		return &CSTResult{Passed: false, Error: fmt.Errorf("decapsulation failed: %w", err)}
	}

	if !ConstantTimeCompare(sharedSecret1, sharedSecret2) {
		return &CSTResult{Passed: false, Error: fmt.Errorf("shared secrets do not match")}
	}

	if isAllZero(sharedSecret1) {
		return &CSTResult{Passed: false, Error: fmt.Errorf("shared secret is all zeros")}
	}

	return &CSTResult{Passed: true}
}

// PairwiseConsistencyTestSigning verifies that an ML-DSA-65 key pair is
// consistent by signing a probe message and verifying the signature.
func PairwiseConsistencyTestSigning(kp *SigningKeyPair) *CSTResult {
	if kp == nil || kp.SigningKey == nil || kp.VerificationKey == nil {
		return &CSTResult{Passed: false, Error: fmt.Errorf("invalid key pair")}
	}

	signature, err := Sign(kp.SigningKey, cstProbeMessage)
	if err != nil {
		return &CSTResult{Passed: false, Error: fmt.Errorf("signing failed: %w", err)}
	}

	if !VerifySignature(kp.VerificationKey, cstProbeMessage, signature) {
		return &CSTResult{Passed: false, Error: fmt.Errorf("signature did not verify")}
	}

	// A corrupted signature must not verify.
	signature[0] ^= 0xff
	if VerifySignature(kp.VerificationKey, cstProbeMessage, signature) {
		return &CSTResult{Passed: false, Error: fmt.Errorf("corrupted signature verified")}
	}

	return &CSTResult{Passed: true}
}

func isAllZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// runPairwiseTestECDH runs the pairwise consistency test if enabled,
// and handles failures according to FIPS mode.
func runPairwiseTestECDH(kp *ECDHKeyPair) error {
	config := getConfig()
	if !config.EnablePairwiseTest {
		return nil
	}

	result := PairwiseConsistencyTestECDH(kp)
	if !result.Passed {
		if FIPSMode() {
			panic(fmt.Sprintf("FIPS CST failed: ECDH pairwise consistency test: %v", result.Error))
		}
		return result.Error
	}
	return nil
}

// runPairwiseTestKEM runs the pairwise consistency test if enabled,
// and handles failures according to FIPS mode.
func runPairwiseTestKEM(kp *KEMKeyPair) error {
	config := getConfig()
	if !config.EnablePairwiseTest {
		return nil
	}

	result := PairwiseConsistencyTestKEM(kp)
	if !result.Passed {
		if FIPSMode() {
			panic(fmt.Sprintf("FIPS CST failed: ML-KEM pairwise consistency test: %v", result.Error))
		}
		return result.Error
	}
	return nil
}

// runPairwiseTestSigning runs the pairwise consistency test if enabled,
// and handles failures according to FIPS mode.
func runPairwiseTestSigning(kp *SigningKeyPair) error {
	config := getConfig()
	if !config.EnablePairwiseTest {
		return nil
	}

	result := PairwiseConsistencyTestSigning(kp)
	if !result.Passed {
		if FIPSMode() {
			panic(fmt.Sprintf("FIPS CST failed: ML-DSA pairwise consistency test: %v", result.Error))
		}
		return result.Error
	}
	return nil
}

// --- DRBG Health Check ---

// RNGHealthCheck performs a health check on the random number generator.
// It verifies that:
// 1. The RNG produces non-zero output
// 2. The RNG produces non-repeating output
// 3. The RNG produces output with reasonable entropy distribution
func RNGHealthCheck() *CSTResult {
	sample1 := make([]byte, 32)
	sample2 := make([]byte, 32)

	if err := SecureRandom(sample1); err != nil {
		return &CSTResult{Passed: false, Error: fmt.Errorf("RNG read 1 failed: %w", err)}
	}

	if err := SecureRandom(sample2); err != nil {
		return &CSTResult{Passed: false, Error: fmt.Errorf("RNG read 2 failed: %w", err)}
	}

	if isAllZero(sample1) {
		return &CSTResult{Passed: false, Error: fmt.Errorf("RNG produced all-zero sample 1")}
	}
	if isAllZero(sample2) {
		return &CSTResult{Passed: false, Error: fmt.Errorf("RNG produced all-zero sample 2")}
	}

	if bytes.Equal(sample1, sample2) {
		return &CSTResult{Passed: false, Error: fmt.Errorf("RNG produced identical consecutive samples")}
	}

	if isConstant(sample1) {
		return &CSTResult{Passed: false, Error: fmt.Errorf("RNG sample 1 has no variation")}
	}
	if isConstant(sample2) {
		return &CSTResult{Passed: false, Error: fmt.Errorf("RNG sample 2 has no variation")}
	}

	return &CSTResult{Passed: true}
}

func isConstant(b []byte) bool {
	for i := 1; i < len(b); i++ {
		if b[i] != b[0] {
			return false
		}
	}
	return true
}

// ContinuousRNGTest implements the continuous RNG test required by FIPS 140-3.
// It compares each RNG output to the previous output and fails if they match.
// This function should be called after each SecureRandom call in FIPS mode.
func ContinuousRNGTest(output []byte) *CSTResult {
	lastRNGMutex.Lock()
	defer lastRNGMutex.Unlock()

	// First call just stores the output.
	if lastRNGOutput == nil {
		lastRNGOutput = make([]byte, len(output))
		copy(lastRNGOutput, output)
		return &CSTResult{Passed: true}
	}

	if len(output) == len(lastRNGOutput) && bytes.Equal(output, lastRNGOutput) {
		return &CSTResult{Passed: false, Error: fmt.Errorf("RNG produced repeated output")}
	}

	if len(lastRNGOutput) != len(output) {
		lastRNGOutput = make([]byte, len(output))
	}
	copy(lastRNGOutput, output)

	return &CSTResult{Passed: true}
}

// runRNGHealthCheck runs periodic RNG health checks if enabled.
func runRNGHealthCheck() error {
	config := getConfig()
	if !config.EnableRNGHealthCheck {
		return nil
	}

	count := rngCallCount.Add(1)

	if count%config.RNGHealthCheckInterval == 0 {
		result := RNGHealthCheck()
		if !result.Passed {
			if FIPSMode() {
				panic(fmt.Sprintf("FIPS CST failed: RNG health check: %v", result.Error))
			}
			return result.Error
		}
	}

	return nil
}

// --- Key Generation with CST ---

// GenerateECDHKeyPairWithCST generates a P-384 key pair and runs the
// pairwise consistency test.
func GenerateECDHKeyPairWithCST() (*ECDHKeyPair, error) {
	kp, err := GenerateECDHKeyPair()
	if err != nil {
		return nil, err
	}

	if err := runPairwiseTestECDH(kp); err != nil {
		return nil, fmt.Errorf("pairwise consistency test failed: %w", err)
	}

	return kp, nil
}

// GenerateKEMKeyPairWithCST generates an ML-KEM-768 key pair and runs the
// pairwise consistency test.
func GenerateKEMKeyPairWithCST() (*KEMKeyPair, error) {
	kp, err := GenerateKEMKeyPair()
	if err != nil {
		return nil, err
	}

	if err := runPairwiseTestKEM(kp); err != nil {
		return nil, fmt.Errorf("pairwise consistency test failed: %w", err)
	}

	return kp, nil
}

// GenerateSigningKeyPairWithCST generates an ML-DSA-65 key pair and runs
// the pairwise consistency test.
func GenerateSigningKeyPairWithCST() (*SigningKeyPair, error) {
	kp, err := GenerateSigningKeyPair()
	if err != nil {
		return nil, err
	}

	if err := runPairwiseTestSigning(kp); err != nil {
		return nil, fmt.Errorf("pairwise consistency test failed: %w", err)
	}

	return kp, nil
}

// SecureRandomWithCST reads cryptographically secure random bytes and runs
// the continuous RNG test in FIPS mode.
func SecureRandomWithCST(b []byte) error {
	if err := SecureRandom(b); err != nil {
		return err
	}

	if FIPSMode() {
		result := ContinuousRNGTest(b)
		if !result.Passed {
			panic(fmt.Sprintf("FIPS CST failed: continuous RNG test: %v", result.Error))
		}
	}

	return runRNGHealthCheck()
}

// CSTEnabled returns true if Conditional Self-Tests are enabled.
func CSTEnabled() bool {
	config := getConfig()
	return config.EnablePairwiseTest || config.EnableRNGHealthCheck
}

// GetCSTConfig returns the current CST configuration.
func GetCSTConfig() CSTConfig {
	return getConfig()
}
