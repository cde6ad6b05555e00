// Package benchmark provides performance benchmarks for the handshake and
// channel primitives.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./test/benchmark/
//
// For profiling:
//
//	go test -bench=. -cpuprofile=cpu.prof -memprofile=mem.prof ./test/benchmark/
package benchmark

import (
	"net"
	"sync"
	"testing"

	"github.com/bhaskardatta/Quantum-performance-simulator/internal/constants"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/bench"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/channel"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/crypto"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/handshake"
)

// --- Cryptographic Primitive Benchmarks ---

func BenchmarkSecureRandom32(b *testing.B) {
	buf := make([]byte, 32)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = crypto.SecureRandom(buf)
	}
}

func BenchmarkSecureRandom64(b *testing.B) {
	buf := make([]byte, 64)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = crypto.SecureRandom(buf)
	}
}

// --- ECDH P-384 Benchmarks ---

func BenchmarkECDHKeyGeneration(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := crypto.GenerateECDHKeyPair()
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkECDHSharedSecret(b *testing.B) {
	alice, _ := crypto.GenerateECDHKeyPair()
	bob, _ := crypto.GenerateECDHKeyPair()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := crypto.ECDHSharedSecret(alice.PrivateKey, bob.PublicKey)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// --- ML-KEM-768 Benchmarks ---

func BenchmarkKEMKeyGeneration(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := crypto.GenerateKEMKeyPair()
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkKEMEncapsulation(b *testing.B) {
	kp, _ := crypto.GenerateKEMKeyPair()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, err := crypto.KEMEncapsulate(kp.EncapsulationKey)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkKEMDecapsulation(b *testing.B) {
	kp, _ := crypto.GenerateKEMKeyPair()
	ciphertext, _, _ := crypto.KEMEncapsulate(kp.EncapsulationKey)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := crypto.KEMDecapsulate(kp.DecapsulationKey, ciphertext)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// --- ML-DSA-65 Benchmarks ---

func BenchmarkSigningKeyGeneration(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := crypto.GenerateSigningKeyPair()
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSign(b *testing.B) {
	kp, _ := crypto.GenerateSigningKeyPair()
	message := crypto.MustSecureRandomBytes(1184)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := crypto.Sign(kp.SigningKey, message)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkVerifySignature(b *testing.B) {
	kp, _ := crypto.GenerateSigningKeyPair()
	message := crypto.MustSecureRandomBytes(1184)
	signature, _ := crypto.Sign(kp.SigningKey, message)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !crypto.VerifySignature(kp.VerificationKey, message, signature) {
			b.Fatal("signature did not verify")
		}
	}
}

// --- KDF Benchmarks ---

func BenchmarkDeriveSessionKey(b *testing.B) {
	secret := crypto.MustSecureRandomBytes(48)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := crypto.DeriveSessionKey(secret)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDeriveHybridKey(b *testing.B) {
	classical := crypto.MustSecureRandomBytes(48)
	pq := crypto.MustSecureRandomBytes(32)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := crypto.DeriveHybridKey(classical, pq)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// --- AEAD Benchmarks ---

func BenchmarkAES256GCMSeal(b *testing.B) {
	benchmarkAEADSeal(b, constants.CipherSuiteAES256GCM, 1400)
}

func BenchmarkAES256GCMOpen(b *testing.B) {
	benchmarkAEADOpen(b, constants.CipherSuiteAES256GCM, 1400)
}

func BenchmarkChaCha20Poly1305Seal(b *testing.B) {
	benchmarkAEADSeal(b, constants.CipherSuiteChaCha20Poly1305, 1400)
}

func BenchmarkChaCha20Poly1305Open(b *testing.B) {
	benchmarkAEADOpen(b, constants.CipherSuiteChaCha20Poly1305, 1400)
}

// --- Payload Size Benchmarks ---

func BenchmarkAES256GCMSeal64B(b *testing.B) {
	benchmarkAEADSeal(b, constants.CipherSuiteAES256GCM, 64)
}

func BenchmarkAES256GCMSeal1KB(b *testing.B) {
	benchmarkAEADSeal(b, constants.CipherSuiteAES256GCM, 1024)
}

func BenchmarkAES256GCMSeal8KB(b *testing.B) {
	benchmarkAEADSeal(b, constants.CipherSuiteAES256GCM, 8192)
}

func BenchmarkAES256GCMSeal64KB(b *testing.B) {
	benchmarkAEADSeal(b, constants.CipherSuiteAES256GCM, 65536)
}

func benchmarkAEADSeal(b *testing.B, suite constants.CipherSuite, size int) {
	key := crypto.MustSecureRandomBytes(constants.SessionKeySize)
	aead, err := crypto.NewAEAD(suite, key)
	if err != nil {
		b.Fatal(err)
	}
	nonce, _ := crypto.NewNonce()
	plaintext := make([]byte, size)

	b.ResetTimer()
	b.SetBytes(int64(size))
	for i := 0; i < b.N; i++ {
		_, err := aead.Seal(nonce, plaintext)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkAEADOpen(b *testing.B, suite constants.CipherSuite, size int) {
	key := crypto.MustSecureRandomBytes(constants.SessionKeySize)
	aead, err := crypto.NewAEAD(suite, key)
	if err != nil {
		b.Fatal(err)
	}
	nonce, _ := crypto.NewNonce()
	plaintext := make([]byte, size)
	ciphertext, _ := aead.Seal(nonce, plaintext)

	b.ResetTimer()
	b.SetBytes(int64(size))
	for i := 0; i < b.N; i++ {
		_, err := aead.Open(nonce, ciphertext)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// --- Channel Benchmarks ---

func BenchmarkChannelSend(b *testing.B) {
	clientConn, serverConn := net.Pipe()
	key := crypto.MustSecureRandomBytes(constants.SessionKeySize)

	sender, err := channel.New(clientConn, key)
	if err != nil {
		b.Fatal(err)
	}
	receiver, err := channel.New(serverConn, key)
	if err != nil {
		b.Fatal(err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			if _, err := receiver.Receive(); err != nil {
				return
			}
		}
	}()

	message := string(make([]byte, 1400))

	b.ResetTimer()
	b.SetBytes(int64(len(message)))
	for i := 0; i < b.N; i++ {
		if err := sender.Send(message); err != nil {
			b.Fatal(err)
		}
	}
	b.StopTimer()

	_ = sender.Close()
	_ = receiver.Close()
	wg.Wait()
}

// --- Handshake Benchmarks ---

func BenchmarkHandshake(b *testing.B) {
	for _, mode := range handshake.Modes() {
		b.Run(string(mode), func(b *testing.B) {
			engine, err := handshake.EngineForMode(mode)
			if err != nil {
				b.Fatal(err)
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				clientConn, serverConn := net.Pipe()

				var wg sync.WaitGroup
				wg.Add(2)
				go func() {
					defer wg.Done()
					_, _ = engine.ClientHandshake(clientConn)
				}()
				go func() {
					defer wg.Done()
					_, _ = engine.ServerHandshake(serverConn)
				}()
				wg.Wait()

				_ = clientConn.Close()
				_ = serverConn.Close()
			}
		})
	}
}

// --- Impairment Model Benchmarks ---

func BenchmarkImpairmentApply(b *testing.B) {
	im := bench.Impairment{LatencyMs: 50, LossPercent: 3}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = im.Apply(1.5)
	}
}

// --- Parallel Benchmarks ---

func BenchmarkKEMEncapsulationParallel(b *testing.B) {
	kp, _ := crypto.GenerateKEMKeyPair()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _, _ = crypto.KEMEncapsulate(kp.EncapsulationKey)
		}
	})
}

func BenchmarkAES256GCMSealParallel(b *testing.B) {
	key := crypto.MustSecureRandomBytes(constants.SessionKeySize)
	plaintext := make([]byte, 1400)

	b.SetBytes(int64(len(plaintext)))
	b.RunParallel(func(pb *testing.PB) {
		aead, _ := crypto.NewAEAD(constants.CipherSuiteAES256GCM, key)
		nonce, _ := crypto.NewNonce()
		for pb.Next() {
			_, _ = aead.Seal(nonce, plaintext)
		}
	})
}

// --- Memory Allocation Benchmarks ---

func BenchmarkKEMKeyGenerationAllocs(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = crypto.GenerateKEMKeyPair()
	}
}

func BenchmarkKEMEncapsulationAllocs(b *testing.B) {
	kp, _ := crypto.GenerateKEMKeyPair()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = crypto.KEMEncapsulate(kp.EncapsulationKey)
	}
}
