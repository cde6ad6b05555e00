// results.go implements benchmark result aggregation and serialization.
//
// The JSON layout is an interchange format consumed by external
// presentation tooling; the field names are part of that contract and
// must not drift.
package bench

import (
	"encoding/json"
	"io"
	"os"

	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/crypto"
)

// sizeProbeMessage is the fixed message signed when measuring signature
// size. ML-DSA signatures are fixed-length, so any message works; using
// one keeps the probe reproducible.
const sizeProbeMessage = "benchmark"

// Settings echoes the configuration a result set was produced under.
type Settings struct {
	Modes             []string `json:"modes"`
	LatencyMs         float64  `json:"latency_ms"`
	PacketLossPercent float64  `json:"packet_loss_percent"`
	Iterations        int      `json:"iterations"`
}

// Results holds aggregated benchmark output.
type Results struct {
	Settings         Settings             `json:"settings"`
	HandshakeTimeMs  map[string]float64   `json:"handshake_time_ms"`
	HandshakeSamples map[string][]float64 `json:"handshake_samples"`
	PublicKeyBytes   map[string]int       `json:"public_key_bytes"`
	SignatureBytes   map[string]int       `json:"signature_bytes"`
}

// KeySizes holds measured key and signature material sizes in bytes.
type KeySizes struct {
	ClassicalPublicKey int
	KEMPublicKey       int
	Signature          int
}

// newResults assembles the result set. Mean handshake times are reported
// only for modes that produced samples.
func newResults(config Config, samples map[string][]float64, sizes KeySizes) *Results {
	modes := make([]string, len(config.Modes))
	for i, m := range config.Modes {
		modes[i] = string(m)
	}

	means := make(map[string]float64, len(samples))
	for mode, s := range samples {
		if len(s) > 0 {
			means[mode] = mean(s)
		}
	}

	return &Results{
		Settings: Settings{
			Modes:             modes,
			LatencyMs:         config.LatencyMs,
			PacketLossPercent: config.PacketLossPercent,
			Iterations:        config.Iterations,
		},
		HandshakeTimeMs:  means,
		HandshakeSamples: samples,
		PublicKeyBytes: map[string]int{
			"classical": sizes.ClassicalPublicKey,
			"pqc":       sizes.KEMPublicKey,
			"hybrid":    sizes.ClassicalPublicKey + sizes.KEMPublicKey,
		},
		SignatureBytes: map[string]int{
			"pqc":    sizes.Signature,
			"hybrid": sizes.Signature,
		},
	}
}

// measureSizes generates one-off key material and records the sizes a
// peer would see on the wire. The probes run regardless of which modes
// were benchmarked so the size comparison is always complete.
func measureSizes() (KeySizes, error) {
	ecdhPair, err := crypto.GenerateECDHKeyPair()
	if err != nil {
		return KeySizes{}, err
	}
	defer ecdhPair.Zeroize()

	pemPublic, err := ecdhPair.PublicKeyPEM()
	if err != nil {
		return KeySizes{}, err
	}

	kemPair, err := crypto.GenerateKEMKeyPair()
	if err != nil {
		return KeySizes{}, err
	}
	defer kemPair.Zeroize()

	signingPair, err := crypto.GenerateSigningKeyPair()
	if err != nil {
		return KeySizes{}, err
	}
	defer signingPair.Zeroize()

	signature, err := crypto.Sign(signingPair.SigningKey, []byte(sizeProbeMessage))
	if err != nil {
		return KeySizes{}, err
	}

	return KeySizes{
		ClassicalPublicKey: len(pemPublic),
		KEMPublicKey:       len(kemPair.PublicKeyBytes()),
		Signature:          len(signature),
	}, nil
}

// mean averages a non-empty sample set.
func mean(samples []float64) float64 {
	var sum float64
	for _, s := range samples {
		sum += s
	}
	return sum / float64(len(samples))
}

// Save writes the results as indented JSON to path.
func (r *Results) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// WriteJSON writes the results as indented JSON to w.
func (r *Results) WriteJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}
