// impairment.go implements the simulated network impairment model.
//
// Handshakes are measured over loopback, so network conditions are
// modeled on the samples rather than injected into the socket. The model
// adds the configured latency to every sample and, when loss is nonzero,
// a retransmission penalty: a slowdown proportional to the loss rate plus
// a uniform jitter term scaled by it.
package bench

import "math/rand/v2"

// Impairment adjusts raw handshake samples for simulated network
// conditions. The zero value applies no adjustment.
type Impairment struct {
	// LatencyMs is added to every sample. Negative is treated as zero.
	LatencyMs float64

	// LossPercent scales the retransmission penalty. Negative is treated
	// as zero.
	LossPercent float64

	// Uniform returns a draw in [0, 1). Nil means the shared PRNG; tests
	// inject a fixed source.
	Uniform func() float64
}

// Apply returns the impaired value for a raw sample in milliseconds.
//
// With loss L > 0 the result is (raw + latency) * (1 + L/100) plus a
// uniform draw from [0, adjusted*L/500), so a given loss rate bounds the
// jitter it can introduce.
func (im Impairment) Apply(rawMs float64) float64 {
	latency := im.LatencyMs
	if latency < 0 {
		latency = 0
	}
	loss := im.LossPercent
	if loss < 0 {
		loss = 0
	}

	adjusted := rawMs + latency
	if loss == 0 {
		return adjusted
	}

	adjusted *= 1 + loss/100
	adjusted += im.uniform() * (adjusted * loss / 500)
	return adjusted
}

func (im Impairment) uniform() float64 {
	if im.Uniform != nil {
		return im.Uniform()
	}
	return rand.Float64()
}
