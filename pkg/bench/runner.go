// Package bench measures handshake cost across the supported key
// establishment modes.
//
// Each iteration stands up a fresh server on an ephemeral loopback port,
// times one client connect-and-handshake against it, and tears both down
// before the next. The hybrid mode is measured as the sum of one
// classical and one post-quantum handshake so its cost model matches its
// construction. Raw samples pass through the Impairment model before
// aggregation.
package bench

import (
	"fmt"
	"time"

	qerrors "github.com/bhaskardatta/Quantum-performance-simulator/internal/errors"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/channel"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/handshake"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/metrics"
)

// interIterationPause separates consecutive iterations so sockets from
// the previous run settle before the next server binds.
const interIterationPause = 50 * time.Millisecond

// Runner executes benchmark runs for a fixed configuration.
type Runner struct {
	config     Config
	impairment Impairment
	logger     *metrics.Logger

	// measure is swapped out by tests.
	measure func(mode handshake.Mode) (float64, error)
}

// NewRunner validates the configuration and builds a runner.
func NewRunner(config Config) (*Runner, error) {
	config, err := config.normalize()
	if err != nil {
		return nil, err
	}

	r := &Runner{
		config: config,
		impairment: Impairment{
			LatencyMs:   config.LatencyMs,
			LossPercent: config.PacketLossPercent,
		},
		logger: config.Logger,
	}
	r.measure = r.measureHandshake
	return r, nil
}

// Run executes the configured benchmark and returns aggregated results.
//
// A single failed handshake aborts the whole run under ErrBenchAborted: a
// benchmark that skipped failures would report numbers for a system that
// does not work.
func (r *Runner) Run() (*Results, error) {
	r.logger.Info("benchmark starting", metrics.Fields{
		"modes":      fmt.Sprintf("%v", r.config.Modes),
		"iterations": r.config.Iterations,
		"latency_ms": r.config.LatencyMs,
		"loss_pct":   r.config.PacketLossPercent,
	})

	samples := make(map[string][]float64, len(r.config.Modes))
	for _, mode := range r.config.Modes {
		modeSamples, err := r.runMode(mode)
		if err != nil {
			return nil, err
		}
		samples[string(mode)] = modeSamples
	}

	sizes, err := measureSizes()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", qerrors.ErrBenchAborted, err)
	}

	return newResults(r.config, samples, sizes), nil
}

func (r *Runner) runMode(mode handshake.Mode) ([]float64, error) {
	label := displayName(mode)
	samples := make([]float64, 0, r.config.Iterations)

	for i := 1; i <= r.config.Iterations; i++ {
		if r.config.Progress != nil {
			r.config.Progress(label, i, r.config.Iterations)
		}

		sample, err := r.runIteration(mode)
		if err != nil {
			return nil, fmt.Errorf("%w: %s iteration %d: %w", qerrors.ErrBenchAborted, mode, i, err)
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

// runIteration produces one impaired sample. Hybrid iterations measure
// the two component handshakes separately, impair each, and sum.
func (r *Runner) runIteration(mode handshake.Mode) (float64, error) {
	if mode == handshake.ModeHybrid {
		classical, err := r.measure(handshake.ModeClassical)
		if err != nil {
			return 0, err
		}
		pq, err := r.measure(handshake.ModePostQuantum)
		if err != nil {
			return 0, err
		}
		return r.impairment.Apply(classical) + r.impairment.Apply(pq), nil
	}

	raw, err := r.measure(mode)
	if err != nil {
		return 0, err
	}
	return r.impairment.Apply(raw), nil
}

// measureHandshake times one client connect-and-handshake against a
// fresh server and returns milliseconds.
//
// Only the client-side Connect sits inside the timed window; server
// startup and both teardowns are excluded. Teardown failures are logged
// and never affect the sample.
func (r *Runner) measureHandshake(mode handshake.Mode) (float64, error) {
	server, err := channel.NewServer(channel.ServerConfig{
		Address: "127.0.0.1:0",
		Mode:    mode,
	})
	if err != nil {
		return 0, err
	}
	if err := server.Start(); err != nil {
		return 0, err
	}
	defer func() {
		if err := server.Stop(); err != nil {
			r.logger.Warn("benchmark server teardown failed", metrics.Fields{"error": err.Error()})
		}
		time.Sleep(interIterationPause)
	}()

	<-server.Ready()
	addr := server.Addr()
	if addr == nil {
		return 0, qerrors.ErrServerStopped
	}

	client, err := channel.NewClient(channel.ClientConfig{Mode: mode})
	if err != nil {
		return 0, err
	}

	start := time.Now()
	err = client.Connect(addr.String())
	elapsed := time.Since(start)
	if err != nil {
		return 0, err
	}

	if err := client.Close(); err != nil {
		r.logger.Warn("benchmark client teardown failed", metrics.Fields{"error": err.Error()})
	}

	return elapsed.Seconds() * 1e3, nil
}

// displayName returns the label used in progress reporting.
func displayName(mode handshake.Mode) string {
	switch mode {
	case handshake.ModeClassical:
		return "Classical"
	case handshake.ModePostQuantum:
		return "PQC"
	case handshake.ModeHybrid:
		return "Hybrid"
	default:
		return string(mode)
	}
}
