// config.go implements benchmark configuration with TOML file support.
package bench

import (
	"fmt"

	"github.com/BurntSushi/toml"
	qerrors "github.com/bhaskardatta/Quantum-performance-simulator/internal/errors"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/handshake"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/metrics"
)

// DefaultIterations is the number of handshakes measured per mode when
// the configuration does not say otherwise.
const DefaultIterations = 50

// Config controls a benchmark run.
type Config struct {
	// Modes lists the handshake modes to measure, in order. Empty means
	// all supported modes.
	Modes []handshake.Mode

	// Iterations is the number of handshakes measured per mode. Zero or
	// negative falls back to DefaultIterations.
	Iterations int

	// LatencyMs is the simulated network latency added to every sample,
	// in milliseconds. Negative values are treated as zero.
	LatencyMs float64

	// PacketLossPercent drives the retransmission penalty of the
	// impairment model. Negative values are treated as zero.
	PacketLossPercent float64

	// Progress, when set, is invoked before each measured handshake with
	// a display label, the 1-based iteration, and the total count.
	Progress func(mode string, iteration, total int)

	// Logger receives teardown warnings and run diagnostics. Nil means
	// the package-level logger.
	Logger *metrics.Logger
}

// DefaultConfig returns the standard benchmark setup: every mode, 50
// iterations, no simulated impairment.
func DefaultConfig() Config {
	return Config{
		Modes:      handshake.Modes(),
		Iterations: DefaultIterations,
	}
}

// fileConfig is the TOML representation of Config.
type fileConfig struct {
	Modes             []string `toml:"modes"`
	Iterations        int      `toml:"iterations"`
	LatencyMs         float64  `toml:"latency_ms"`
	PacketLossPercent float64  `toml:"packet_loss_percent"`
}

// LoadConfig reads a benchmark configuration from a TOML file. Fields
// absent from the file keep their defaults; unknown mode names are
// rejected rather than silently ignored.
func LoadConfig(path string) (Config, error) {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return Config{}, fmt.Errorf("%w: %w", qerrors.ErrInvalidConfig, err)
	}

	config := DefaultConfig()
	if len(fc.Modes) > 0 {
		modes := make([]handshake.Mode, 0, len(fc.Modes))
		for _, raw := range fc.Modes {
			mode, err := handshake.ParseMode(raw)
			if err != nil {
				return Config{}, fmt.Errorf("%w: %w", qerrors.ErrInvalidConfig, err)
			}
			modes = append(modes, mode)
		}
		config.Modes = modes
	}
	if fc.Iterations != 0 {
		config.Iterations = fc.Iterations
	}
	config.LatencyMs = fc.LatencyMs
	config.PacketLossPercent = fc.PacketLossPercent
	return config, nil
}

// normalize applies defaults, clamps the impairment inputs, and
// validates the mode list.
func (c Config) normalize() (Config, error) {
	if len(c.Modes) == 0 {
		c.Modes = handshake.Modes()
	}
	modes := make([]handshake.Mode, len(c.Modes))
	for i, m := range c.Modes {
		parsed, err := handshake.ParseMode(string(m))
		if err != nil {
			return c, fmt.Errorf("%w: %w", qerrors.ErrInvalidConfig, err)
		}
		modes[i] = parsed
	}
	c.Modes = modes

	if c.Iterations <= 0 {
		c.Iterations = DefaultIterations
	}
	if c.LatencyMs < 0 {
		c.LatencyMs = 0
	}
	if c.PacketLossPercent < 0 {
		c.PacketLossPercent = 0
	}
	if c.Logger == nil {
		c.Logger = metrics.GetLogger()
	}
	return c, nil
}
