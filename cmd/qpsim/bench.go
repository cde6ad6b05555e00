package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/bench"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/handshake"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/metrics"
)

type benchOptions struct {
	modes      string
	iterations int
	latency    float64
	loss       float64
	configPath string
	jsonOut    bool
	output     string
	logLevel   string
	logFormat  string

	// explicit marks flags the user set on the command line. Explicit
	// flags override config file values; defaults do not.
	explicit map[string]bool
}

func runBench(opts benchOptions) {
	_, logger, err := setupObservability(opts.logLevel, opts.logFormat, "none")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := buildBenchConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg.Logger = logger

	if !opts.jsonOut {
		printBenchBanner(cfg)
		cfg.Progress = func(mode string, iteration, total int) {
			fmt.Printf("  [%s] handshake %d/%d\r", mode, iteration, total)
			if iteration == total {
				fmt.Println()
			}
		}
	}

	runner, err := bench.NewRunner(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	results, err := runner.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: benchmark aborted: %v\n", err)
		os.Exit(1)
	}

	if opts.output != "" {
		if err := results.Save(opts.output); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to write %s: %v\n", opts.output, err)
			os.Exit(1)
		}
		if !opts.jsonOut {
			fmt.Printf("✓ Results written to %s\n", opts.output)
		}
	}

	if opts.jsonOut {
		if err := results.WriteJSON(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printBenchSummary(results)
}

func buildBenchConfig(opts benchOptions) (bench.Config, error) {
	cfg := bench.DefaultConfig()

	fromFile := opts.configPath != ""
	if fromFile {
		loaded, err := bench.LoadConfig(opts.configPath)
		if err != nil {
			return bench.Config{}, err
		}
		cfg = loaded
	}

	if !fromFile || opts.explicit["modes"] {
		modes, err := parseModeList(opts.modes)
		if err != nil {
			return bench.Config{}, err
		}
		cfg.Modes = modes
	}
	if !fromFile || opts.explicit["iterations"] {
		cfg.Iterations = opts.iterations
	}
	if !fromFile || opts.explicit["latency"] {
		cfg.LatencyMs = opts.latency
	}
	if !fromFile || opts.explicit["loss"] {
		cfg.PacketLossPercent = opts.loss
	}

	return cfg, nil
}

func parseModeList(s string) ([]handshake.Mode, error) {
	parts := strings.Split(s, ",")
	modes := make([]handshake.Mode, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		mode, err := handshake.ParseMode(part)
		if err != nil {
			return nil, err
		}
		modes = append(modes, mode)
	}
	if len(modes) == 0 {
		return nil, fmt.Errorf("no modes selected")
	}
	return modes, nil
}

func printBenchBanner(cfg bench.Config) {
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║      Handshake Benchmark: Classical vs Post-Quantum       ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	names := make([]string, len(cfg.Modes))
	for i, mode := range cfg.Modes {
		names[i] = string(mode)
	}
	fmt.Printf("Modes:      %s\n", strings.Join(names, ", "))
	fmt.Printf("Iterations: %d per mode\n", cfg.Iterations)
	if cfg.LatencyMs > 0 || cfg.PacketLossPercent > 0 {
		fmt.Printf("Impairment: +%.1f ms latency, %.1f%% loss\n", cfg.LatencyMs, cfg.PacketLossPercent)
	}
	fmt.Println()
}

func printBenchSummary(results *bench.Results) {
	fmt.Println()
	fmt.Println("Results:")
	fmt.Println(strings.Repeat("─", 60))

	for _, mode := range results.Settings.Modes {
		samples := results.HandshakeSamples[mode]
		if len(samples) == 0 {
			continue
		}

		hist := metrics.NewHistogram(metrics.HandshakeLatencyBuckets)
		for _, sample := range samples {
			hist.Observe(sample)
		}
		summary := hist.Summary()

		fmt.Printf("\n%s (%d handshakes):\n", modeLabel(mode), len(samples))
		fmt.Printf("  Mean: %8.2f ms\n", summary.Mean)
		fmt.Printf("  Min:  %8.2f ms\n", summary.Min)
		fmt.Printf("  Max:  %8.2f ms\n", summary.Max)
		fmt.Printf("  p50:  %8.2f ms\n", summary.Percentiles[0.5])
		fmt.Printf("  p95:  %8.2f ms\n", summary.Percentiles[0.95])
		fmt.Printf("  p99:  %8.2f ms\n", summary.Percentiles[0.99])
	}

	fmt.Println()
	fmt.Println("Key Material Sizes:")
	fmt.Printf("  Classical public key: %5d bytes (PEM)\n", results.PublicKeyBytes["classical"])
	fmt.Printf("  PQC public key:       %5d bytes\n", results.PublicKeyBytes["pqc"])
	fmt.Printf("  Hybrid public keys:   %5d bytes\n", results.PublicKeyBytes["hybrid"])
	fmt.Printf("  PQC signature:        %5d bytes\n", results.SignatureBytes["pqc"])
}

func modeLabel(mode string) string {
	switch handshake.Mode(mode) {
	case handshake.ModeClassical:
		return "Classical (ECDH P-384)"
	case handshake.ModePostQuantum:
		return "Post-Quantum (ML-KEM-768 + ML-DSA-65)"
	case handshake.ModeHybrid:
		return "Hybrid (ECDH + ML-KEM)"
	default:
		return mode
	}
}
