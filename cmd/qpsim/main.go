package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/bench"
	pkgversion "github.com/bhaskardatta/Quantum-performance-simulator/pkg/version"
)

// Build-time variables (set via -ldflags)
var (
	version   = ""        // Set via -ldflags "-X main.version=x.y.z"
	buildTime = "unknown" // Set via -ldflags "-X main.buildTime=..."
	gitCommit = "unknown" // Set via -ldflags "-X main.gitCommit=..."
)

func getVersion() string {
	if version != "" {
		return version
	}
	return pkgversion.String()
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "bench":
		benchCommand()
	case "serve":
		serveCommand()
	case "connect":
		connectCommand()
	case "version":
		fmt.Printf("qpsim version %s\n", getVersion())
		if buildTime != "unknown" {
			fmt.Printf("Built: %s\n", buildTime)
		}
		if gitCommit != "unknown" {
			fmt.Printf("Commit: %s\n", gitCommit)
		}
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`qpsim - Classical vs Post-Quantum Handshake Benchmark Tool

USAGE:
    qpsim <command> [options]

COMMANDS:
    bench     Benchmark handshake performance across key exchange modes
    serve     Run a secure channel server
    connect   Connect to a server and send messages
    version   Print version information
    help      Show this help message

Run 'qpsim <command> --help' for more information on a command.

EXAMPLES:
    # Benchmark all modes under simulated network impairment
    qpsim bench --modes classical,pqc,hybrid --iterations 50 --latency 20 --loss 1.5

    # Write benchmark results as JSON
    qpsim bench --iterations 100 --output results.json

    # Start a post-quantum server
    qpsim serve --mode pqc --addr 127.0.0.1:4433

    # Connect and send one message
    qpsim connect --mode pqc --addr 127.0.0.1:4433 --message "hello"

MODES:
    classical   Ephemeral ECDH over P-384
    pqc         ML-KEM-768 key encapsulation + ML-DSA-65 signatures
    hybrid      Both exchanges on one connection, secrets combined`)
}

func benchCommand() {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	modes := fs.String("modes", "classical,pqc,hybrid", "Comma-separated modes: classical, pqc, hybrid")
	iterations := fs.Int("iterations", bench.DefaultIterations, "Handshakes measured per mode")
	latency := fs.Float64("latency", 0, "Simulated added latency in milliseconds")
	loss := fs.Float64("loss", 0, "Simulated packet loss percentage")
	configPath := fs.String("config", "", "TOML config file (explicit flags override file values)")
	jsonOut := fs.Bool("json", false, "Print results as JSON instead of the summary")
	output := fs.String("output", "", "Write results JSON to a file")
	logLevel := fs.String("log-level", "warn", "Log level: debug, info, warn, error, silent")
	logFormat := fs.String("log-format", "text", "Log format: text or json")

	fs.Usage = func() {
		fmt.Println(`USAGE: qpsim bench [options]

Measure handshake latency for each key exchange mode against a local server,
with optional simulated network impairment applied to every sample.

OPTIONS:`)
		fs.PrintDefaults()
		fmt.Println(`
EXAMPLES:
    # 50 handshakes per mode, all modes
    qpsim bench

    # Post-quantum only, heavy impairment
    qpsim bench --modes pqc --iterations 100 --latency 50 --loss 3

    # Load settings from a file, print JSON
    qpsim bench --config bench.toml --json`)
	}

	_ = fs.Parse(os.Args[2:])

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	runBench(benchOptions{
		modes:      *modes,
		iterations: *iterations,
		latency:    *latency,
		loss:       *loss,
		configPath: *configPath,
		jsonOut:    *jsonOut,
		output:     *output,
		logLevel:   *logLevel,
		logFormat:  *logFormat,
		explicit:   set,
	})
}

func serveCommand() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	mode := fs.String("mode", "pqc", "Handshake mode: classical, pqc, hybrid")
	addr := fs.String("addr", "127.0.0.1:4433", "Address to listen on")
	obsAddr := fs.String("obs-addr", "", "Observability server address (e.g. :9090). Empty disables")
	logLevel := fs.String("log-level", "info", "Log level: debug, info, warn, error, silent")
	logFormat := fs.String("log-format", "text", "Log format: text or json")
	tracing := fs.String("tracing", "none", "Tracing mode: none, simple, otel (requires -tags otel)")

	fs.Usage = func() {
		fmt.Println(`USAGE: qpsim serve [options]

Run a secure channel server. Connections are served one at a time: each
client handshakes, sends messages, and ends its session with "exit".
Received messages are printed until the process is interrupted.

OPTIONS:`)
		fs.PrintDefaults()
		fmt.Println(`
EXAMPLES:
    # Post-quantum server with metrics endpoint
    qpsim serve --mode pqc --addr 127.0.0.1:4433 --obs-addr :9090

    # Hybrid server with JSON logs
    qpsim serve --mode hybrid --log-level debug --log-format json`)
	}

	_ = fs.Parse(os.Args[2:])

	runServe(*mode, *addr, *obsAddr, *logLevel, *logFormat, *tracing)
}

func connectCommand() {
	fs := flag.NewFlagSet("connect", flag.ExitOnError)
	mode := fs.String("mode", "pqc", "Handshake mode: classical, pqc, hybrid (must match the server)")
	addr := fs.String("addr", "127.0.0.1:4433", "Server address to connect to")
	message := fs.String("message", "hello from qpsim", "Message to send, or '-' for interactive stdin")
	logLevel := fs.String("log-level", "warn", "Log level: debug, info, warn, error, silent")
	logFormat := fs.String("log-format", "text", "Log format: text or json")

	fs.Usage = func() {
		fmt.Println(`USAGE: qpsim connect [options]

Connect to a secure channel server, send messages over the encrypted
channel, and end the session with the "exit" sentinel.

OPTIONS:`)
		fs.PrintDefaults()
		fmt.Println(`
EXAMPLES:
    # Send a single message
    qpsim connect --addr 127.0.0.1:4433 --message "status report"

    # Interactive session (Ctrl+D to finish)
    qpsim connect --addr 127.0.0.1:4433 --message -`)
	}

	_ = fs.Parse(os.Args[2:])

	runConnect(*mode, *addr, *message, *logLevel, *logFormat)
}
