package main

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/channel"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/handshake"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/metrics"
)

func runConnect(modeStr, addr, message, logLevel, logFormat string) {
	collector, logger, err := setupObservability(logLevel, logFormat, "none")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	mode, err := handshake.ParseMode(modeStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	observer := metrics.NewChannelObserver(metrics.ChannelObserverConfig{
		Collector: collector,
		Logger:    logger,
		Role:      "client",
	})

	config := channel.DefaultClientConfig()
	config.Mode = mode
	config.Observer = observer

	client, err := channel.NewClient(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Connecting to %s (%s handshake)...\n", addr, mode)

	start := time.Now()
	if err := client.Connect(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = client.Close() }()

	fmt.Printf("✓ Connected in %v\n", time.Since(start).Round(time.Microsecond))
	fmt.Println()

	if message == "-" {
		fmt.Println("Interactive mode (type messages, Ctrl+D to finish):")
		runInteractiveSession(client)
		return
	}

	fmt.Printf("→ %q\n", message)
	if err := client.Send(message); err != nil {
		fmt.Fprintf(os.Stderr, "Error: send failed: %v\n", err)
		os.Exit(1)
	}

	if err := endSession(client); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Session ended")
}

func runInteractiveSession(client *channel.Client) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break // EOF or error
		}

		message := scanner.Text()
		if message == "" {
			continue
		}

		if err := client.Send(message); err != nil {
			fmt.Fprintf(os.Stderr, "Send error: %v\n", err)
			return
		}

		if channel.IsSentinel(message) {
			fmt.Println("✓ Session ended")
			return
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Input error: %v\n", err)
		return
	}

	fmt.Println()
	if err := endSession(client); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	fmt.Println("✓ Session ended")
}

// endSession delivers the sentinel so the server's read loop finishes
// cleanly before the connection is torn down.
func endSession(client *channel.Client) error {
	if err := client.Send(channel.Sentinel); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}
