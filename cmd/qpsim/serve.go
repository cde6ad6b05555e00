package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bhaskardatta/Quantum-performance-simulator/internal/constants"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/channel"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/handshake"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/metrics"
)

func runServe(modeStr, addr, obsAddr, logLevel, logFormat, tracing string) {
	collector, logger, err := setupObservability(logLevel, logFormat, tracing)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	mode, err := handshake.ParseMode(modeStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║      Secure Channel Server                                ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("Starting %s server on %s...\n", mode, addr)

	observer := metrics.NewChannelObserver(metrics.ChannelObserverConfig{
		Collector: collector,
		Logger:    logger,
		Role:      "server",
	})

	server, err := channel.NewServer(channel.ServerConfig{
		Address:  addr,
		Mode:     mode,
		Observer: observer,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := server.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to start server: %v\n", err)
		os.Exit(1)
	}
	<-server.Ready()

	fmt.Printf("✓ Server listening on %s (%s handshake)\n", server.Addr(), mode)
	fmt.Println("Waiting for connections... (Press Ctrl+C to stop)")
	fmt.Println()

	if obsAddr != "" {
		obsServer := metrics.NewServer(metrics.ServerConfig{
			Collector:        collector,
			Version:          getVersion(),
			Namespace:        "qpsim",
			EnablePrometheus: true,
			EnableHealth:     true,
		})
		obsServer.AddHealthCheck("crypto", metrics.CryptoCheck(constants.CipherSuiteAES256GCM))

		go func() {
			if err := obsServer.ListenAndServe(obsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("observability server error", metrics.Fields{"error": err.Error()})
			}
		}()

		fmt.Printf("✓ Observability server on %s (metrics: /metrics, health: /health)\n", obsAddr)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case msg := <-server.Messages():
			stamp := time.Now().Format("15:04:05")
			if channel.IsSentinel(msg) {
				fmt.Printf("[%s] session ended by client\n", stamp)
			} else {
				fmt.Printf("[%s] ← %q\n", stamp, msg)
			}
		case <-sigChan:
			fmt.Println("\nShutting down server...")
			if err := server.Stop(); err != nil {
				fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
			}
			return
		}
	}
}
