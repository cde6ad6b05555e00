// Package metrics provides observability primitives for the secure channel
// library.
//
// # Overview
//
// The metrics package offers a complete observability solution including:
//   - Metrics collection (counters, gauges, histograms)
//   - Prometheus-compatible metrics export
//   - Distributed tracing support (OpenTelemetry-compatible interface)
//   - Structured logging with levels
//   - Health check endpoints
//
// # Quick Start
//
// Basic usage with global collector:
//
//	import "github.com/bhaskardatta/Quantum-performance-simulator/pkg/metrics"
//
//	// Record metrics
//	metrics.Global().ConnectionStarted()
//	metrics.Global().HandshakeCompleted(150 * time.Millisecond)
//	metrics.Global().MessageSent(1024)
//
//	// Start Prometheus server
//	go metrics.ServePrometheus(":9090", metrics.Global(), "qpsim")
//
// # Metrics Collection
//
// The Collector type aggregates metrics from channel connections:
//
//	collector := metrics.NewCollector(metrics.Labels{
//		"instance": "node-1",
//		"region":   "us-west-2",
//	})
//
//	// Connection metrics
//	collector.ConnectionStarted()
//	collector.ConnectionEnded()
//	collector.HandshakeCompleted(d)
//
//	// Traffic metrics
//	collector.MessageSent(n)
//	collector.MessageReceived(n)
//
//	// Security metrics
//	collector.RecordAuthFailure()
//	collector.RecordRateLimited()
//
//	// Get snapshot
//	snap := collector.Snapshot()
//
// # Channel Observer
//
// ChannelObserver adapts a collector, tracer, and logger to the
// channel.Observer interface so servers and clients feed metrics
// automatically:
//
//	obs := metrics.NewChannelObserver(metrics.ChannelObserverConfig{
//		Collector: collector,
//		Role:      "server",
//	})
//	server, _ := channel.NewServer(channel.ServerConfig{Observer: obs})
//
// # Prometheus Export
//
// Export metrics in Prometheus format:
//
//	exporter := metrics.NewPrometheusExporter(collector, "qpsim")
//	http.Handle("/metrics", exporter.Handler())
//
// # Tracing
//
// The package provides a Tracer interface compatible with OpenTelemetry:
//
//	// Use the simple tracer for testing
//	tracer := metrics.NewSimpleTracer()
//	metrics.SetTracer(tracer)
//
//	// OpenTelemetry adapter (uses global provider)
//	otelTracer := metrics.NewOTelTracer("qpsim")
//	metrics.SetTracer(otelTracer)
//	// Build with -tags otel to enable the adapter.
//
//	// Start spans
//	ctx, end := metrics.StartSpan(ctx, metrics.SpanHandshakeClient)
//	defer end(nil) // or end(err) on error
//
// # Structured Logging
//
// The Logger provides structured logging with levels:
//
//	logger := metrics.NewLogger(
//		metrics.WithLevel(metrics.LevelInfo),
//		metrics.WithFormat(metrics.FormatJSON),
//		metrics.WithFields(metrics.Fields{"service": "qpsim"}),
//	)
//
//	logger.Info("connection established", metrics.Fields{
//		"remote_addr": addr,
//		"cipher":      "AES-256-GCM",
//	})
//
//	// Child loggers
//	connLog := logger.Named("channel").With(metrics.Fields{"role": "server"})
//	connLog.Debug("sealing message")
//
// # Health Checks
//
// Provide health check endpoints for Kubernetes and load balancers:
//
//	health := metrics.NewHealthCheck(collector, "1.0.0")
//	health.AddCheck("crypto", metrics.CryptoCheck(constants.CipherSuiteAES256GCM))
//
//	http.Handle("/health", health.Handler())
//	http.Handle("/healthz", health.LivenessHandler())
//	http.Handle("/readyz", health.ReadinessHandler())
//
// # Observability Server
//
// Start a complete observability server:
//
//	server := metrics.NewServer(metrics.ServerConfig{
//		Collector:        collector,
//		Version:          "1.0.0",
//		Namespace:        "qpsim",
//		EnablePrometheus: true,
//		EnableHealth:     true,
//	})
//
//	go server.ListenAndServe(":9090")
//
// This provides:
//   - /metrics - Prometheus metrics
//   - /health  - Detailed health status
//   - /healthz - Kubernetes liveness probe
//   - /readyz  - Kubernetes readiness probe
package metrics
