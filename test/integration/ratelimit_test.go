package integration

import (
	"errors"
	"testing"
	"time"

	qerrors "github.com/bhaskardatta/Quantum-performance-simulator/internal/errors"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/channel"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/handshake"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/metrics"
)

// endSession finishes a session cleanly so the server returns to accepting.
func endSession(t *testing.T, server *channel.Server, client *channel.Client) {
	t.Helper()

	if err := client.Send(channel.Sentinel); err != nil {
		t.Fatalf("Send sentinel failed: %v", err)
	}
	nextMessage(t, server)
	if err := client.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestHandshakeRateLimit(t *testing.T) {
	collector := metrics.NewCollector(nil)
	observer := metrics.NewChannelObserver(metrics.ChannelObserverConfig{
		Collector: collector,
		Tracer:    metrics.NewSimpleTracer(),
		Logger:    metrics.NullLogger(),
		Role:      "server",
	})

	server := startServer(t, channel.ServerConfig{
		Mode:           handshake.ModeClassical,
		HandshakeRate:  1.0,
		HandshakeBurst: 1,
		Observer:       observer,
	})
	address := server.Addr().String()

	config := channel.DefaultClientConfig()
	config.Mode = handshake.ModeClassical

	// 1. First handshake consumes the burst allowance.
	client1, err := channel.NewClient(config)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if err := client1.Connect(address); err != nil {
		t.Fatalf("first Connect failed: %v", err)
	}
	endSession(t, server, client1)

	// 2. An immediate second handshake must be turned away: the server
	// closes the socket before any key exchange, which the client sees
	// as a failed handshake.
	client2, err := channel.NewClient(config)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	err = client2.Connect(address)
	if err == nil {
		_ = client2.Close()
		t.Fatal("second Connect succeeded, want rate limit rejection")
	}
	if !errors.Is(err, qerrors.ErrHandshakeFailed) {
		t.Errorf("second Connect = %v, want ErrHandshakeFailed", err)
	}

	// 3. After the bucket refills the server accepts again.
	time.Sleep(1200 * time.Millisecond)

	client3, err := channel.NewClient(config)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if err := client3.Connect(address); err != nil {
		t.Fatalf("third Connect failed after refill: %v", err)
	}
	endSession(t, server, client3)

	snap := collector.Snapshot()
	if snap.RateLimited != 1 {
		t.Errorf("RateLimited = %d, want 1", snap.RateLimited)
	}
	if snap.HandshakesTotal != 2 {
		t.Errorf("HandshakesTotal = %d, want 2", snap.HandshakesTotal)
	}
}

func TestRateLimitDisabledByDefault(t *testing.T) {
	server := startServer(t, channel.ServerConfig{Mode: handshake.ModeClassical})
	address := server.Addr().String()

	config := channel.DefaultClientConfig()
	config.Mode = handshake.ModeClassical

	// With no configured rate, back-to-back sessions must all be served.
	for i := 0; i < 3; i++ {
		client, err := channel.NewClient(config)
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		if err := client.Connect(address); err != nil {
			t.Fatalf("Connect %d failed: %v", i, err)
		}
		endSession(t, server, client)
	}
}
