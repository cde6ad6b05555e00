package channel_test

import (
	"errors"
	"net"
	"testing"
	"time"

	qerrors "github.com/bhaskardatta/Quantum-performance-simulator/internal/errors"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/channel"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/handshake"
)

// startServer launches a server on an ephemeral port and returns its
// dial address. The server is stopped on test cleanup.
func startServer(t *testing.T, config channel.ServerConfig) (*channel.Server, string) {
	t.Helper()

	if config.Address == "" {
		config.Address = "127.0.0.1:0"
	}

	server, err := channel.NewServer(config)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	if err := server.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(func() { _ = server.Stop() })

	select {
	case <-server.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("server not ready within 2s")
	}

	addr := server.Addr()
	if addr == nil {
		t.Fatal("server has no bound address")
	}
	return server, addr.String()
}

// waitFor polls a condition until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, what string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestServerLifecycle(t *testing.T) {
	server, _ := startServer(t, channel.ServerConfig{Mode: handshake.ModeClassical})

	if got := server.State(); got != channel.ServerListening {
		t.Errorf("state after start = %v, want %v", got, channel.ServerListening)
	}
	if err := server.Start(); !errors.Is(err, qerrors.ErrServerRunning) {
		t.Errorf("second start = %v, want ErrServerRunning", err)
	}

	if err := server.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if got := server.State(); got != channel.ServerStopped {
		t.Errorf("state after stop = %v, want %v", got, channel.ServerStopped)
	}
	if err := server.Stop(); err != nil {
		t.Errorf("second stop = %v, want nil", err)
	}

	// The server must be restartable after a stop.
	if err := server.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if err := server.Stop(); err != nil {
		t.Fatalf("stop after restart: %v", err)
	}
}

func TestServerStateString(t *testing.T) {
	tests := []struct {
		state channel.ServerState
		want  string
	}{
		{channel.ServerStopped, "stopped"},
		{channel.ServerListening, "listening"},
		{channel.ServerHandshaking, "handshaking"},
		{channel.ServerServing, "serving"},
		{channel.ServerState(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("ServerState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestEndToEndSession(t *testing.T) {
	for _, mode := range handshake.Modes() {
		t.Run(string(mode), func(t *testing.T) {
			serverObs := &recordingObserver{}
			server, addr := startServer(t, channel.ServerConfig{
				Mode:     mode,
				Observer: serverObs,
			})

			clientObs := &recordingObserver{}
			client, err := channel.NewClient(channel.ClientConfig{
				Mode:     mode,
				Observer: clientObs,
			})
			if err != nil {
				t.Fatalf("new client: %v", err)
			}
			defer client.Close()

			if err := client.Connect(addr); err != nil {
				t.Fatalf("connect: %v", err)
			}
			if !client.Connected() {
				t.Fatal("Connected() = false after successful connect")
			}

			const greeting = "hello quantum world"
			if err := client.Send(greeting); err != nil {
				t.Fatalf("send: %v", err)
			}

			got, ok := server.WaitForMessage(2 * time.Second)
			if !ok {
				t.Fatal("server did not receive a message within 2s")
			}
			if got != greeting {
				t.Fatalf("server received %q, want %q", got, greeting)
			}

			// The sentinel ends the session but is still recorded.
			if err := client.Send("exit"); err != nil {
				t.Fatalf("send sentinel: %v", err)
			}
			waitFor(t, 2*time.Second, func() bool {
				last, _ := server.LastMessage()
				return last == "exit"
			}, "sentinel to be recorded")
			waitFor(t, 2*time.Second, func() bool {
				return server.State() == channel.ServerListening
			}, "server to return to listening")

			if err := client.Close(); err != nil {
				t.Fatalf("client close: %v", err)
			}
			if err := server.Stop(); err != nil {
				t.Fatalf("server stop: %v", err)
			}

			snap := serverObs.snapshot()
			if snap.connStarts != 1 || snap.connEnds != 1 {
				t.Errorf("server connection events start=%d end=%d, want 1/1", snap.connStarts, snap.connEnds)
			}
			if len(snap.handshakes) != 1 || snap.handshakes[0] != nil {
				t.Errorf("server handshake events = %v, want one success", snap.handshakes)
			}
			if snap.received != 2 {
				t.Errorf("server received %d messages, want 2", snap.received)
			}

			csnap := clientObs.snapshot()
			if csnap.sent != 2 {
				t.Errorf("client sent %d messages, want 2", csnap.sent)
			}
			if len(csnap.handshakes) != 1 || csnap.handshakes[0] != nil {
				t.Errorf("client handshake events = %v, want one success", csnap.handshakes)
			}
		})
	}
}

func TestServerServesConnectionsSequentially(t *testing.T) {
	server, addr := startServer(t, channel.ServerConfig{Mode: handshake.ModeClassical})

	for i, message := range []string{"first session", "second session"} {
		client, err := channel.NewClient(channel.ClientConfig{Mode: handshake.ModeClassical})
		if err != nil {
			t.Fatalf("new client %d: %v", i, err)
		}
		if err := client.Connect(addr); err != nil {
			t.Fatalf("connect %d: %v", i, err)
		}
		if err := client.Send(message); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
		waitFor(t, 2*time.Second, func() bool {
			last, _ := server.LastMessage()
			return last == message
		}, "message to be recorded")
		if err := client.Send("exit"); err != nil {
			t.Fatalf("send sentinel %d: %v", i, err)
		}
		waitFor(t, 2*time.Second, func() bool {
			return server.State() == channel.ServerListening
		}, "session to end")
		_ = client.Close()
	}
}

func TestServerSurvivesFailedHandshake(t *testing.T) {
	serverObs := &recordingObserver{}
	server, addr := startServer(t, channel.ServerConfig{
		Mode:     handshake.ModeClassical,
		Observer: serverObs,
	})

	// A peer that connects and hangs up mid-handshake must not take the
	// server down.
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("raw dial: %v", err)
	}
	_ = conn.Close()

	waitFor(t, 3*time.Second, func() bool {
		snap := serverObs.snapshot()
		return len(snap.handshakes) == 1 && snap.handshakes[0] != nil
	}, "failed handshake to be observed")
	waitFor(t, 2*time.Second, func() bool {
		return server.State() == channel.ServerListening
	}, "server to keep listening")

	// A well-behaved client succeeds right after.
	client, err := channel.NewClient(channel.ClientConfig{Mode: handshake.ModeClassical})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()
	if err := client.Connect(addr); err != nil {
		t.Fatalf("connect after failed handshake: %v", err)
	}
	if err := client.Send("exit"); err != nil {
		t.Fatalf("send: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool {
		last, _ := server.LastMessage()
		return last == "exit"
	}, "session after failed handshake")
	_ = server.Stop()
}

func TestServerRateLimitsHandshakes(t *testing.T) {
	serverObs := &recordingObserver{}
	_, addr := startServer(t, channel.ServerConfig{
		Mode:           handshake.ModeClassical,
		HandshakeRate:  0.001,
		HandshakeBurst: 1,
		Observer:       serverObs,
	})

	first, err := channel.NewClient(channel.ClientConfig{Mode: handshake.ModeClassical})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := first.Connect(addr); err != nil {
		t.Fatalf("first connect: %v", err)
	}
	if err := first.Send("exit"); err != nil {
		t.Fatalf("first send: %v", err)
	}
	_ = first.Close()

	waitFor(t, 2*time.Second, func() bool {
		return serverObs.snapshot().connEnds == 1
	}, "first session to end")

	// The bucket is empty now; the next handshake is dropped before any
	// key exchange and the client sees a failed handshake.
	second, err := channel.NewClient(channel.ClientConfig{Mode: handshake.ModeClassical})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer second.Close()

	err = second.Connect(addr)
	if !errors.Is(err, qerrors.ErrHandshakeFailed) {
		t.Fatalf("rate-limited connect = %v, want ErrHandshakeFailed", err)
	}
	if second.Connected() {
		t.Error("Connected() = true after rate-limited connect")
	}

	waitFor(t, 2*time.Second, func() bool {
		return serverObs.snapshot().rateLimited == 1
	}, "rate-limit event to be observed")
}

func TestClientConnectRefused(t *testing.T) {
	client, err := channel.NewClient(channel.ClientConfig{
		Mode:        handshake.ModeClassical,
		DialTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	// Reserve a port, then close the listener so nothing is accepting.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := listener.Addr().String()
	_ = listener.Close()

	connectErr := client.Connect(addr)
	if !errors.Is(connectErr, qerrors.ErrConnectFailed) {
		t.Fatalf("connect to dead address = %v, want ErrConnectFailed", connectErr)
	}
	if errors.Is(connectErr, qerrors.ErrHandshakeFailed) {
		t.Error("socket failure must not be classified as a handshake failure")
	}
	if client.Connected() {
		t.Error("Connected() = true after refused connect")
	}
	if !errors.Is(client.LastError(), qerrors.ErrConnectFailed) {
		t.Errorf("LastError() = %v, want ErrConnectFailed", client.LastError())
	}
}

func TestClientStateErrors(t *testing.T) {
	server, addr := startServer(t, channel.ServerConfig{Mode: handshake.ModeClassical})

	client, err := channel.NewClient(channel.ClientConfig{Mode: handshake.ModeClassical})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	if err := client.Send("too early"); !errors.Is(err, qerrors.ErrNotConnected) {
		t.Errorf("send before connect = %v, want ErrNotConnected", err)
	}
	if _, err := client.Receive(); !errors.Is(err, qerrors.ErrNotConnected) {
		t.Errorf("receive before connect = %v, want ErrNotConnected", err)
	}
	if !errors.Is(client.LastError(), qerrors.ErrNotConnected) {
		t.Errorf("LastError() = %v, want ErrNotConnected", client.LastError())
	}
	if err := client.Close(); err != nil {
		t.Errorf("close before connect = %v, want nil", err)
	}

	if err := client.Connect(addr); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := client.LastError(); err != nil {
		t.Errorf("LastError() = %v after successful connect, want nil", err)
	}
	if err := client.Connect(addr); !errors.Is(err, qerrors.ErrAlreadyConnected) {
		t.Errorf("second connect = %v, want ErrAlreadyConnected", err)
	}

	if err := client.Send("exit"); err != nil {
		t.Fatalf("send: %v", err)
	}
	_ = client.Close()
	if client.Connected() {
		t.Error("Connected() = true after close")
	}
	_ = server.Stop()
}

func TestMessagesStream(t *testing.T) {
	server, addr := startServer(t, channel.ServerConfig{Mode: handshake.ModeClassical})

	client, err := channel.NewClient(channel.ClientConfig{Mode: handshake.ModeClassical})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()
	if err := client.Connect(addr); err != nil {
		t.Fatalf("connect: %v", err)
	}

	sent := []string{"one", "two", "three", "exit"}
	for _, m := range sent {
		if err := client.Send(m); err != nil {
			t.Fatalf("send %q: %v", m, err)
		}
	}

	for i, want := range sent {
		select {
		case got := <-server.Messages():
			if got != want {
				t.Fatalf("stream message %d = %q, want %q", i, got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("stream message %d not delivered within 2s", i)
		}
	}
}

func TestWaitForMessageTimeout(t *testing.T) {
	server, err := channel.NewServer(channel.ServerConfig{Mode: handshake.ModeClassical})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	start := time.Now()
	if _, ok := server.WaitForMessage(50 * time.Millisecond); ok {
		t.Fatal("WaitForMessage reported a message on an idle server")
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("WaitForMessage returned after %v, want at least 50ms", elapsed)
	}

	if _, ok := server.LastMessage(); ok {
		t.Error("LastMessage reported a message on an idle server")
	}
}

func TestStopDuringIdleSession(t *testing.T) {
	server, addr := startServer(t, channel.ServerConfig{
		Mode:        handshake.ModeClassical,
		ReadTimeout: 200 * time.Millisecond,
	})

	client, err := channel.NewClient(channel.ClientConfig{Mode: handshake.ModeClassical})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()
	if err := client.Connect(addr); err != nil {
		t.Fatalf("connect: %v", err)
	}

	// Stop with a session open but idle. The read timeout lets the serve
	// loop notice the stop request and join within the bound.
	if err := server.Stop(); err != nil {
		t.Fatalf("stop with open session: %v", err)
	}
	if got := server.State(); got != channel.ServerStopped {
		t.Errorf("state after stop = %v, want %v", got, channel.ServerStopped)
	}
}

func TestNewServerRejectsUnknownMode(t *testing.T) {
	if _, err := channel.NewServer(channel.ServerConfig{Mode: "rsa"}); !errors.Is(err, qerrors.ErrUnsupportedMode) {
		t.Fatalf("NewServer with unknown mode = %v, want ErrUnsupportedMode", err)
	}
	if _, err := channel.NewClient(channel.ClientConfig{Mode: "rot13"}); !errors.Is(err, qerrors.ErrUnsupportedMode) {
		t.Fatalf("NewClient with unknown mode = %v, want ErrUnsupportedMode", err)
	}
}

func TestDefaultConfigs(t *testing.T) {
	sc := channel.DefaultServerConfig()
	if sc.Mode != handshake.ModePostQuantum {
		t.Errorf("default server mode = %v, want %v", sc.Mode, handshake.ModePostQuantum)
	}
	if sc.MessageBuffer <= 0 {
		t.Errorf("default message buffer = %d, want positive", sc.MessageBuffer)
	}

	cc := channel.DefaultClientConfig()
	if cc.Mode != handshake.ModePostQuantum {
		t.Errorf("default client mode = %v, want %v", cc.Mode, handshake.ModePostQuantum)
	}
	if cc.DialTimeout <= 0 {
		t.Errorf("default dial timeout = %v, want positive", cc.DialTimeout)
	}
}
