package metrics

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPrometheusExporterWriteMetrics(t *testing.T) {
	c := NewCollector(Labels{"instance": "test"})

	// Add some metrics
	c.ConnectionStarted()
	c.MessageSent(1000)
	c.HandshakeCompleted(100 * time.Millisecond)

	exp := NewPrometheusExporter(c, "qpsim")

	var buf bytes.Buffer
	exp.WriteMetrics(&buf)

	output := buf.String()

	// Check for expected metrics
	expectedMetrics := []string{
		"qpsim_connections_active",
		"qpsim_connections_total",
		"qpsim_bytes_sent_total",
		"qpsim_handshake_duration_milliseconds",
	}

	for _, metric := range expectedMetrics {
		if !strings.Contains(output, metric) {
			t.Errorf("expected metric %q in output", metric)
		}
	}

	// Check for labels
	if !strings.Contains(output, `instance="test"`) {
		t.Error("expected label instance=\"test\" in output")
	}

	// Check for HELP and TYPE lines
	if !strings.Contains(output, "# HELP qpsim_connections_active") {
		t.Error("expected HELP line for connections_active")
	}
	if !strings.Contains(output, "# TYPE qpsim_connections_active gauge") {
		t.Error("expected TYPE line for connections_active")
	}
}

func TestPrometheusExporterHandler(t *testing.T) {
	c := NewCollector(nil)
	c.ConnectionStarted()

	exp := NewPrometheusExporter(c, "test")
	handler := exp.Handler()

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "text/plain") {
		t.Errorf("expected text/plain content type, got %s", contentType)
	}

	body := w.Body.String()
	if !strings.Contains(body, "test_connections_active") {
		t.Error("expected connections_active metric in response")
	}
}

func TestPrometheusExporterHistogram(t *testing.T) {
	c := NewCollector(nil)
	c.HandshakeCompleted(50 * time.Millisecond)
	c.HandshakeCompleted(150 * time.Millisecond)

	exp := NewPrometheusExporter(c, "test")

	var buf bytes.Buffer
	exp.WriteMetrics(&buf)

	output := buf.String()

	// Check for histogram bucket format
	if !strings.Contains(output, "_bucket{le=") {
		t.Error("expected histogram bucket format")
	}
	if !strings.Contains(output, "_sum") {
		t.Error("expected histogram sum")
	}
	if !strings.Contains(output, "_count") {
		t.Error("expected histogram count")
	}
	if !strings.Contains(output, `le="+Inf"`) {
		t.Error("expected +Inf bucket")
	}
}

func TestPrometheusExporterLabelEscaping(t *testing.T) {
	c := NewCollector(Labels{
		"path":    "/api/v1",
		"message": "hello \"world\"",
		"newline": "line1\nline2",
	})

	exp := NewPrometheusExporter(c, "test")

	var buf bytes.Buffer
	exp.WriteMetrics(&buf)

	output := buf.String()

	// Check proper escaping
	if strings.Contains(output, "\n\"") {
		t.Error("newline should be escaped in labels")
	}
	if strings.Contains(output, `"hello "world""`) {
		t.Error("quotes should be escaped in labels")
	}
}

func TestPrometheusExporterAllMetricTypes(t *testing.T) {
	c := NewCollector(nil)

	// Record all metric types
	c.ConnectionStarted()
	c.ConnectionEnded()
	c.HandshakeCompleted(100 * time.Millisecond)
	c.HandshakeFailed()
	c.MessageSent(100)
	c.MessageReceived(200)
	c.RecordAuthFailure()
	c.RecordRateLimited()
	c.RecordOversizedFrame()
	c.RecordProtocolError()

	exp := NewPrometheusExporter(c, "quantum")

	var buf bytes.Buffer
	exp.WriteMetrics(&buf)

	output := buf.String()

	// All metrics should be present
	expectedMetrics := []string{
		"connections_active",
		"connections_total",
		"handshakes_total",
		"handshakes_failed_total",
		"messages_sent_total",
		"messages_received_total",
		"bytes_sent_total",
		"bytes_received_total",
		"auth_failures_total",
		"rate_limited_total",
		"oversized_frames_total",
		"protocol_errors_total",
		"uptime_seconds",
		"handshake_duration_milliseconds",
	}

	for _, metric := range expectedMetrics {
		if !strings.Contains(output, "quantum_"+metric) {
			t.Errorf("missing metric: quantum_%s", metric)
		}
	}
}

func TestPrometheusExporterEmptyLabels(t *testing.T) {
	c := NewCollector(nil)
	c.ConnectionStarted()

	exp := NewPrometheusExporter(c, "test")

	var buf bytes.Buffer
	exp.WriteMetrics(&buf)

	output := buf.String()

	// With no labels, metrics should not have curly braces (except histograms)
	lines := strings.Split(output, "\n")
	for _, line := range lines {
		if strings.HasPrefix(line, "test_connections_active") {
			if strings.Contains(line, "{") && !strings.Contains(line, "_bucket") {
				t.Errorf("gauge metric should not have labels: %s", line)
			}
		}
	}
}
