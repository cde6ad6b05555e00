package protocol_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/bhaskardatta/Quantum-performance-simulator/internal/constants"
	qerrors "github.com/bhaskardatta/Quantum-performance-simulator/internal/errors"
	"github.com/bhaskardatta/Quantum-performance-simulator/pkg/protocol"
)

// countingWriter records how many Write calls it received.
type countingWriter struct {
	buf    bytes.Buffer
	writes int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.buf.Write(p)
}

// --- Frame Tests ---

func TestFrameRoundTrip(t *testing.T) {
	codec := protocol.NewCodec()
	payloads := [][]byte{
		[]byte("hello"),
		{},
		bytes.Repeat([]byte{0xAB}, 1),
		bytes.Repeat([]byte{0xCD}, 4096),
		bytes.Repeat([]byte{0xEF}, constants.MaxFrameSize),
	}

	for i, payload := range payloads {
		var buf bytes.Buffer
		if err := codec.WriteFrame(&buf, payload); err != nil {
			t.Fatalf("case %d: WriteFrame failed: %v", i, err)
		}

		got, err := codec.ReadFrame(&buf)
		if err != nil {
			t.Fatalf("case %d: ReadFrame failed: %v", i, err)
		}
		if !bytes.Equal(got, payload) {
			t.Errorf("case %d: round trip mismatch: got %d bytes, want %d", i, len(got), len(payload))
		}
	}
}

func TestFrameWireLayout(t *testing.T) {
	codec := protocol.NewCodec()
	payload := []byte("layout")

	var buf bytes.Buffer
	if err := codec.WriteFrame(&buf, payload); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}

	raw := buf.Bytes()
	if len(raw) != constants.FrameHeaderSize+len(payload) {
		t.Fatalf("frame length = %d, want %d", len(raw), constants.FrameHeaderSize+len(payload))
	}
	if got := binary.BigEndian.Uint32(raw); got != uint32(len(payload)) {
		t.Errorf("length prefix = %d, want %d", got, len(payload))
	}
	if !bytes.Equal(raw[constants.FrameHeaderSize:], payload) {
		t.Error("payload bytes corrupted")
	}
}

func TestFrameSequence(t *testing.T) {
	codec := protocol.NewCodec()
	var buf bytes.Buffer

	messages := [][]byte{[]byte("first"), []byte("second"), []byte("third")}
	for _, m := range messages {
		if err := codec.WriteFrame(&buf, m); err != nil {
			t.Fatalf("WriteFrame failed: %v", err)
		}
	}

	for i, want := range messages {
		got, err := codec.ReadFrame(&buf)
		if err != nil {
			t.Fatalf("ReadFrame %d failed: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("frame %d: got %q, want %q", i, got, want)
		}
	}

	// Stream exhausted: clean close
	if _, err := codec.ReadFrame(&buf); err != io.EOF {
		t.Errorf("read past end: got %v, want io.EOF", err)
	}
}

func TestWriteFrameSingleWrite(t *testing.T) {
	codec := protocol.NewCodec()
	w := &countingWriter{}

	if err := codec.WriteFrame(w, []byte("atomic")); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}
	if w.writes != 1 {
		t.Errorf("WriteFrame issued %d writes, want 1", w.writes)
	}
}

func TestWriteFrameTooLarge(t *testing.T) {
	codec := protocol.NewCodec()
	var buf bytes.Buffer

	err := codec.WriteFrame(&buf, make([]byte, constants.MaxFrameSize+1))
	if !qerrors.Is(err, qerrors.ErrFrameTooLarge) {
		t.Errorf("got %v, want ErrFrameTooLarge", err)
	}
	if buf.Len() != 0 {
		t.Error("oversized frame leaked bytes onto the wire")
	}
}

func TestReadFrameRejectsOversizedLength(t *testing.T) {
	codec := protocol.NewCodec()

	header := make([]byte, constants.FrameHeaderSize)
	binary.BigEndian.PutUint32(header, constants.MaxFrameSize+1)

	_, err := codec.ReadFrame(bytes.NewReader(header))
	if !qerrors.Is(err, qerrors.ErrFrameTooLarge) {
		t.Errorf("got %v, want ErrFrameTooLarge", err)
	}
}

func TestReadFrameCleanCloseMidLength(t *testing.T) {
	codec := protocol.NewCodec()

	cases := [][]byte{
		{},           // closed before any header byte
		{0x00},       // one header byte
		{0x00, 0x00}, // two header bytes
		{0x00, 0x00, 0x00},
	}
	for i, partial := range cases {
		_, err := codec.ReadFrame(bytes.NewReader(partial))
		if err != io.EOF {
			t.Errorf("case %d: got %v, want io.EOF", i, err)
		}
	}
}

func TestReadFrameCleanCloseMidPayload(t *testing.T) {
	codec := protocol.NewCodec()

	// Header promises 100 bytes, stream carries 40
	var buf bytes.Buffer
	header := make([]byte, constants.FrameHeaderSize)
	binary.BigEndian.PutUint32(header, 100)
	buf.Write(header)
	buf.Write(make([]byte, 40))

	_, err := codec.ReadFrame(&buf)
	if err != io.EOF {
		t.Errorf("got %v, want io.EOF", err)
	}
}

// --- Sealed Message Tests ---

func TestSealedMessageRoundTrip(t *testing.T) {
	codec := protocol.NewCodec()

	nonce := bytes.Repeat([]byte{0x11}, constants.AEADNonceSize)
	ciphertext := []byte("opaque bytes with tag attached")

	var buf bytes.Buffer
	if err := codec.WriteSealedMessage(&buf, nonce, ciphertext); err != nil {
		t.Fatalf("WriteSealedMessage failed: %v", err)
	}

	gotNonce, gotCT, err := codec.ReadSealedMessage(&buf)
	if err != nil {
		t.Fatalf("ReadSealedMessage failed: %v", err)
	}
	if !bytes.Equal(gotNonce, nonce) {
		t.Error("nonce mismatch")
	}
	if !bytes.Equal(gotCT, ciphertext) {
		t.Error("ciphertext mismatch")
	}
}

func TestWriteSealedMessageSingleWrite(t *testing.T) {
	codec := protocol.NewCodec()
	w := &countingWriter{}

	nonce := make([]byte, constants.AEADNonceSize)
	if err := codec.WriteSealedMessage(w, nonce, []byte("ct")); err != nil {
		t.Fatalf("WriteSealedMessage failed: %v", err)
	}
	if w.writes != 1 {
		t.Errorf("WriteSealedMessage issued %d writes, want 1", w.writes)
	}
}

func TestWriteSealedMessageRejectsBadNonce(t *testing.T) {
	codec := protocol.NewCodec()
	var buf bytes.Buffer

	err := codec.WriteSealedMessage(&buf, make([]byte, 8), []byte("ct"))
	if !qerrors.Is(err, qerrors.ErrInvalidNonce) {
		t.Errorf("got %v, want ErrInvalidNonce", err)
	}
}

func TestReadSealedMessageRejectsBadNonceLength(t *testing.T) {
	codec := protocol.NewCodec()

	// Hand-build a message whose nonce frame carries 8 bytes instead of 12
	var buf bytes.Buffer
	if err := codec.WriteFrame(&buf, make([]byte, 8)); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}
	if err := codec.WriteFrame(&buf, []byte("ciphertext")); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}

	_, _, err := codec.ReadSealedMessage(&buf)
	if !qerrors.Is(err, qerrors.ErrInvalidFrame) {
		t.Errorf("got %v, want ErrInvalidFrame", err)
	}
}

func TestReadSealedMessageCleanCloseBeforeNonce(t *testing.T) {
	codec := protocol.NewCodec()

	_, _, err := codec.ReadSealedMessage(bytes.NewReader(nil))
	if err != io.EOF {
		t.Errorf("got %v, want io.EOF", err)
	}
}

func TestReadSealedMessageTornBetweenFrames(t *testing.T) {
	codec := protocol.NewCodec()

	// Only the nonce frame arrives before the close
	var buf bytes.Buffer
	if err := codec.WriteFrame(&buf, make([]byte, constants.AEADNonceSize)); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}

	_, _, err := codec.ReadSealedMessage(&buf)
	if !qerrors.Is(err, qerrors.ErrInvalidFrame) {
		t.Errorf("got %v, want ErrInvalidFrame", err)
	}
}
