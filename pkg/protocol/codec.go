// codec.go implements the length-prefixed wire framing.
//
// Wire Format:
//
// Every value exchanged between peers travels in a frame:
//
//	+--------+----------+
//	| Length | Payload  |
//	| 4B BE  | Variable |
//	+--------+----------+
//
// Length is a big-endian uint32 and counts payload bytes only. A peer that
// closes the connection before a complete frame arrives produces a clean
// io.EOF, never a partial payload. Frames above MaxFrameSize are rejected
// before any payload allocation.
package protocol

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/bhaskardatta/Quantum-performance-simulator/internal/constants"
	qerrors "github.com/bhaskardatta/Quantum-performance-simulator/internal/errors"
)

// Codec reads and writes wire frames. It carries no per-connection state;
// one instance may serve any number of streams concurrently.
type Codec struct{}

// NewCodec creates a new frame codec.
func NewCodec() *Codec {
	return &Codec{}
}

// WriteFrame writes a length-prefixed frame to w.
//
// Header and payload are assembled in one pooled buffer and handed to the
// writer in a single Write call, so two frames written under the same lock
// can never interleave. Zero-length payloads are legal frames.
func (c *Codec) WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > constants.MaxFrameSize {
		return qerrors.ErrFrameTooLarge
	}

	total := constants.FrameHeaderSize + len(payload)
	buf := GetGlobal(total)
	defer PutGlobal(buf)

	binary.BigEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[constants.FrameHeaderSize:], payload)

	_, err := w.Write(buf)
	return err
}

// ReadFrame reads one length-prefixed frame from r and returns its payload.
//
// A connection closed before the length prefix, or torn mid-length or
// mid-payload, returns io.EOF; callers treat io.EOF as the peer having
// finished and anything else as a failure. A length above MaxFrameSize
// returns ErrFrameTooLarge without reading the payload.
func (c *Codec) ReadFrame(r io.Reader) ([]byte, error) {
	header := make([]byte, constants.FrameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, foldEOF(err)
	}

	length := binary.BigEndian.Uint32(header)
	if length > constants.MaxFrameSize {
		return nil, qerrors.ErrFrameTooLarge
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, foldEOF(err)
		}
	}

	return payload, nil
}

// foldEOF maps a torn read onto the clean-close signal. io.ReadFull reports
// io.ErrUnexpectedEOF when the peer closes mid-value; both spellings mean
// the same thing to a frame reader.
func foldEOF(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return io.EOF
	}
	return err
}
