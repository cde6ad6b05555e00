// sealed.go implements the two-frame encoding of encrypted channel messages.
//
// An encrypted message is a fixed pair of frames:
//
//	+-----------+-------+--------+------------+
//	| Length=12 | Nonce | Length | Ciphertext |
//	| 4B BE     | 12B   | 4B BE  | Variable   |
//	+-----------+-------+--------+------------+
//
// The nonce frame must carry exactly 12 bytes; any other length marks the
// stream as malformed. Both frames are written in a single Write so a
// concurrent writer holding the channel lock cannot interleave between them.
package protocol

import (
	"encoding/binary"
	"io"

	"github.com/bhaskardatta/Quantum-performance-simulator/internal/constants"
	qerrors "github.com/bhaskardatta/Quantum-performance-simulator/internal/errors"
)

// WriteSealedMessage writes the nonce frame followed by the ciphertext frame.
func (c *Codec) WriteSealedMessage(w io.Writer, nonce, ciphertext []byte) error {
	if len(nonce) != constants.AEADNonceSize {
		return qerrors.ErrInvalidNonce
	}
	if len(ciphertext) > constants.MaxFrameSize {
		return qerrors.ErrFrameTooLarge
	}

	total := 2*constants.FrameHeaderSize + len(nonce) + len(ciphertext)
	buf := GetGlobal(total)
	defer PutGlobal(buf)

	offset := 0
	binary.BigEndian.PutUint32(buf[offset:], uint32(len(nonce)))
	offset += constants.FrameHeaderSize
	copy(buf[offset:], nonce)
	offset += len(nonce)
	binary.BigEndian.PutUint32(buf[offset:], uint32(len(ciphertext)))
	offset += constants.FrameHeaderSize
	copy(buf[offset:], ciphertext)

	_, err := w.Write(buf)
	return err
}

// ReadSealedMessage reads one encrypted message.
//
// io.EOF before the nonce frame is the peer's clean close and passes
// through unchanged. A close between the two frames tears the message and
// returns ErrInvalidFrame, as does a nonce frame of the wrong length.
func (c *Codec) ReadSealedMessage(r io.Reader) (nonce, ciphertext []byte, err error) {
	nonce, err = c.ReadFrame(r)
	if err != nil {
		return nil, nil, err
	}
	if len(nonce) != constants.AEADNonceSize {
		return nil, nil, qerrors.ErrInvalidFrame
	}

	ciphertext, err = c.ReadFrame(r)
	if err != nil {
		if err == io.EOF {
			return nil, nil, qerrors.ErrInvalidFrame
		}
		return nil, nil, err
	}

	return nonce, ciphertext, nil
}
