package bridge

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxFrameLen bounds a single frame body. A length prefix beyond it is
// treated as a malformed frame rather than an allocation request.
const MaxFrameLen = 16 << 20

// ErrFrameTooLarge indicates a length prefix exceeding MaxFrameLen.
var ErrFrameTooLarge = errors.New("frame exceeds maximum length")

// ReadFrame reads one length-prefixed frame: a little-endian uint32
// length followed by exactly that many body bytes. io.EOF before any
// prefix byte means the stream ended cleanly; any other failure is a
// framing error for the current cycle.
func ReadFrame(r io.Reader) ([]byte, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read length prefix: %w", err)
	}
	length := binary.LittleEndian.Uint32(prefix[:])
	if length > MaxFrameLen {
		return nil, fmt.Errorf("prefix declares %d bytes: %w", length, ErrFrameTooLarge)
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("read %d-byte body: %w", length, err)
	}
	return body, nil
}

// WriteFrame writes body as one length-prefixed frame.
func WriteFrame(w io.Writer, body []byte) error {
	if len(body) > MaxFrameLen {
		return ErrFrameTooLarge
	}
	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(body)))
	if _, err := w.Write(prefix[:]); err != nil {
		return fmt.Errorf("write length prefix: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}
