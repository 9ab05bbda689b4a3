package wire

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// PrefixSize is the number of bytes in the length prefix.
const PrefixSize = 4

// MaxFrameSize bounds a single payload. Base64 images dominate frame sizes.
const MaxFrameSize = 16 << 20

var (
	// ErrFrameTooLarge is returned when a prefix announces more than the limit.
	ErrFrameTooLarge = errors.New("wire: frame exceeds size limit")
	// ErrMalformedFrame is returned when a payload is not a JSON object.
	ErrMalformedFrame = errors.New("wire: malformed frame")
)

// Encode marshals v into a complete frame (prefix and payload).
func Encode(v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("wire: encode: %w", err)
	}
	if len(payload) > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	buf := make([]byte, PrefixSize+len(payload))
	binary.BigEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[PrefixSize:], payload)
	return buf, nil
}

// WriteFrame writes v to w as one frame in a single Write call.
func WriteFrame(w io.Writer, v any) error {
	buf, err := Encode(v)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// ReadFrame reads one frame from r and unmarshals it into v.
func ReadFrame(r io.Reader, v any) error {
	return readFrame(r, v, MaxFrameSize)
}

func readFrame(r io.Reader, v any, limit int) error {
	var prefix [PrefixSize]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return err
	}
	n := binary.BigEndian.Uint32(prefix[:])
	if int64(n) > int64(limit) {
		return ErrFrameTooLarge
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 || payload[0] != '{' {
		return ErrMalformedFrame
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return nil
}
