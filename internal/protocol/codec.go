package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Sizes of the fixed-width integers used on the wire.
const (
	U32Size = 4
	U64Size = 8
)

// MaxLength is the largest u32 length prefix accepted on decode.
const MaxLength = math.MaxInt32

var (
	// ErrStreamClosed is returned when the stream ends before a field is
	// fully read.
	ErrStreamClosed = errors.New("stream closed")

	// ErrFrameTooLarge is returned for a u32 length prefix outside [0, 2^31).
	ErrFrameTooLarge = errors.New("length prefix out of range")
)

// PutU32 encodes n as 4 big-endian bytes.
func PutU32(n uint32) []byte {
	buf := make([]byte, U32Size)
	binary.BigEndian.PutUint32(buf, n)
	return buf
}

// U32 decodes 4 big-endian bytes.
func U32(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}

// PutU64 encodes n as 8 big-endian bytes.
func PutU64(n uint64) []byte {
	buf := make([]byte, U64Size)
	binary.BigEndian.PutUint64(buf, n)
	return buf
}

// U64 decodes 8 big-endian bytes.
func U64(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

// readStep is how far ReadExact allocates ahead of the bytes that have
// actually arrived. Length prefixes come from the peer.
const readStep = 64 * 1024

// ReadExact reads exactly n bytes from r. A stream that ends early yields
// ErrStreamClosed; a clean end before the first byte also wraps io.EOF so
// callers can tell a peer hang-up apart from a truncated field.
func ReadExact(r io.Reader, n int) ([]byte, error) {
	if n <= readStep {
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, streamErr(err)
		}
		return buf, nil
	}

	var buf bytes.Buffer
	buf.Grow(readStep)
	got, err := io.CopyN(&buf, r, int64(n))
	if err != nil {
		if errors.Is(err, io.EOF) && got > 0 {
			err = io.ErrUnexpectedEOF
		}
		return nil, streamErr(err)
	}
	return buf.Bytes(), nil
}

// ReadU32 reads a 4-byte big-endian integer.
func ReadU32(r io.Reader) (uint32, error) {
	var buf [U32Size]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, streamErr(err)
	}
	return U32(buf[:]), nil
}

// ReadU64 reads an 8-byte big-endian integer.
func ReadU64(r io.Reader) (uint64, error) {
	var buf [U64Size]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, streamErr(err)
	}
	return U64(buf[:]), nil
}

// readLength reads a u32 length prefix and checks it against MaxLength.
func readLength(r io.Reader) (int, error) {
	n, err := ReadU32(r)
	if err != nil {
		return 0, err
	}
	if n > MaxLength {
		return 0, fmt.Errorf("%w: %d", ErrFrameTooLarge, n)
	}
	return int(n), nil
}

// streamErr maps io.ReadFull failures onto ErrStreamClosed. Other errors
// (a reset connection, a closed pipe) pass through unchanged.
func streamErr(err error) error {
	switch {
	case errors.Is(err, io.EOF):
		return fmt.Errorf("%w: %w", ErrStreamClosed, io.EOF)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: %w", ErrStreamClosed, io.ErrUnexpectedEOF)
	default:
		return err
	}
}
