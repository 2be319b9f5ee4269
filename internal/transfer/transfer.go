// Package transfer implements the chunked file transfer that follows a "-f"
// command on the wire: raw content in fixed-size chunks and a trailing MD5
// digest that the receiver checks against its own running digest.
//
// MD5 guards against truncation and corruption in transit only. It is not a
// defence against tampering.
package transfer

import (
	"crypto/md5"
	"errors"
)

// Tuning constants.
const (
	DefaultChunkSize = 1024     // bytes per chunk; the validated safe size
	DigestSize       = md5.Size // bytes in the digest trailer
)

var (
	// ErrFileNotFound is returned by Send when the path does not name a
	// regular file inside the outbox. Nothing has been written.
	ErrFileNotFound = errors.New("file does not exist")

	// ErrChecksumMismatch is returned by Receive when the trailer differs
	// from the digest of the bytes received. The file stays on disk.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrTransferInterrupted is returned when the channel fails before the
	// content and trailer are fully transferred.
	ErrTransferInterrupted = errors.New("transfer interrupted")

	// ErrWriteFailed is returned by Receive when the local file could not be
	// written. The stream has still been drained past the trailer.
	ErrWriteFailed = errors.New("cannot write received file")
)

// Result describes a finished (or partially finished) transfer.
type Result struct {
	Name   string // wire file name
	Path   string // local path read from or written to
	Size   uint64 // declared content length
	Done   uint64 // content bytes actually transferred
	Chunks int    // chunks transferred
	Digest [DigestSize]byte
}

// ChunkCount returns ceil(size / chunkSize). A non-positive chunkSize means
// DefaultChunkSize.
func ChunkCount(size uint64, chunkSize int) int {
	c := uint64(normalizeChunkSize(chunkSize))
	n := size / c
	if size%c != 0 {
		n++
	}
	return int(n)
}

// normalizeChunkSize falls back to DefaultChunkSize for non-positive values.
func normalizeChunkSize(n int) int {
	if n <= 0 {
		return DefaultChunkSize
	}
	return n
}
