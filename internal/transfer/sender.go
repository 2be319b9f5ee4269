package transfer

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/1ureka/duplex/internal/protocol"
	"github.com/1ureka/duplex/internal/util"
)

// flusher is implemented by buffered channel writers such as *bufio.Writer.
type flusher interface {
	Flush() error
}

// Sender streams files from the outbox directory.
type Sender struct {
	Outbox    string // directory that relative paths are resolved against
	ChunkSize int    // 0 means DefaultChunkSize
}

// Open resolves path inside the outbox and opens it. The path must be local
// (no absolute paths, no "..") and name a regular file.
func (s *Sender) Open(path string) (*os.File, os.FileInfo, error) {
	if !filepath.IsLocal(path) {
		return nil, nil, fmt.Errorf("%w: %q is outside %s", ErrFileNotFound, path, s.Outbox)
	}

	full := filepath.Join(s.Outbox, path)
	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		return nil, nil, fmt.Errorf("%w: %s", ErrFileNotFound, full)
	}

	f, err := os.Open(full)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}
	return f, info, nil
}

// Send writes the complete file frame for path to w: the "-f" command
// segment, the metadata segment, the content in chunks, and the MD5 trailer.
// If w can be flushed it is flushed once, after the trailer.
//
// ErrFileNotFound means nothing was written. Any other error means the frame
// on w is incomplete and the channel can no longer be trusted.
func (s *Sender) Send(w io.Writer, path string) (Result, error) {
	f, info, err := s.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	chunkSize := normalizeChunkSize(s.ChunkSize)
	res := Result{
		Name: filepath.Base(path),
		Path: f.Name(),
		Size: uint64(info.Size()),
	}

	header := protocol.AppendFileHeader(nil, protocol.FileHeader{Length: res.Size, Name: res.Name})
	if _, err := w.Write(header); err != nil {
		return res, fmt.Errorf("%w: write header: %v", ErrTransferInterrupted, err)
	}

	h := md5.New()
	buf := make([]byte, chunkSize)
	for res.Done < res.Size {
		n := int(min(res.Size-res.Done, uint64(chunkSize)))

		// Only buf[:n] is valid for this chunk; earlier chunks may have left
		// bytes beyond n.
		if _, err := io.ReadFull(f, buf[:n]); err != nil {
			return res, fmt.Errorf("%w: read %s after %d bytes: %v", ErrTransferInterrupted, res.Path, res.Done, err)
		}
		if _, err := w.Write(buf[:n]); err != nil {
			return res, fmt.Errorf("%w: write chunk %d: %v", ErrTransferInterrupted, res.Chunks, err)
		}
		h.Write(buf[:n])

		res.Done += uint64(n)
		res.Chunks++
	}

	copy(res.Digest[:], h.Sum(nil))
	if _, err := w.Write(res.Digest[:]); err != nil {
		return res, fmt.Errorf("%w: write digest: %v", ErrTransferInterrupted, err)
	}

	if fl, ok := w.(flusher); ok {
		if err := fl.Flush(); err != nil {
			return res, fmt.Errorf("%w: flush: %v", ErrTransferInterrupted, err)
		}
	}

	util.LogDebug("sent %s: %d bytes in %d chunks, md5 %x", res.Name, res.Done, res.Chunks, res.Digest)
	return res, nil
}
