package transfer

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/1ureka/duplex/internal/protocol"
	"github.com/1ureka/duplex/internal/util"
)

// Receiver writes incoming files into the inbox directory.
type Receiver struct {
	Inbox     string // directory received files are created in
	ChunkSize int    // 0 means DefaultChunkSize
}

// Receive consumes the content and digest trailer described by hdr from src
// and stores the content as <Inbox>/<SafeName(hdr.Name)>, replacing any file
// of that name.
//
// On ErrChecksumMismatch and ErrTransferInterrupted the file is left on disk
// as received. On ErrWriteFailed the stream has still been consumed up to and
// including the trailer, so the caller can keep reading frames.
func (r *Receiver) Receive(hdr protocol.FileHeader, src io.Reader) (Result, error) {
	chunkSize := normalizeChunkSize(r.ChunkSize)
	res := Result{
		Name: hdr.Name,
		Path: filepath.Join(r.Inbox, SafeName(hdr.Name)),
		Size: hdr.Length,
	}

	var sink io.Writer = io.Discard
	var writeErr error

	f, err := os.Create(res.Path)
	if err != nil {
		writeErr = err
	} else {
		defer f.Close()
		sink = f
	}

	h := md5.New()
	buf := make([]byte, chunkSize)
	for res.Done < res.Size {
		n := int(min(res.Size-res.Done, uint64(chunkSize)))

		if _, err := io.ReadFull(src, buf[:n]); err != nil {
			return res, fmt.Errorf("%w: %s after %d of %d bytes: %v", ErrTransferInterrupted, res.Name, res.Done, res.Size, err)
		}
		if writeErr == nil {
			if _, err := sink.Write(buf[:n]); err != nil {
				writeErr = err
				sink = io.Discard
			}
		}
		h.Write(buf[:n])

		res.Done += uint64(n)
		res.Chunks++
	}

	trailer, err := protocol.ReadExact(src, DigestSize)
	if err != nil {
		return res, fmt.Errorf("%w: %s: missing digest: %v", ErrTransferInterrupted, res.Name, err)
	}
	copy(res.Digest[:], h.Sum(nil))

	if f != nil {
		if err := f.Close(); err != nil && writeErr == nil {
			writeErr = err
		}
	}
	if writeErr != nil {
		return res, fmt.Errorf("%w: %s: %v", ErrWriteFailed, res.Path, writeErr)
	}

	if !bytes.Equal(trailer, res.Digest[:]) {
		util.LogDebug("digest of %s: got %x, peer sent %x", res.Name, res.Digest, trailer)
		return res, fmt.Errorf("%w: %s", ErrChecksumMismatch, res.Name)
	}

	util.LogDebug("received %s: %d bytes in %d chunks, md5 %x", res.Name, res.Done, res.Chunks, res.Digest)
	return res, nil
}

// SafeName reduces a wire file name to a single path element so that a peer
// cannot write outside the inbox.
func SafeName(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return '-'
		}
		return r
	}, name)

	switch name {
	case "", ".", "..":
		return "unnamed"
	}
	return name
}
