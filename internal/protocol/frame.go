// Package protocol defines the wire format shared by both peers: fixed-width
// big-endian integers, length-prefixed command tags, and the text and file
// frames built from them.
package protocol

import (
	"errors"
	"fmt"
	"io"
)

// Tag is the 2-character command discriminator that opens every frame.
type Tag string

// Command tags.
const (
	TagText Tag = "-m" // free-text message
	TagFile Tag = "-f" // file transfer
)

// ErrUnknownCommand is returned when a frame carries a tag other than TagText
// or TagFile. The stream has no resynchronization marker, so the reader must
// stop.
var ErrUnknownCommand = errors.New("unknown command")

// Frame is a decoded inbound frame: either *TextFrame or *FileFrame.
type Frame interface {
	Tag() Tag
}

// TextFrame carries a chat message.
type TextFrame struct {
	Body string
}

// FileFrame carries the metadata of an incoming file. The content and the
// digest trailer are still on the stream when ReadFrame returns.
type FileFrame struct {
	Header FileHeader
}

func (*TextFrame) Tag() Tag { return TagText }
func (*FileFrame) Tag() Tag { return TagFile }

// FileHeader is the metadata segment that precedes file content.
type FileHeader struct {
	Length uint64 // content bytes that follow the name
	Name   string
}

// ReadFrame decodes the next frame from r.
func ReadFrame(r io.Reader) (Frame, error) {
	tag, err := readTag(r)
	if err != nil {
		return nil, err
	}

	switch tag {
	case TagText:
		body, err := readField(r)
		if err != nil {
			return nil, fmt.Errorf("read text body: %w", err)
		}
		return &TextFrame{Body: string(body)}, nil

	case TagFile:
		hdr, err := ReadFileHeader(r)
		if err != nil {
			return nil, err
		}
		return &FileFrame{Header: hdr}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, string(tag))
	}
}

// ReadFileHeader reads u64 fileLength, u32 nameLength and the name.
func ReadFileHeader(r io.Reader) (FileHeader, error) {
	size, err := ReadU64(r)
	if err != nil {
		return FileHeader{}, fmt.Errorf("read file length: %w", err)
	}
	n, err := readLength(r)
	if err != nil {
		return FileHeader{}, fmt.Errorf("read file name: %w", err)
	}
	if n > MaxNameLength {
		return FileHeader{}, fmt.Errorf("%w: file name of %d bytes", ErrFrameTooLarge, n)
	}
	name, err := ReadExact(r, n)
	if err != nil {
		return FileHeader{}, fmt.Errorf("read file name: %w", err)
	}
	return FileHeader{Length: size, Name: string(name)}, nil
}

// AppendText appends a complete text frame for body to buf.
func AppendText(buf []byte, body string) []byte {
	buf = appendField(buf, []byte(TagText))
	return appendField(buf, []byte(body))
}

// AppendFileHeader appends the file command segment and metadata segment:
// u32 cmdLen, "-f", u64 fileLength, u32 nameLength, name.
func AppendFileHeader(buf []byte, hdr FileHeader) []byte {
	buf = appendField(buf, []byte(TagFile))
	buf = append(buf, PutU64(hdr.Length)...)
	return appendField(buf, []byte(hdr.Name))
}

// WriteText writes a text frame to w in a single call.
func WriteText(w io.Writer, body string) error {
	_, err := w.Write(AppendText(nil, body))
	return err
}

// MaxNameLength bounds the file name field of a file frame.
const MaxNameLength = 4096

// maxTagLength bounds the tag field. Anything longer cannot be a known tag
// and is rejected before its bytes are read.
const maxTagLength = 64

func readTag(r io.Reader) (Tag, error) {
	n, err := readLength(r)
	if err != nil {
		return "", err
	}
	if n > maxTagLength {
		return "", fmt.Errorf("%w: tag length %d", ErrUnknownCommand, n)
	}
	raw, err := ReadExact(r, n)
	if err != nil {
		return "", err
	}
	return Tag(raw), nil
}

// readField reads a u32 length prefix followed by that many bytes.
func readField(r io.Reader) ([]byte, error) {
	n, err := readLength(r)
	if err != nil {
		return nil, err
	}
	return ReadExact(r, n)
}

func appendField(buf, field []byte) []byte {
	buf = append(buf, PutU32(uint32(len(field)))...)
	return append(buf, field...)
}
