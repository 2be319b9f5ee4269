package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCommand is returned by ParseLine for input that does not start
// with a known tag followed by a space.
var ErrInvalidCommand = errors.New("invalid command")

// Command is a parsed local input line: either SendText or SendFile.
type Command interface {
	Tag() Tag
}

// SendText asks for Body to be sent as a chat message.
type SendText struct {
	Body string
}

// SendFile asks for the file at Path (relative to the outbox) to be sent.
type SendFile struct {
	Path string
}

func (SendText) Tag() Tag { return TagText }
func (SendFile) Tag() Tag { return TagFile }

// ParseLine splits a raw input line of the form "<tag> <rest>". The body is
// everything after the tag and exactly one separating space, byte for byte.
func ParseLine(line string) (Command, error) {
	line = strings.TrimRight(line, "\r\n")

	head, body, found := strings.Cut(line, " ")
	switch Tag(head) {
	case TagText:
		if !found {
			return nil, fmt.Errorf("%w: missing message text", ErrInvalidCommand)
		}
		return SendText{Body: body}, nil

	case TagFile:
		if !found || body == "" {
			return nil, fmt.Errorf("%w: missing file path", ErrInvalidCommand)
		}
		return SendFile{Path: body}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidCommand, head)
	}
}
