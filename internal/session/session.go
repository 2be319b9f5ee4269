// Package session runs one chat session over an established byte stream.
//
// A session owns two loops. The outbound loop reads local command lines and
// writes frames; it is the only writer of the channel. The inbound loop
// decodes frames from the peer and hands text to the Display and files to the
// transfer receiver; it is the only reader. The first loop to finish closes
// the channel, which unblocks the other one.
package session

import (
	"bufio"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/1ureka/duplex/internal/protocol"
	"github.com/1ureka/duplex/internal/transfer"
	"github.com/1ureka/duplex/internal/util"
)

// Display receives everything the session wants to show the user. A zero
// time means the line carries no timestamp. Implementations must be safe for
// use from both loops.
type Display interface {
	Message(at time.Time, from, body string)
	Echo(at time.Time, body string)
	Status(at time.Time, msg string)
	Notice(at time.Time, msg string)
	Alert(at time.Time, msg string)
}

// Config describes one side of a session.
type Config struct {
	LocalName string
	PeerName  string
	OutboxDir string // files named by "-f" are resolved here
	InboxDir  string // received files are written here
	ChunkSize int    // 0 means transfer.DefaultChunkSize

	Input   io.Reader   // local command lines; nil means send nothing
	Display Display     // required
	Meter   *util.Meter // nil gets a private meter
}

// Session is a running chat session. Create one with Start.
type Session struct {
	ID string

	cfg      Config
	ch       io.ReadWriteCloser
	r        *bufio.Reader
	w        *bufio.Writer
	sender   *transfer.Sender
	receiver *transfer.Receiver
	meter    *util.Meter
	lines    <-chan string

	closing   chan struct{} // closed when teardown starts
	finished  chan struct{} // closed when both loops have returned
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Start wraps ch in a session and launches its loops. The session takes
// ownership of ch and closes it on teardown.
func Start(ch io.ReadWriteCloser, cfg Config) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		cfg:      cfg,
		ch:       ch,
		r:        bufio.NewReader(ch),
		w:        bufio.NewWriter(ch),
		sender:   &transfer.Sender{Outbox: cfg.OutboxDir, ChunkSize: cfg.ChunkSize},
		receiver: &transfer.Receiver{Inbox: cfg.InboxDir, ChunkSize: cfg.ChunkSize},
		meter:    cfg.Meter,
		closing:  make(chan struct{}),
		finished: make(chan struct{}),
	}
	if s.meter == nil {
		s.meter = &util.Meter{}
	}
	if cfg.Input != nil {
		lines := make(chan string)
		go readLines(cfg.Input, lines, s.closing)
		s.lines = lines
	}

	util.LogInfo("[%s] session started: %s <-> %s", s.shortID(), cfg.LocalName, cfg.PeerName)
	cfg.Display.Status(time.Time{}, cfg.LocalName+" has joined the chat!")

	s.wg.Add(2)
	go s.outbound()
	go s.inbound()

	go func() {
		s.wg.Wait()
		util.LogInfo("[%s] session closed: %s", s.shortID(), s.meter.Summary())
		close(s.finished)
	}()

	return s
}

// Wait blocks until both loops have exited.
func (s *Session) Wait() {
	<-s.finished
}

// Done returns a channel that is closed once both loops have exited.
func (s *Session) Done() <-chan struct{} {
	return s.finished
}

// Close tears the session down from outside, e.g. on an interrupt signal.
func (s *Session) Close() {
	s.teardown("local close")
}

// teardown closes the channel exactly once. Whichever loop gets here first
// unblocks the other.
func (s *Session) teardown(reason string) {
	s.closeOnce.Do(func() {
		util.LogDebug("[%s] tearing down: %s", s.shortID(), reason)
		close(s.closing)
		if err := s.ch.Close(); err != nil && !isClosed(err) {
			util.LogWarning("[%s] close channel: %v", s.shortID(), err)
		}
	})
}

// tornDown reports whether teardown has already started.
func (s *Session) tornDown() bool {
	select {
	case <-s.closing:
		return true
	default:
		return false
	}
}

func (s *Session) shortID() string {
	return s.ID[:8]
}

// readLines pumps r into out one line at a time so that the outbound loop can
// select between local input and teardown. It closes out when r ends.
func readLines(r io.Reader, out chan<- string, closing <-chan struct{}) {
	defer close(out)

	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			select {
			case out <- line:
			case <-closing:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// isClosed reports whether err means the channel is gone rather than broken.
func isClosed(err error) bool {
	return errors.Is(err, protocol.ErrStreamClosed) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed)
}
