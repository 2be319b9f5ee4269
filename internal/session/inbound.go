package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/1ureka/duplex/internal/protocol"
	"github.com/1ureka/duplex/internal/transfer"
	"github.com/1ureka/duplex/internal/util"
)

// inbound decodes frames until the stream ends or can no longer be trusted.
func (s *Session) inbound() {
	defer s.wg.Done()

	err := s.receiveFrames()

	// A local teardown also ends this loop; only a peer-side end is announced.
	if !s.tornDown() {
		switch {
		case isClosed(err):
			util.LogDebug("[%s] inbound: %v", s.shortID(), err)
		default:
			util.LogWarning("[%s] inbound: %v", s.shortID(), err)
		}
		s.cfg.Display.Status(time.Now(), s.cfg.PeerName+" disconnected!")
	}

	s.teardown("inbound ended")
}

// receiveFrames is the AwaitingTag loop. It always returns a non-nil error.
func (s *Session) receiveFrames() error {
	for {
		frame, err := protocol.ReadFrame(s.r)
		if err != nil {
			return err
		}

		switch f := frame.(type) {
		case *protocol.TextFrame:
			s.meter.MessageRecv()
			s.cfg.Display.Message(time.Now(), s.cfg.PeerName, f.Body)

		case *protocol.FileFrame:
			if err := s.receiveFile(f.Header); err != nil {
				return err
			}
		}
	}
}

// receiveFile stores one incoming file. A returned error means the stream is
// no longer framed.
func (s *Session) receiveFile(hdr protocol.FileHeader) error {
	s.cfg.Display.Notice(time.Now(), "Receiving file...")

	res, err := s.receiver.Receive(hdr, s.r)
	switch {
	case err == nil:
		s.meter.FileRecv()
		s.cfg.Display.Notice(time.Now(), fmt.Sprintf("File received by %s!", s.cfg.PeerName))
		util.LogInfo("[%s] received %s (%s) into %s", s.shortID(), res.Name, util.FormatBytes(float64(res.Size)), res.Path)
		return nil

	case errors.Is(err, transfer.ErrChecksumMismatch):
		s.cfg.Display.Alert(time.Now(), "Received file hash doesn't match calculated hash. File may be corrupted. Try to send it again.")
		util.LogWarning("[%s] %v", s.shortID(), err)
		return nil

	case errors.Is(err, transfer.ErrWriteFailed):
		s.cfg.Display.Alert(time.Now(), fmt.Sprintf("Could not save %s!", res.Name))
		util.LogError("[%s] %v", s.shortID(), err)
		return nil

	default:
		s.cfg.Display.Alert(time.Now(), "Nothing to be received. Connection lost!")
		util.LogWarning("[%s] partial file left at %s (%d of %d bytes)", s.shortID(), res.Path, res.Done, res.Size)
		return err
	}
}
