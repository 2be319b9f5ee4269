package session

import (
	"errors"
	"time"

	"github.com/1ureka/duplex/internal/protocol"
	"github.com/1ureka/duplex/internal/transfer"
	"github.com/1ureka/duplex/internal/util"
)

// outbound reads local lines and writes frames until input ends, a write
// fails, or the session is torn down.
func (s *Session) outbound() {
	defer s.wg.Done()

	reason := "local input ended"
	defer func() { s.teardown(reason) }()

	for {
		select {
		case <-s.closing:
			reason = "closing"
			return

		case line, ok := <-s.lines:
			if !ok {
				return
			}
			if err := s.dispatch(line); err != nil {
				reason = "write failed"
				if !s.tornDown() && !isClosed(err) {
					util.LogWarning("[%s] outbound: %v", s.shortID(), err)
				}
				return
			}
		}
	}
}

// dispatch handles one local line. Only channel failures are returned; bad
// input and missing files are reported and ignored.
func (s *Session) dispatch(line string) error {
	cmd, err := protocol.ParseLine(line)
	if err != nil {
		s.cfg.Display.Status(time.Time{}, "Invalid command! Try again.")
		return nil
	}

	switch c := cmd.(type) {
	case protocol.SendText:
		return s.sendText(c.Body)
	case protocol.SendFile:
		return s.sendFile(c.Path)
	}
	return nil
}

func (s *Session) sendText(body string) error {
	if err := protocol.WriteText(s.w, body); err != nil {
		return err
	}
	if err := s.w.Flush(); err != nil {
		return err
	}
	s.meter.MessageSent()
	s.cfg.Display.Echo(time.Now(), body)
	return nil
}

func (s *Session) sendFile(path string) error {
	f, _, err := s.sender.Open(path)
	if err != nil {
		s.cfg.Display.Alert(time.Time{}, "File does not exist!")
		util.LogDebug("[%s] %v", s.shortID(), err)
		return nil
	}
	f.Close()

	s.cfg.Display.Notice(time.Now(), "Sending file...")

	res, err := s.sender.Send(s.w, path)
	switch {
	case err == nil:
		s.meter.FileSent()
		s.cfg.Display.Notice(time.Now(), "File sent!")
		util.LogInfo("[%s] sent %s (%s)", s.shortID(), res.Name, util.FormatBytes(float64(res.Size)))
		return nil

	case errors.Is(err, transfer.ErrFileNotFound):
		s.cfg.Display.Alert(time.Time{}, "File does not exist!")
		return nil

	default:
		s.cfg.Display.Alert(time.Now(), "Connection lost! The file may be corrupted.")
		return err
	}
}
