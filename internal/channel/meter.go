package channel

import (
	"io"

	"github.com/1ureka/duplex/internal/util"
)

// meteredStream counts the bytes crossing a stream in each direction.
type meteredStream struct {
	io.ReadWriteCloser
	m *util.Meter
}

// Metered wraps rwc so that every byte read or written is added to m.
func Metered(rwc io.ReadWriteCloser, m *util.Meter) io.ReadWriteCloser {
	return &meteredStream{ReadWriteCloser: rwc, m: m}
}

func (s *meteredStream) Read(p []byte) (int, error) {
	n, err := s.ReadWriteCloser.Read(p)
	s.m.AddRecv(n)
	return n, err
}

func (s *meteredStream) Write(p []byte) (int, error) {
	n, err := s.ReadWriteCloser.Write(p)
	s.m.AddSent(n)
	return n, err
}
