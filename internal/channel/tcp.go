package channel

import (
	"context"
	"fmt"
	"io"
	"net"
)

// tcpAcceptor accepts the first TCP client on a listener.
type tcpAcceptor struct {
	ln net.Listener
}

func listenTCP(addr string) (*tcpAcceptor, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return &tcpAcceptor{ln: ln}, nil
}

func (a *tcpAcceptor) Accept(ctx context.Context) (io.ReadWriteCloser, string, error) {
	type result struct {
		conn net.Conn
		err  error
	}
	resCh := make(chan result, 1)
	go func() {
		conn, err := a.ln.Accept()
		resCh <- result{conn, err}
	}()

	select {
	case res := <-resCh:
		if res.err != nil {
			return nil, "", res.err
		}
		return res.conn, res.conn.RemoteAddr().String(), nil

	case <-ctx.Done():
		a.ln.Close() // unblocks Accept
		return nil, "", ctx.Err()
	}
}

func (a *tcpAcceptor) Addr() string { return a.ln.Addr().String() }
func (a *tcpAcceptor) Close() error { return a.ln.Close() }

func dialTCP(ctx context.Context, addr string) (io.ReadWriteCloser, string, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, "", fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return conn, conn.RemoteAddr().String(), nil
}
