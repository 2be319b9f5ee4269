package channel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/1ureka/duplex/internal/config"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsAcceptor serves the WebSocket carrier and hands out the first client.
type wsAcceptor struct {
	listener net.Listener
	connCh   chan *websocket.Conn

	mu     sync.Mutex
	closed bool
}

func listenWS(addr string) (*wsAcceptor, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start WS server: %w", err)
	}
	a := &wsAcceptor{
		listener: listener,
		connCh:   make(chan *websocket.Conn, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(config.WSPath, a.handleWS)

	go func() {
		_ = http.Serve(listener, mux)
	}()

	return a, nil
}

func (a *wsAcceptor) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		reject(conn, websocket.CloseGoingAway, "server closed")
		return
	}

	// Only accept the first client.
	select {
	case a.connCh <- conn:
	default:
		reject(conn, websocket.ClosePolicyViolation, "already connected")
	}
}

func reject(conn *websocket.Conn, code int, text string) {
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, text))
	conn.Close()
}

func (a *wsAcceptor) Accept(ctx context.Context) (io.ReadWriteCloser, string, error) {
	select {
	case conn := <-a.connCh:
		return newWSStream(conn), conn.RemoteAddr().String(), nil
	case <-ctx.Done():
		return nil, "", ctx.Err()
	}
}

func (a *wsAcceptor) Addr() string { return "ws://" + a.listener.Addr().String() + config.WSPath }

// Close stops the HTTP server and closes a client that was upgraded but never
// accepted. A connection already returned by Accept stays open.
func (a *wsAcceptor) Close() error {
	a.mu.Lock()
	a.closed = true
	select {
	case conn := <-a.connCh:
		reject(conn, websocket.CloseGoingAway, "server closed")
	default:
	}
	a.mu.Unlock()

	return a.listener.Close()
}

func dialWS(ctx context.Context, addr string) (io.ReadWriteCloser, string, error) {
	url := WSURL(addr)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to connect to WS server %s: %w", url, err)
	}
	return newWSStream(conn), url, nil
}

// WSURL turns a dial address into a WebSocket URL. Full ws:// and wss:// URLs
// are returned unchanged, http(s):// is rewritten, and a bare host:port gets
// the ws scheme and the carrier path.
func WSURL(addr string) string {
	switch {
	case strings.HasPrefix(addr, "ws://"), strings.HasPrefix(addr, "wss://"):
		return addr
	case strings.HasPrefix(addr, "https://"):
		return "wss://" + strings.TrimPrefix(addr, "https://")
	case strings.HasPrefix(addr, "http://"):
		return "ws://" + strings.TrimPrefix(addr, "http://")
	}
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "ws://" + addr + config.WSPath
}

// wsStream adapts a WebSocket connection to a byte stream. Writes become
// binary messages; reads continue across message boundaries. Like the
// underlying connection it supports one concurrent reader and one concurrent
// writer.
type wsStream struct {
	conn      *websocket.Conn
	cur       io.Reader // reader for the message being consumed
	closeOnce sync.Once
	closeErr  error
}

func newWSStream(conn *websocket.Conn) *wsStream {
	return &wsStream{conn: conn}
}

func (s *wsStream) Read(p []byte) (int, error) {
	for {
		if s.cur == nil {
			typ, r, err := s.conn.NextReader()
			if err != nil {
				return 0, wsReadErr(err)
			}
			if typ != websocket.BinaryMessage {
				continue
			}
			s.cur = r
		}

		n, err := s.cur.Read(p)
		if errors.Is(err, io.EOF) {
			s.cur = nil
			if n == 0 {
				continue
			}
			err = nil
		}
		return n, err
	}
}

func (s *wsStream) Write(p []byte) (int, error) {
	if err := s.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close sends a normal close frame and closes the connection.
func (s *wsStream) Close() error {
	s.closeOnce.Do(func() {
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

// wsReadErr maps the peer closing the WebSocket to io.EOF.
func wsReadErr(err error) error {
	var ce *websocket.CloseError
	if errors.As(err, &ce) || errors.Is(err, io.ErrUnexpectedEOF) {
		return io.EOF
	}
	return err
}
