package sink

import (
	"fmt"
	"net"
)

// A SocketSink writes trace bytes to a peer connected over TCP. Opening the
// sink blocks until a peer connects or the bind fails; this is the only
// blocking point and it happens before any trace bytes are produced.
type SocketSink struct {
	conn   net.Conn
	closed bool
}

// NewSocketSink listens on the given port and blocks until one peer
// connects. The listener is closed once the peer is accepted.
func NewSocketSink(port uint16) (*SocketSink, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, err
	}
	defer listener.Close()

	conn, err := listener.Accept()
	if err != nil {
		return nil, err
	}

	return &SocketSink{conn: conn}, nil
}

// NewConnSink wraps an already-connected stream.
func NewConnSink(conn net.Conn) *SocketSink {
	return &SocketSink{conn: conn}
}

// Write writes the whole buffer to the peer.
func (s *SocketSink) Write(p []byte) (int, error) {
	return writeAll(s.conn, p)
}

// Close closes the connection. Closing twice is a no-op.
func (s *SocketSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}
