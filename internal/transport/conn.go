// File: internal/transport/conn.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"net"

	"github.com/momentics/hioload-seq/api"
)

// tcpConn adapts *net.TCPConn to the non-blocking api.Conn contract.
type tcpConn struct {
	c  *net.TCPConn
	nb nonBlocking
}

var _ api.Conn = (*tcpConn)(nil)

// WrapTCP prepares an accepted connection for non-blocking use.
func WrapTCP(c *net.TCPConn) (api.Conn, error) {
	_ = c.SetNoDelay(true)
	nb, err := newNonBlocking(c)
	if err != nil {
		return nil, err
	}
	return &tcpConn{c: c, nb: nb}, nil
}

func (t *tcpConn) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return t.nb.read(p)
}

func (t *tcpConn) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return t.nb.write(p)
}

func (t *tcpConn) Close() error {
	return t.c.Close()
}

func (t *tcpConn) RemoteAddr() net.Addr {
	return t.c.RemoteAddr()
}
