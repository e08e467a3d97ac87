// File: internal/transport/listener.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// TCP listener returning non-blocking connections.

package transport

import (
	"context"
	"fmt"
	"net"

	"github.com/momentics/hioload-seq/api"
)

// Listener wraps a TCP listening socket.
type Listener struct {
	ln *net.TCPListener
}

var _ api.Listener = (*Listener)(nil)

// Listen binds addr ("host:port", host may be empty) with SO_REUSEADDR.
func Listen(ctx context.Context, addr string) (*Listener, error) {
	lc := net.ListenConfig{Control: reuseAddr}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("tcp listen %s: %w", addr, err)
	}
	return &Listener{ln: ln.(*net.TCPListener)}, nil
}

// Accept blocks until a client connects. After Close it returns an error
// satisfying errors.Is(err, net.ErrClosed).
func (l *Listener) Accept() (api.Conn, error) {
	c, err := l.ln.AcceptTCP()
	if err != nil {
		return nil, err
	}
	conn, err := WrapTCP(c)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return conn, nil
}

// Close stops the listener; a blocked Accept returns.
func (l *Listener) Close() error {
	return l.ln.Close()
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}
