// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake listener feeding pre-built connections to an acceptor.

package fake

import (
	"net"
	"sync"

	"github.com/momentics/hioload-seq/api"
)

// Listener is a channel-backed api.Listener.
type Listener struct {
	conns     chan api.Conn
	errs      chan error
	closeOnce sync.Once
	done      chan struct{}
}

// NewListener creates a listener with room for backlog pending connections.
func NewListener(backlog int) *Listener {
	return &Listener{
		conns: make(chan api.Conn, backlog),
		errs:  make(chan error, backlog),
		done:  make(chan struct{}),
	}
}

// Push makes conn the result of a future Accept.
func (l *Listener) Push(conn api.Conn) {
	l.conns <- conn
}

// Fail makes a future Accept return err.
func (l *Listener) Fail(err error) {
	l.errs <- err
}

// Accept implements api.Listener.
func (l *Listener) Accept() (api.Conn, error) {
	select {
	case <-l.done:
		return nil, net.ErrClosed
	default:
	}
	select {
	case err := <-l.errs:
		return nil, err
	case c := <-l.conns:
		return c, nil
	case <-l.done:
		return nil, net.ErrClosed
	}
}

// Close implements api.Listener.
func (l *Listener) Close() error {
	l.closeOnce.Do(func() { close(l.done) })
	return nil
}

// Addr implements api.Listener.
func (l *Listener) Addr() net.Addr {
	return Addr("fake:0")
}
