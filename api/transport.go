// File: api/transport.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Defines the non-blocking connection handle and listener contracts
// shared by the transport, session and server layers.

package api

import "net"

// Conn is a full-duplex, non-blocking connection handle.
//
// Read and Write never park the calling goroutine waiting for the peer:
// when no data is available (or the send buffer is full) they return
// ErrWouldBlock and the caller retries on a later scheduling pass.
type Conn interface {
	// Read reads already-available bytes into p. A (0, nil) result means
	// the peer closed its side of the stream.
	Read(p []byte) (n int, err error)

	// Write writes as much of p as the socket accepts right now.
	Write(p []byte) (n int, err error)

	// Close releases the underlying socket.
	Close() error

	// RemoteAddr returns the peer address.
	RemoteAddr() net.Addr
}

// Listener hands out ready, non-blocking connections.
type Listener interface {
	// Accept blocks until a peer connects or the listener is closed.
	Accept() (Conn, error)

	// Close stops the listener; a blocked Accept returns net.ErrClosed.
	Close() error

	// Addr returns the bound local address.
	Addr() net.Addr
}
