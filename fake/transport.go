// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable behavior for the api contracts.

package fake

import (
	"bytes"
	"net"
	"sync"

	"github.com/momentics/hioload-seq/api"
)

// Addr is a fixed net.Addr for fake connections.
type Addr string

func (a Addr) Network() string { return "fake" }
func (a Addr) String() string  { return string(a) }

// Conn is a scripted, non-blocking api.Conn.
//
// Each AddRecvData chunk is delivered by Read calls in order; once the
// chunks run out Read reports api.ErrWouldBlock until more data is added
// or Hangup is called, after which it reports end-of-stream.
type Conn struct {
	mu         sync.Mutex
	chunks     [][]byte
	hungUp     bool
	closed     bool
	closeCount int
	readError  error
	writeError error
	writeLimit int
	blockWrite int
	written    bytes.Buffer
	remote     Addr
	reads      int
}

// NewConn creates a connection with the given peer address.
func NewConn(remote string) *Conn {
	return &Conn{remote: Addr(remote)}
}

// Read implements api.Conn.
func (c *Conn) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads++

	if c.closed {
		return 0, net.ErrClosed
	}
	if c.readError != nil {
		return 0, c.readError
	}
	if len(c.chunks) == 0 {
		if c.hungUp {
			return 0, nil
		}
		return 0, api.ErrWouldBlock
	}
	n := copy(p, c.chunks[0])
	c.chunks[0] = c.chunks[0][n:]
	if len(c.chunks[0]) == 0 {
		c.chunks = c.chunks[1:]
	}
	return n, nil
}

// Write implements api.Conn.
func (c *Conn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, net.ErrClosed
	}
	if c.writeError != nil {
		return 0, c.writeError
	}
	if c.blockWrite > 0 {
		c.blockWrite--
		return 0, api.ErrWouldBlock
	}
	if c.writeLimit > 0 && len(p) > c.writeLimit {
		p = p[:c.writeLimit]
	}
	return c.written.Write(p)
}

// Close implements api.Conn. It counts every call so tests can assert
// a connection is released exactly once.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeCount++
	c.closed = true
	return nil
}

// RemoteAddr implements api.Conn.
func (c *Conn) RemoteAddr() net.Addr {
	return c.remote
}

// AddRecvData queues bytes for subsequent Read calls.
func (c *Conn) AddRecvData(data string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chunks = append(c.chunks, []byte(data))
}

// Hangup makes Read report end-of-stream once queued data is consumed.
func (c *Conn) Hangup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hungUp = true
}

// SetReadError makes every Read fail with err.
func (c *Conn) SetReadError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readError = err
}

// SetWriteError makes every Write fail with err.
func (c *Conn) SetWriteError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeError = err
}

// SetWriteLimit caps the bytes accepted per Write call, forcing short writes.
func (c *Conn) SetWriteLimit(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeLimit = n
}

// BlockWrites makes the next n Write calls report api.ErrWouldBlock.
func (c *Conn) BlockWrites(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blockWrite = n
}

// Written returns everything written so far.
func (c *Conn) Written() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.written.String()
}

// ClearWritten discards captured output.
func (c *Conn) ClearWritten() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written.Reset()
}

// Closed reports whether Close was called.
func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// CloseCount returns how many times Close was called.
func (c *Conn) CloseCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeCount
}

// Reads returns how many Read calls were made.
func (c *Conn) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}
