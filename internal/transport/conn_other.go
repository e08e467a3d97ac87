//go:build !unix

// File: internal/transport/conn_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Deadline-based approximation of non-blocking I/O.

package transport

import (
	"errors"
	"io"
	"net"
	"os"
	"time"

	"github.com/momentics/hioload-seq/api"
)

// pollWindow is how long a single attempt may wait for readiness.
const pollWindow = 50 * time.Microsecond

type nonBlocking struct {
	c *net.TCPConn
}

func newNonBlocking(c *net.TCPConn) (nonBlocking, error) {
	return nonBlocking{c: c}, nil
}

func (nb nonBlocking) read(p []byte) (int, error) {
	_ = nb.c.SetReadDeadline(time.Now().Add(pollWindow))
	n, err := nb.c.Read(p)
	if n > 0 {
		return n, nil
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return 0, api.ErrWouldBlock
	}
	if errors.Is(err, io.EOF) {
		return 0, nil
	}
	return 0, err
}

func (nb nonBlocking) write(p []byte) (int, error) {
	_ = nb.c.SetWriteDeadline(time.Now().Add(pollWindow))
	n, err := nb.c.Write(p)
	if n > 0 {
		return n, nil
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return 0, api.ErrWouldBlock
	}
	return 0, err
}
