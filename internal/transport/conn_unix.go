//go:build unix

// File: internal/transport/conn_unix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Non-blocking socket I/O through the runtime-owned descriptor.

package transport

import (
	"errors"
	"fmt"
	"net"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-seq/api"
)

// nonBlocking issues read(2)/write(2) directly on the socket. The runtime
// already keeps the descriptor in O_NONBLOCK mode; returning true from the
// RawConn callback stops it from parking on EAGAIN.
type nonBlocking struct {
	rc syscall.RawConn
}

func newNonBlocking(c *net.TCPConn) (nonBlocking, error) {
	rc, err := c.SyscallConn()
	if err != nil {
		return nonBlocking{}, fmt.Errorf("syscall conn: %w", err)
	}
	return nonBlocking{rc: rc}, nil
}

func (nb nonBlocking) read(p []byte) (int, error) {
	var n int
	var opErr error
	err := nb.rc.Read(func(fd uintptr) bool {
		for {
			n, opErr = unix.Read(int(fd), p)
			if opErr != unix.EINTR {
				return true
			}
		}
	})
	if err != nil {
		return 0, err
	}
	return ioResult(n, opErr)
}

func (nb nonBlocking) write(p []byte) (int, error) {
	var n int
	var opErr error
	err := nb.rc.Write(func(fd uintptr) bool {
		for {
			n, opErr = unix.Write(int(fd), p)
			if opErr != unix.EINTR {
				return true
			}
		}
	})
	if err != nil {
		return 0, err
	}
	return ioResult(n, opErr)
}

func ioResult(n int, err error) (int, error) {
	if err == nil {
		return n, nil
	}
	if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
		return 0, api.ErrWouldBlock
	}
	if n < 0 {
		n = 0
	}
	return n, err
}
