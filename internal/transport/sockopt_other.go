//go:build !unix

// File: internal/transport/sockopt_other.go
// Author: momentics <momentics@gmail.com>

package transport

import "syscall"

func reuseAddr(network, address string, c syscall.RawConn) error {
	return nil
}
