// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error values shared across hioload-seq packages.

package api

import "errors"

var (
	// ErrWouldBlock reports that an I/O call could not make progress
	// without waiting. It is a retry signal, not a failure.
	ErrWouldBlock = errors.New("operation would block")

	// ErrResourceExhausted reports that no slot is available for a new connection.
	ErrResourceExhausted = errors.New("resource exhausted")

	// ErrPoolClosed reports a submission to a stopped worker pool.
	ErrPoolClosed = errors.New("worker pool is closed")

	// ErrInvalidArgument reports a malformed configuration or call argument.
	ErrInvalidArgument = errors.New("invalid argument")
)
