// File: api/handler.go
// Package api defines the Handler contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Status is the outcome of one handler advance step.
type Status int

const (
	// StatusOK means the step did useful work; re-queue the handler.
	StatusOK Status = iota
	// StatusTryAgain means nothing was ready; re-queue the handler unchanged.
	StatusTryAgain
	// StatusDisconnected means the peer went away; discard the handler.
	StatusDisconnected
	// StatusFatal means the protocol cannot continue; discard the handler.
	StatusFatal
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusTryAgain:
		return "try_again"
	case StatusDisconnected:
		return "disconnected"
	case StatusFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Terminal reports whether the handler must be discarded after this status.
func (s Status) Terminal() bool {
	return s == StatusDisconnected || s == StatusFatal
}

// Handler is one schedulable unit of connection work.
//
// Advance performs at most one short, non-blocking protocol step. The pool
// guarantees that a handler is never advanced by two workers at once.
type Handler interface {
	Advance() Status

	// Close releases the handler and its connection. Called exactly once
	// by whoever discards the handler; further calls are no-ops.
	Close() error
}
