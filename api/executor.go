// Package api
// Author: momentics
//
// Scheduler contract the acceptor hands new handlers to.

package api

// Submitter accepts ownership of a handler for cooperative scheduling.
type Submitter interface {
	// Submit enqueues h. On error the caller still owns h and must Close it.
	Submit(h Handler) error
}
