// Package session
// Author: momentics <momentics@gmail.com>
//
// Per-connection protocol state machines. A Handler owns one connection,
// reads configuration commands while in reading mode, and streams the
// configured sequences once the trigger command arrives. All work is split
// into short, non-blocking Advance steps scheduled by the worker pool.
//
// The Registry tracks live handlers for diagnostics and shutdown logging.

package session
