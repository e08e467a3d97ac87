// Package server
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Sequence-stream TCP server: one acceptor goroutine feeding a fixed worker
// pool through a shared work queue. Each accepted client occupies one
// handler slot from a bounded pool; when none is free the client receives a
// rejection line and is disconnected.
package server
