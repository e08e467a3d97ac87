// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Worker pool and shared work queue for multiplexing many non-blocking
// connection handlers over a fixed number of goroutines. Workers pop a
// handler, advance it one step, and either discard it (terminal status) or
// push it back to the tail, which gives every connection a round-robin
// share of the pool. Optional per-worker CPU pinning on Linux.
package concurrency
