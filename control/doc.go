// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics, debug introspection and reload hooks for the sequence
// server.
//
// Provides concurrent-safe primitives including:
//   - Prometheus collectors for accept, scheduling and protocol events
//   - Probe registration and JSON state export
//   - The admin HTTP endpoint serving /metrics and /debug/state
//   - Reload hooks fired on SIGHUP
package control
