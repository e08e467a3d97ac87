// File: server/options.go
// Package server defines functional options for the Server.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"github.com/momentics/hioload-seq/api"
	"github.com/momentics/hioload-seq/control"
)

// ServerOption customizes server initialization.
type ServerOption func(*Server)

// WithListener serves on an existing listener instead of binding
// Config.ListenAddr. The server takes ownership of ln.
func WithListener(ln api.Listener) ServerOption {
	return func(s *Server) {
		s.ln = ln
	}
}

// WithMetrics records accept, pool and session events into m.
func WithMetrics(m *control.Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithDebug registers server state probes on dp.
func WithDebug(dp api.Debug) ServerOption {
	return func(s *Server) {
		s.debug = dp
	}
}

// WithWorkers overrides the worker count.
func WithWorkers(n int) ServerOption {
	return func(s *Server) {
		s.cfg.Pool.Workers = n
	}
}
