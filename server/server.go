// File: server/server.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Server lifecycle: bind, start workers, accept, graceful teardown.

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/sony/gobreaker/v2"

	"github.com/momentics/hioload-seq/api"
	"github.com/momentics/hioload-seq/control"
	"github.com/momentics/hioload-seq/internal/concurrency"
	"github.com/momentics/hioload-seq/internal/logger"
	"github.com/momentics/hioload-seq/internal/session"
	"github.com/momentics/hioload-seq/internal/transport"
)

var (
	ErrAlreadyRunning = errors.New("server already running")
	ErrNotRunning     = errors.New("server not running")
)

// Server accepts sequence-stream clients and schedules them on the pool.
type Server struct {
	cfg      *Config
	ln       api.Listener
	pool     *concurrency.WorkerPool
	slots    *slotPool
	registry *session.Registry
	breaker  *gobreaker.CircuitBreaker[api.Conn]
	metrics  *control.Metrics
	debug    api.Debug

	running  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	ready    chan struct{}
	done     chan struct{}
}

var _ api.GracefulShutdown = (*Server)(nil)

// New builds a server. Nothing is bound or started until Serve.
func New(cfg *Config, opts ...ServerOption) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	s := &Server{
		cfg:      &c,
		registry: session.NewRegistry(0),
		stopCh:   make(chan struct{}),
		ready:    make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	if err := s.cfg.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Serve binds the listener (unless one was supplied), starts the workers and
// the acceptor, and blocks until ctx is cancelled or Shutdown is called. A
// worker pool that cannot start is returned as an error and nothing is left
// running.
func (s *Server) Serve(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(s.done)

	if s.ln == nil {
		ln, err := transport.Listen(ctx, s.cfg.ListenAddr)
		if err != nil {
			return err
		}
		s.ln = ln
	}

	pool, err := concurrency.NewWorkerPool(s.cfg.Pool, s.metrics)
	if err != nil {
		_ = s.ln.Close()
		return fmt.Errorf("server cannot start: %w", err)
	}
	s.pool = pool

	slots, err := newSlotPool(s.cfg.MaxConnections, s.cfg.SlotTimeout, s.cfg.Session, s.metrics, s.registry)
	if err != nil {
		pool.Stop()
		_ = s.ln.Close()
		return err
	}
	s.slots = slots
	s.breaker = newAcceptBreaker(s.cfg.Breaker, s.metrics)
	s.registerProbes()

	logger.Info("Server listening",
		logger.KeyAddr, s.ln.Addr().String(),
		logger.KeyWorkers, pool.Workers(),
		"max_connections", s.cfg.MaxConnections)
	close(s.ready)

	acceptDone := make(chan struct{})
	go func() {
		defer close(acceptDone)
		s.acceptLoop(ctx)
	}()

	select {
	case <-ctx.Done():
	case <-s.stopCh:
	}
	s.teardown(acceptDone)
	return nil
}

// teardown stops intake first, then the workers, then releases every slot.
func (s *Server) teardown(acceptDone <-chan struct{}) {
	logger.Info("Shutting down", logger.KeyActive, s.registry.Len())
	_ = s.ln.Close()
	<-acceptDone
	s.pool.Stop()
	s.slots.close()
	logger.Info("Server stopped", "stats", s.pool.Stats())
}

// Shutdown asks Serve to stop and waits for it to finish or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.running.Load() {
		return ErrNotRunning
	}
	s.stopOnce.Do(func() { close(s.stopCh) })
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ready is closed once the server accepts connections.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the listening address. Valid after Ready.
func (s *Server) Addr() net.Addr {
	select {
	case <-s.ready:
		return s.ln.Addr()
	default:
		return nil
	}
}

// ActiveConnections returns the number of clients holding a slot.
func (s *Server) ActiveConnections() int {
	select {
	case <-s.ready:
		return int(s.slots.inUse())
	default:
		return 0
	}
}

// Config returns the effective configuration.
func (s *Server) Config() Config {
	return *s.cfg
}

func (s *Server) registerProbes() {
	if s.debug == nil {
		return
	}
	s.debug.RegisterProbe("pool", func() any { return s.pool.Stats() })
	s.debug.RegisterProbe("slots", func() any { return s.slots.stats() })
	s.debug.RegisterProbe("connections", func() any { return s.registry.Snapshot() })
	s.debug.RegisterProbe("accept_breaker", func() any {
		counts := s.breaker.Counts()
		return map[string]any{
			"state":                s.breaker.State().String(),
			"consecutive_failures": counts.ConsecutiveFailures,
			"total_failures":       counts.TotalFailures,
		}
	})
}
