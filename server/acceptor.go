// File: server/acceptor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Accept loop: admission control and hand-off to the worker pool.

package server

import (
	"context"
	"errors"
	"net"
	"runtime"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/momentics/hioload-seq/api"
	"github.com/momentics/hioload-seq/control"
	"github.com/momentics/hioload-seq/internal/lineio"
	"github.com/momentics/hioload-seq/internal/logger"
	"github.com/momentics/hioload-seq/protocol"
)

// rejectStall bounds the rejection write so a stuck client cannot hold up
// the acceptor.
const rejectStall = 100 * time.Millisecond

func newAcceptBreaker(cfg BreakerConfig, metrics *control.Metrics) *gobreaker.CircuitBreaker[api.Conn] {
	return gobreaker.NewCircuitBreaker[api.Conn](gobreaker.Settings{
		Name:        "accept",
		MaxRequests: 1,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, net.ErrClosed)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Accept breaker state changed", "from", from.String(), "to", to.String())
			metrics.BreakerStateChanged(to.String())
		},
	})
}

// acceptLoop runs on its own OS thread and blocks only in Accept. It exits
// when the listener is closed.
func (s *Server) acceptLoop(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		conn, err := s.breaker.Execute(s.ln.Accept)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				select {
				case <-time.After(s.cfg.Breaker.Cooldown):
					continue
				case <-ctx.Done():
					return
				case <-s.stopCh:
					return
				}
			}
			s.metrics.AcceptFailed()
			logger.Warn("Accept failed", logger.KeyError, err)
			continue
		}
		s.admit(ctx, conn)
	}
}

// admit binds conn to a free handler slot and submits it, or rejects it.
func (s *Server) admit(ctx context.Context, conn api.Conn) {
	remote := conn.RemoteAddr().String()

	res, err := s.slots.acquire(ctx)
	if err != nil {
		if errors.Is(err, api.ErrResourceExhausted) {
			logger.Info("Rejecting client, no free slot", logger.KeyRemote, remote, logger.KeyActive, s.slots.inUse())
			s.metrics.ConnectionRejected("server_full")
			_ = lineio.WriteString(conn, protocol.MsgServerFull, rejectStall)
		} else {
			logger.Warn("Rejecting client", logger.KeyRemote, remote, logger.KeyError, err)
			s.metrics.ConnectionRejected("slot")
		}
		_ = conn.Close()
		return
	}

	h := res.Value()
	h.Attach(conn, func() {
		s.metrics.ConnectionClosed()
		res.Release()
	})
	s.metrics.ConnectionAccepted()
	logger.Debug("Client connected", logger.KeyConnID, h.ID(), logger.KeyRemote, remote)

	if err := s.pool.Submit(h); err != nil {
		s.metrics.ConnectionRejected("submit")
		logger.Warn("Submit failed", logger.KeyConnID, h.ID(), logger.KeyError, err)
		_ = h.Close()
	}
}
