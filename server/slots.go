// File: server/slots.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bounded pool of reusable connection handlers.

package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/puddle/v2"

	"github.com/momentics/hioload-seq/api"
	"github.com/momentics/hioload-seq/internal/session"
)

// slotPool hands out detached handlers. A slot stays acquired from accept
// until the handler is closed.
type slotPool struct {
	pool    *puddle.Pool[*session.Handler]
	max     int32
	timeout time.Duration
}

func newSlotPool(max int, timeout time.Duration, opts session.Options, metrics session.Metrics, reg *session.Registry) (*slotPool, error) {
	pool, err := puddle.NewPool(&puddle.Config[*session.Handler]{
		Constructor: func(context.Context) (*session.Handler, error) {
			return session.New(opts, metrics, reg), nil
		},
		Destructor: func(h *session.Handler) {
			_ = h.Close()
		},
		MaxSize: int32(max),
	})
	if err != nil {
		return nil, fmt.Errorf("slot pool: %w", err)
	}
	return &slotPool{pool: pool, max: int32(max), timeout: timeout}, nil
}

// acquire reserves a slot. It fails with api.ErrResourceExhausted when every
// slot is in use and none frees up within the timeout.
func (p *slotPool) acquire(ctx context.Context) (*puddle.Resource[*session.Handler], error) {
	if p.timeout == 0 && p.pool.Stat().AcquiredResources() >= p.max {
		return nil, fmt.Errorf("%w: %d of %d slots in use", api.ErrResourceExhausted, p.max, p.max)
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	res, err := p.pool.Acquire(ctx)
	switch {
	case err == nil:
		return res, nil
	case errors.Is(err, context.DeadlineExceeded):
		return nil, fmt.Errorf("%w: no slot freed within %s", api.ErrResourceExhausted, p.timeout)
	case errors.Is(err, puddle.ErrClosedPool):
		return nil, api.ErrPoolClosed
	default:
		return nil, err
	}
}

// inUse returns the number of acquired slots.
func (p *slotPool) inUse() int32 {
	return p.pool.Stat().AcquiredResources()
}

func (p *slotPool) stats() map[string]int64 {
	s := p.pool.Stat()
	return map[string]int64{
		"max":      int64(s.MaxResources()),
		"total":    int64(s.TotalResources()),
		"acquired": int64(s.AcquiredResources()),
		"idle":     int64(s.IdleResources()),
		"acquires": s.AcquireCount(),
	}
}

// close destroys idle handlers. It blocks until every acquired slot has
// been released.
func (p *slotPool) close() {
	p.pool.Close()
}
