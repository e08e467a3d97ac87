// File: internal/concurrency/pool.go
// Package concurrency
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// WorkerPool runs N workers over one shared WorkQueue.

package concurrency

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-seq/api"
	"github.com/momentics/hioload-seq/internal/logger"
)

const (
	defaultIdleSpins   = 64
	defaultIdleBackoff = time.Millisecond
)

// PoolConfig tunes the worker pool.
type PoolConfig struct {
	Workers     int           // 0 = runtime.NumCPU()
	PinWorkers  bool          // bind worker i to CPU i (Linux only)
	IdleSpins   int           // empty polls before sleeping, 0 = default
	IdleBackoff time.Duration // sleep after IdleSpins empty polls, 0 = default
}

// Metrics receives pool events. Implementations must be safe for
// concurrent use; a nil Metrics disables recording.
type Metrics interface {
	HandlerAdvanced(status api.Status)
	HandlerDiscarded(status api.Status)
	QueueDepth(n int)
}

// WorkerPool schedules handlers round-robin over a fixed set of workers.
type WorkerPool struct {
	queue   *WorkQueue
	cfg     PoolConfig
	metrics Metrics

	wg       sync.WaitGroup
	gate     sync.RWMutex // orders Submit against Stop
	stopping atomic.Bool
	stopOnce sync.Once

	submitted atomic.Int64
	advanced  atomic.Int64
	discarded atomic.Int64
}

var _ api.Submitter = (*WorkerPool)(nil)

// NewWorkerPool starts cfg.Workers workers. It returns only after every
// worker is running; if any worker fails to start, the ones already
// started are stopped and the error is returned.
func NewWorkerPool(cfg PoolConfig, metrics Metrics) (*WorkerPool, error) {
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkerCount, cfg.Workers)
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.IdleSpins <= 0 {
		cfg.IdleSpins = defaultIdleSpins
	}
	if cfg.IdleBackoff <= 0 {
		cfg.IdleBackoff = defaultIdleBackoff
	}

	p := &WorkerPool{
		queue:   NewWorkQueue(),
		cfg:     cfg,
		metrics: metrics,
	}

	started := make(chan error, cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		p.wg.Add(1)
		go p.run(i, started)
	}
	var firstErr error
	for i := 0; i < cfg.Workers; i++ {
		if err := <-started; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		p.Stop()
		return nil, fmt.Errorf("start worker pool: %w", firstErr)
	}

	logger.Info("Worker pool started", logger.KeyWorkers, cfg.Workers, "pinned", cfg.PinWorkers)
	return p, nil
}

// Submit hands h to the pool. On error the caller keeps ownership of h.
func (p *WorkerPool) Submit(h api.Handler) error {
	if h == nil {
		return api.ErrInvalidArgument
	}
	p.gate.RLock()
	defer p.gate.RUnlock()
	if p.stopping.Load() {
		return api.ErrPoolClosed
	}
	p.submitted.Add(1)
	p.queue.Push(h)
	return nil
}

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int {
	return p.cfg.Workers
}

// QueueLen returns the current queue length.
func (p *WorkerPool) QueueLen() int {
	return p.queue.Len()
}

// Stop signals workers to exit, waits for them, then closes every handler
// still queued. Submit fails with api.ErrPoolClosed once Stop begins.
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() {
		p.gate.Lock()
		p.stopping.Store(true)
		p.gate.Unlock()
		p.wg.Wait()
		left := p.queue.drain()
		for _, h := range left {
			_ = h.Close()
		}
		if len(left) > 0 {
			logger.Info("Closed pending handlers", "count", len(left))
		}
	})
}

// Stats returns basic pool counters.
func (p *WorkerPool) Stats() map[string]int64 {
	return map[string]int64{
		"workers":   int64(p.cfg.Workers),
		"submitted": p.submitted.Load(),
		"advanced":  p.advanced.Load(),
		"discarded": p.discarded.Load(),
		"queued":    int64(p.queue.Len()),
	}
}

func (p *WorkerPool) run(id int, started chan<- error) {
	defer p.wg.Done()
	if p.cfg.PinWorkers {
		if err := pinCurrentThread(id); err != nil {
			started <- fmt.Errorf("worker %d: %w", id, err)
			return
		}
	}
	started <- nil

	idle := 0
	for !p.stopping.Load() {
		h, ok := p.queue.TryPop()
		if !ok {
			idle++
			if idle >= p.cfg.IdleSpins {
				time.Sleep(p.cfg.IdleBackoff)
				idle = 0
			} else {
				runtime.Gosched()
			}
			continue
		}
		idle = 0
		p.step(id, h)
	}
}

// step advances h once and routes it by status.
func (p *WorkerPool) step(id int, h api.Handler) {
	status := p.advance(id, h)
	p.advanced.Add(1)
	if p.metrics != nil {
		p.metrics.HandlerAdvanced(status)
	}
	if status.Terminal() {
		p.discarded.Add(1)
		if p.metrics != nil {
			p.metrics.HandlerDiscarded(status)
		}
		_ = h.Close()
		return
	}
	p.queue.Push(h)
	if p.metrics != nil {
		p.metrics.QueueDepth(p.queue.Len())
	}
}

// advance runs one handler step. A panic is treated as a fatal status for
// that connection only.
func (p *WorkerPool) advance(id int, h api.Handler) (status api.Status) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Handler panicked", logger.KeyWorker, id, logger.KeyError, r)
			status = api.StatusFatal
		}
	}()
	return h.Advance()
}
