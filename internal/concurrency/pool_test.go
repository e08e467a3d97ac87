package concurrency

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-seq/api"
)

// countingHandler reports TryAgain until it has been advanced limit times,
// then the configured final status.
type countingHandler struct {
	limit    int64
	final    api.Status
	steps    atomic.Int64
	closes   atomic.Int64
	inFlight atomic.Int32
	overlap  atomic.Bool
}

func (h *countingHandler) Advance() api.Status {
	if h.inFlight.Add(1) > 1 {
		h.overlap.Store(true)
	}
	defer h.inFlight.Add(-1)
	if h.steps.Add(1) >= h.limit {
		return h.final
	}
	return api.StatusTryAgain
}

func (h *countingHandler) Close() error {
	h.closes.Add(1)
	return nil
}

type panicHandler struct{ closes atomic.Int64 }

func (h *panicHandler) Advance() api.Status { panic("boom") }
func (h *panicHandler) Close() error        { h.closes.Add(1); return nil }

type statusCounter struct {
	mu        sync.Mutex
	discarded map[api.Status]int
}

func (m *statusCounter) HandlerAdvanced(api.Status) {}
func (m *statusCounter) QueueDepth(int)             {}
func (m *statusCounter) HandlerDiscarded(s api.Status) {
	m.mu.Lock()
	m.discarded[s]++
	m.mu.Unlock()
}

func newPool(t *testing.T, workers int, m Metrics) *WorkerPool {
	t.Helper()
	p, err := NewWorkerPool(PoolConfig{Workers: workers, IdleSpins: 4, IdleBackoff: 100 * time.Microsecond}, m)
	require.NoError(t, err)
	t.Cleanup(p.Stop)
	return p
}

func TestNewWorkerPoolRejectsNegativeCount(t *testing.T) {
	_, err := NewWorkerPool(PoolConfig{Workers: -1}, nil)
	assert.ErrorIs(t, err, ErrInvalidWorkerCount)
}

func TestNewWorkerPoolDefaultsToNumCPU(t *testing.T) {
	p := newPool(t, 0, nil)
	assert.Equal(t, runtime.NumCPU(), p.Workers())
}

func TestPoolServesMoreHandlersThanWorkers(t *testing.T) {
	m := &statusCounter{discarded: map[api.Status]int{}}
	p := newPool(t, 2, m)

	handlers := make([]*countingHandler, 10)
	for i := range handlers {
		handlers[i] = &countingHandler{limit: 50, final: api.StatusDisconnected}
		require.NoError(t, p.Submit(handlers[i]))
	}

	require.Eventually(t, func() bool {
		for _, h := range handlers {
			if h.closes.Load() == 0 {
				return false
			}
		}
		return true
	}, 5*time.Second, time.Millisecond)

	for _, h := range handlers {
		assert.Equal(t, int64(50), h.steps.Load())
		assert.Equal(t, int64(1), h.closes.Load())
		assert.False(t, h.overlap.Load(), "handler advanced by two workers at once")
	}
	m.mu.Lock()
	assert.Equal(t, 10, m.discarded[api.StatusDisconnected])
	m.mu.Unlock()
	assert.Equal(t, int64(10), p.Stats()["discarded"])
}

func TestPoolInterleavesHandlers(t *testing.T) {
	p := newPool(t, 1, nil)
	long := &countingHandler{limit: 1 << 40, final: api.StatusOK}
	short := &countingHandler{limit: 3, final: api.StatusFatal}
	require.NoError(t, p.Submit(long))
	require.NoError(t, p.Submit(short))

	require.Eventually(t, func() bool { return short.closes.Load() == 1 }, 5*time.Second, time.Millisecond)
	assert.Zero(t, long.closes.Load())
}

func TestPoolRecoversFromPanic(t *testing.T) {
	p := newPool(t, 1, nil)
	h := &panicHandler{}
	require.NoError(t, p.Submit(h))
	require.Eventually(t, func() bool { return h.closes.Load() == 1 }, 5*time.Second, time.Millisecond)

	ok := &countingHandler{limit: 1, final: api.StatusDisconnected}
	require.NoError(t, p.Submit(ok))
	require.Eventually(t, func() bool { return ok.closes.Load() == 1 }, 5*time.Second, time.Millisecond)
}

func TestPoolStopClosesPendingHandlers(t *testing.T) {
	p, err := NewWorkerPool(PoolConfig{Workers: 2}, nil)
	require.NoError(t, err)

	handlers := make([]*countingHandler, 8)
	for i := range handlers {
		handlers[i] = &countingHandler{limit: 1 << 40, final: api.StatusOK}
		require.NoError(t, p.Submit(handlers[i]))
	}
	p.Stop()
	p.Stop()

	for _, h := range handlers {
		assert.Equal(t, int64(1), h.closes.Load())
	}
	assert.ErrorIs(t, p.Submit(&countingHandler{limit: 1}), api.ErrPoolClosed)
}

func TestPoolSubmitNil(t *testing.T) {
	p := newPool(t, 1, nil)
	assert.ErrorIs(t, p.Submit(nil), api.ErrInvalidArgument)
}
