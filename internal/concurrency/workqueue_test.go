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

type idHandler struct{ id int }

func (h *idHandler) Advance() api.Status { return api.StatusOK }
func (h *idHandler) Close() error        { return nil }

func TestWorkQueueFIFO(t *testing.T) {
	q := NewWorkQueue()
	assert.True(t, q.IsEmpty())

	for i := 0; i < 5; i++ {
		q.Push(&idHandler{id: i})
	}
	assert.Equal(t, 5, q.Len())

	for i := 0; i < 5; i++ {
		h, ok := q.TryPop()
		require.True(t, ok)
		assert.Equal(t, i, h.(*idHandler).id)
	}
	_, ok := q.TryPop()
	assert.False(t, ok)
}

func TestWorkQueueMPMC(t *testing.T) {
	q := NewWorkQueue()
	const producers, perProducer = 8, 2000
	total := int64(producers * perProducer)

	var sentSum, receivedSum, receivedCount int64
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(pid int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				v := pid*perProducer + i + 1
				q.Push(&idHandler{id: v})
				atomic.AddInt64(&sentSum, int64(v))
			}
		}(p)
	}

	var consumers sync.WaitGroup
	for c := 0; c < 8; c++ {
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			for atomic.LoadInt64(&receivedCount) < total {
				h, ok := q.TryPop()
				if !ok {
					runtime.Gosched()
					continue
				}
				atomic.AddInt64(&receivedSum, int64(h.(*idHandler).id))
				atomic.AddInt64(&receivedCount, 1)
			}
		}()
	}
	wg.Wait()

	done := make(chan struct{})
	go func() {
		consumers.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("timeout: received %d/%d", atomic.LoadInt64(&receivedCount), total)
	}
	assert.Equal(t, sentSum, receivedSum)
	assert.True(t, q.IsEmpty())
}
