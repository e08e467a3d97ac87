// File: internal/concurrency/workqueue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Shared FIFO of handlers awaiting their next step.

package concurrency

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-seq/api"
)

// WorkQueue is an unbounded, thread-safe FIFO of handlers. Pushing a handler
// transfers ownership to the queue; a successful TryPop transfers it to the
// caller.
type WorkQueue struct {
	mu sync.Mutex
	q  *queue.Queue
}

// NewWorkQueue creates an empty queue.
func NewWorkQueue() *WorkQueue {
	return &WorkQueue{q: queue.New()}
}

// Push appends h to the tail.
func (w *WorkQueue) Push(h api.Handler) {
	w.mu.Lock()
	w.q.Add(h)
	w.mu.Unlock()
}

// TryPop removes the head handler without waiting.
func (w *WorkQueue) TryPop() (api.Handler, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.q.Length() == 0 {
		return nil, false
	}
	return w.q.Remove().(api.Handler), true
}

// Len returns a point-in-time length.
func (w *WorkQueue) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.q.Length()
}

// IsEmpty reports whether the queue was empty at the time of the call.
func (w *WorkQueue) IsEmpty() bool {
	return w.Len() == 0
}

// drain removes every queued handler.
func (w *WorkQueue) drain() []api.Handler {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]api.Handler, 0, w.q.Length())
	for w.q.Length() > 0 {
		out = append(out, w.q.Remove().(api.Handler))
	}
	return out
}
