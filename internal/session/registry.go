// File: internal/session/registry.go
// Package session
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Sharded, thread-safe registry of live connection handlers.

package session

import (
	"sync"

	"github.com/zeebo/xxh3"
)

// Registry tracks attached handlers by connection id.
type Registry struct {
	shards []*registryShard
	mask   uint64
}

type registryShard struct {
	mu       sync.RWMutex
	handlers map[string]*Handler
}

// NewRegistry constructs a registry with shardCount shards, rounded up to
// a power of two.
func NewRegistry(shardCount int) *Registry {
	if shardCount <= 0 {
		shardCount = 16
	}
	m := nextPowerOfTwo(uint64(shardCount))
	shards := make([]*registryShard, m)
	for i := range shards {
		shards[i] = &registryShard{handlers: make(map[string]*Handler)}
	}
	return &Registry{shards: shards, mask: m - 1}
}

func (r *Registry) shard(id string) *registryShard {
	return r.shards[xxh3.HashString(id)&r.mask]
}

// Add registers h under its current id.
func (r *Registry) Add(h *Handler) {
	id := h.ID()
	sh := r.shard(id)
	sh.mu.Lock()
	sh.handlers[id] = h
	sh.mu.Unlock()
}

// Remove drops the handler registered under id, if any.
func (r *Registry) Remove(id string) {
	sh := r.shard(id)
	sh.mu.Lock()
	delete(sh.handlers, id)
	sh.mu.Unlock()
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	n := 0
	for _, sh := range r.shards {
		sh.mu.RLock()
		n += len(sh.handlers)
		sh.mu.RUnlock()
	}
	return n
}

// Snapshot returns diagnostic info for every registered handler.
// Handler identity fields are only written while the handler is absent
// from the registry, so reading them under the shard lock is safe.
func (r *Registry) Snapshot() []Info {
	var out []Info
	for _, sh := range r.shards {
		sh.mu.RLock()
		for _, h := range sh.handlers {
			out = append(out, h.info())
		}
		sh.mu.RUnlock()
	}
	return out
}

// nextPowerOfTwo returns the next power-of-two >= v.
func nextPowerOfTwo(v uint64) uint64 {
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v |= v >> 32
	v++
	return v
}
