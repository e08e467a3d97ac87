// control/hotreload.go
// Author: momentics <momentics@gmail.com>
//
// Reload hooks for runtime-adjustable settings (log level and format).

package control

import "sync"

// ReloadHooks is an ordered list of listeners run on a reload request.
type ReloadHooks struct {
	mu    sync.Mutex
	hooks []func() error
}

// Register adds a reload listener.
func (r *ReloadHooks) Register(fn func() error) {
	r.mu.Lock()
	r.hooks = append(r.hooks, fn)
	r.mu.Unlock()
}

// Trigger runs every hook in registration order and returns the first error.
// Later hooks still run after a failure.
func (r *ReloadHooks) Trigger() error {
	r.mu.Lock()
	hooks := append([]func() error(nil), r.hooks...)
	r.mu.Unlock()

	var first error
	for _, fn := range hooks {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
