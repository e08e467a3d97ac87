package server

import (
	"fmt"
	"time"

	"github.com/momentics/hioload-seq/api"
	"github.com/momentics/hioload-seq/internal/concurrency"
	"github.com/momentics/hioload-seq/internal/session"
)

// Config holds all server-side configuration parameters.
type Config struct {
	ListenAddr      string        // TCP bind address, e.g. ":1234"
	MaxConnections  int           // handler slots; clients beyond this are rejected
	SlotTimeout     time.Duration // wait for a free slot before rejecting, 0 = reject at once
	ShutdownTimeout time.Duration // graceful shutdown timeout
	Pool            concurrency.PoolConfig
	Session         session.Options
	Breaker         BreakerConfig
}

// BreakerConfig tunes the accept-loop circuit breaker.
type BreakerConfig struct {
	MaxFailures uint32        // consecutive accept failures before opening
	Cooldown    time.Duration // time spent open before a trial accept
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:      ":1234",
		MaxConnections:  10000,
		SlotTimeout:     0,
		ShutdownTimeout: 30 * time.Second,
		Pool:            concurrency.PoolConfig{},
		Session:         session.DefaultOptions(),
		Breaker: BreakerConfig{
			MaxFailures: 5,
			Cooldown:    time.Second,
		},
	}
}

func (c *Config) validate() error {
	if c.MaxConnections <= 0 {
		return fmt.Errorf("%w: max connections %d", api.ErrInvalidArgument, c.MaxConnections)
	}
	if c.SlotTimeout < 0 {
		return fmt.Errorf("%w: slot timeout %s", api.ErrInvalidArgument, c.SlotTimeout)
	}
	if c.Pool.Workers < 0 {
		return fmt.Errorf("%w: %d", concurrency.ErrInvalidWorkerCount, c.Pool.Workers)
	}
	if c.Breaker.MaxFailures == 0 {
		c.Breaker.MaxFailures = 5
	}
	if c.Breaker.Cooldown <= 0 {
		c.Breaker.Cooldown = time.Second
	}
	return nil
}
