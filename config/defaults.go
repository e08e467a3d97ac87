package config

import (
	"strings"
	"time"

	"github.com/momentics/hioload-seq/internal/lineio"
	"github.com/momentics/hioload-seq/internal/session"
	"github.com/momentics/hioload-seq/protocol"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Default Strategy:
//   - Zero values (0, "") are replaced with defaults
//   - Explicit values are preserved
//   - Durations where zero is meaningful (slot_timeout, write_interval,
//     write_stall_timeout) are left alone
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(&cfg.Server)
	applyPoolDefaults(&cfg.Pool)
	applySessionDefaults(&cfg.Session)
	applyBreakerDefaults(&cfg.AcceptBreaker)
	applyMetricsDefaults(&cfg.Metrics)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	cfg.Format = strings.ToLower(cfg.Format)
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.Port == 0 {
		cfg.Port = 1234
	}
	if cfg.MaxConnections == 0 {
		cfg.MaxConnections = 10000
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

func applyPoolDefaults(cfg *PoolConfig) {
	// Workers == 0 means one per CPU and is resolved by the pool.
	if cfg.IdleSpins == 0 {
		cfg.IdleSpins = 64
	}
	if cfg.IdleBackoff == 0 {
		cfg.IdleBackoff = time.Millisecond
	}
}

func applySessionDefaults(cfg *SessionConfig) {
	if cfg.MaxLineLength == 0 {
		cfg.MaxLineLength = protocol.MaxLineLength
	}
	if cfg.ReadBufferSize == 0 {
		cfg.ReadBufferSize = lineio.DefaultBufferSize
	}
}

func applyBreakerDefaults(cfg *BreakerConfig) {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Cooldown == 0 {
		cfg.Cooldown = time.Second
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Address == "" {
		cfg.Address = "127.0.0.1:9090"
	}
}

// GetDefaultConfig returns a fully populated default configuration.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	// Zero is a valid explicit setting, so the default lives here and not
	// in ApplyDefaults.
	cfg.Session.WriteStallTimeout = session.DefaultWriteStallTimeout
	return cfg
}
