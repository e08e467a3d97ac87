// Package config loads the sequence server configuration.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (SEQSERVER_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/momentics/hioload-seq/internal/concurrency"
	"github.com/momentics/hioload-seq/internal/logger"
	"github.com/momentics/hioload-seq/internal/session"
	"github.com/momentics/hioload-seq/server"
)

// EnvPrefix prefixes every environment override, e.g. SEQSERVER_SERVER_PORT.
const EnvPrefix = "SEQSERVER"

// Config represents the sequence server configuration.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Server controls the listening socket and admission
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Pool controls the worker pool
	Pool PoolConfig `mapstructure:"pool" yaml:"pool"`

	// Session controls per-connection protocol handling
	Session SessionConfig `mapstructure:"session" yaml:"session"`

	// AcceptBreaker controls back-off on repeated accept failures
	AcceptBreaker BreakerConfig `mapstructure:"accept_breaker" yaml:"accept_breaker"`

	// Metrics configures the admin HTTP endpoint
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// ServerConfig controls the TCP listener.
type ServerConfig struct {
	// BindAddress is the interface to listen on; empty means all interfaces
	BindAddress string `mapstructure:"bind_address" validate:"omitempty,ip|hostname" yaml:"bind_address"`

	// Port is the TCP port
	// Default: 1234
	Port int `mapstructure:"port" validate:"min=0,max=65535" yaml:"port"`

	// MaxConnections is the number of handler slots
	// Default: 10000
	MaxConnections int `mapstructure:"max_connections" validate:"gt=0" yaml:"max_connections"`

	// SlotTimeout is how long a new client may wait for a free slot
	// Default: 0 (reject immediately when full)
	SlotTimeout time.Duration `mapstructure:"slot_timeout" validate:"gte=0" yaml:"slot_timeout"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	// Default: 30s
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0" yaml:"shutdown_timeout"`
}

// PoolConfig controls the worker pool.
type PoolConfig struct {
	// Workers is the number of worker goroutines
	// Default: 0 (one per CPU)
	Workers int `mapstructure:"workers" validate:"gte=0" yaml:"workers"`

	// PinWorkers binds each worker to one CPU (Linux only)
	PinWorkers bool `mapstructure:"pin_workers" yaml:"pin_workers"`

	// IdleSpins is the number of empty polls before a worker sleeps
	// Default: 64
	IdleSpins int `mapstructure:"idle_spins" validate:"gt=0" yaml:"idle_spins"`

	// IdleBackoff is the idle sleep
	// Default: 1ms
	IdleBackoff time.Duration `mapstructure:"idle_backoff" validate:"gt=0" yaml:"idle_backoff"`
}

// SessionConfig controls per-connection handling.
type SessionConfig struct {
	// MaxLineLength bounds a single read-line attempt
	// Default: 50
	MaxLineLength int `mapstructure:"max_line_length" validate:"gte=17,lte=65536" yaml:"max_line_length"`

	// ReadBufferSize is the per-connection receive buffer size
	// Default: 8192
	ReadBufferSize int `mapstructure:"read_buffer_size" validate:"gte=64,lte=1048576" yaml:"read_buffer_size"`

	// WriteInterval is the minimum gap between two output lines
	// Default: 0 (as fast as the client reads)
	WriteInterval time.Duration `mapstructure:"write_interval" validate:"gte=0" yaml:"write_interval"`

	// WriteStallTimeout drops a client that accepts no bytes for this long
	// Default: 0 (never)
	WriteStallTimeout time.Duration `mapstructure:"write_stall_timeout" validate:"gte=0" yaml:"write_stall_timeout"`
}

// BreakerConfig controls the accept circuit breaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive accept failures that opens the breaker
	// Default: 5
	MaxFailures uint32 `mapstructure:"max_failures" validate:"gt=0" yaml:"max_failures"`

	// Cooldown is how long the breaker stays open
	// Default: 1s
	Cooldown time.Duration `mapstructure:"cooldown" validate:"gt=0" yaml:"cooldown"`
}

// MetricsConfig configures the admin HTTP endpoint.
// When Enabled is false, no metrics are collected.
type MetricsConfig struct {
	// Enabled controls whether metrics collection and the HTTP endpoint are enabled
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Address is the admin endpoint bind address
	// Default: 127.0.0.1:9090
	Address string `mapstructure:"address" validate:"omitempty,hostname_port" yaml:"address"`
}

// ListenAddr returns the host:port the server binds.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Server.BindAddress, strconv.Itoa(c.Server.Port))
}

// ServerConfig maps the file layout onto the server runtime config.
func (c *Config) ServerConfig() *server.Config {
	return &server.Config{
		ListenAddr:      c.ListenAddr(),
		MaxConnections:  c.Server.MaxConnections,
		SlotTimeout:     c.Server.SlotTimeout,
		ShutdownTimeout: c.Server.ShutdownTimeout,
		Pool: concurrency.PoolConfig{
			Workers:     c.Pool.Workers,
			PinWorkers:  c.Pool.PinWorkers,
			IdleSpins:   c.Pool.IdleSpins,
			IdleBackoff: c.Pool.IdleBackoff,
		},
		Session: session.Options{
			MaxLineLength:     c.Session.MaxLineLength,
			ReadBufferSize:    c.Session.ReadBufferSize,
			WriteInterval:     c.Session.WriteInterval,
			WriteStallTimeout: c.Session.WriteStallTimeout,
		},
		Breaker: server.BreakerConfig{
			MaxFailures: c.AcceptBreaker.MaxFailures,
			Cooldown:    c.AcceptBreaker.Cooldown,
		},
	}
}

// LoggerConfig maps the logging section onto logger.Config.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
		Output: c.Logging.Output,
	}
}

// Load reads configuration from configPath (or the default location when
// empty), overlays SEQSERVER_* environment variables, applies defaults and
// validates the result. A missing file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	if _, err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// MustLoad is Load for an explicitly requested file: a missing file is an error.
func MustLoad(configPath string) (*Config, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
	}
	return Load(configPath)
}

// SaveConfig writes cfg as YAML to path.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	// Example: SEQSERVER_SERVER_PORT=4000
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	registerKeys(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(GetConfigDir())
		v.AddConfigPath(".")
		v.SetConfigName("seqserver")
		v.SetConfigType("yaml")
	}
}

// registerKeys seeds viper with every key from the default config so that
// environment variables are honored even without a config file.
func registerKeys(v *viper.Viper) {
	var raw map[string]any
	data, _ := yaml.Marshal(GetDefaultConfig())
	_ = yaml.Unmarshal(data, &raw)
	for key, value := range flatten("", raw) {
		v.SetDefault(key, value)
	}
}

func flatten(prefix string, m map[string]any) map[string]any {
	out := make(map[string]any)
	for k, val := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := val.(map[string]any); ok {
			for nk, nv := range flatten(key, nested) {
				out[nk] = nv
			}
			continue
		}
		out[key] = val
	}
	return out
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
		mapstructure.StringToTimeDurationHookFunc(),
	)
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			// Parse duration string like "30s", "5m", "1h"
			return time.ParseDuration(v)
		case int:
			// Assume nanoseconds for raw integers
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// GetConfigDir returns $XDG_CONFIG_HOME/seqserver (or ~/.config/seqserver).
func GetConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "seqserver")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "seqserver")
}

// GetDefaultConfigPath returns the default config file location.
func GetDefaultConfigPath() string {
	return filepath.Join(GetConfigDir(), "seqserver.yaml")
}
