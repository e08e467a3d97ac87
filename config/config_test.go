package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seqserver.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 1234, cfg.Server.Port)
	assert.Equal(t, 10000, cfg.Server.MaxConnections)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 50, cfg.Session.MaxLineLength)
	assert.Equal(t, 30*time.Second, cfg.Session.WriteStallTimeout)
	assert.Equal(t, ":1234", cfg.ListenAddr())
}

func TestLoad_ExplicitZeroStallTimeout(t *testing.T) {
	path := writeConfig(t, `
session:
  write_stall_timeout: 0s
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Zero(t, cfg.Session.WriteStallTimeout)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: json
server:
  bind_address: 127.0.0.1
  port: 4000
  max_connections: 16
  slot_timeout: 50ms
pool:
  workers: 3
session:
  write_interval: 10ms
accept_breaker:
  cooldown: 2s
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "127.0.0.1:4000", cfg.ListenAddr())
	assert.Equal(t, 50*time.Millisecond, cfg.Server.SlotTimeout)
	assert.Equal(t, 3, cfg.Pool.Workers)
	assert.Equal(t, 10*time.Millisecond, cfg.Session.WriteInterval)
	assert.Equal(t, 2*time.Second, cfg.AcceptBreaker.Cooldown)
	assert.Equal(t, uint32(5), cfg.AcceptBreaker.MaxFailures)

	sc := cfg.ServerConfig()
	assert.Equal(t, "127.0.0.1:4000", sc.ListenAddr)
	assert.Equal(t, 16, sc.MaxConnections)
	assert.Equal(t, 3, sc.Pool.Workers)
	assert.Equal(t, 10*time.Millisecond, sc.Session.WriteInterval)
	assert.Equal(t, 2*time.Second, sc.Breaker.Cooldown)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SEQSERVER_SERVER_PORT", "5555")
	t.Setenv("SEQSERVER_POOL_IDLE_BACKOFF", "3ms")
	path := writeConfig(t, "server:\n  port: 4000\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5555, cfg.Server.Port)
	assert.Equal(t, 3*time.Millisecond, cfg.Pool.IdleBackoff)
}

func TestLoad_ValidationFailure(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: loud\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Level")

	path = writeConfig(t, "pool:\n  workers: -2\n")
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Workers")
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "server: [\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestMustLoad_MissingFile(t *testing.T) {
	_, err := MustLoad(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.Port = 7777
	cfg.Session.WriteStallTimeout = 3 * time.Second

	path := filepath.Join(t.TempDir(), "nested", "seqserver.yaml")
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate_Defaults(t *testing.T) {
	assert.NoError(t, Validate(GetDefaultConfig()))

	cfg := GetDefaultConfig()
	cfg.Session.MaxLineLength = 4
	assert.Error(t, Validate(cfg))
}
