package commands

import (
	"fmt"

	"github.com/momentics/hioload-seq/config"
	"github.com/momentics/hioload-seq/internal/logger"
)

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// getConfigSource describes where the configuration came from.
func getConfigSource(path string) string {
	if path == "" {
		return "defaults (" + config.GetDefaultConfigPath() + " if present)"
	}
	return path
}
