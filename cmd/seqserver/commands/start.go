package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/momentics/hioload-seq/config"
	"github.com/momentics/hioload-seq/control"
	"github.com/momentics/hioload-seq/internal/logger"
	"github.com/momentics/hioload-seq/server"
)

var (
	flagPort    int
	flagBind    string
	flagWorkers int
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the sequence server in the foreground",
	Long: `Start the sequence server with the specified configuration.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/seqserver/seqserver.yaml.

SIGINT and SIGTERM trigger a graceful shutdown. SIGHUP re-reads the
configuration file and applies the logging section.

Examples:
  # Start with defaults on port 1234
  seqserver start

  # Start with custom config file
  seqserver start --config /etc/seqserver/seqserver.yaml

  # Start with environment variable overrides
  SEQSERVER_LOGGING_LEVEL=DEBUG seqserver start --port 4000`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().IntVarP(&flagPort, "port", "p", 0, "TCP port to listen on (overrides server.port)")
	startCmd.Flags().StringVar(&flagBind, "bind", "", "address to bind (overrides server.bind_address)")
	startCmd.Flags().IntVarP(&flagWorkers, "workers", "w", 0, "number of workers, 0 = one per CPU (overrides pool.workers)")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)

	var opts []server.ServerOption
	var admin *control.AdminServer
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		probes := control.NewDebugProbes()
		control.RegisterRuntimeProbes(probes)
		opts = append(opts, server.WithMetrics(control.NewMetrics(reg)), server.WithDebug(probes))

		admin = control.NewAdminServer(cfg.Metrics.Address, reg, probes)
		if err := admin.Start(); err != nil {
			return err
		}
		logger.Info("Metrics enabled", logger.KeyAddr, cfg.Metrics.Address)
	} else {
		logger.Info("Metrics collection disabled")
	}

	srv, err := server.New(cfg.ServerConfig(), opts...)
	if err != nil {
		return err
	}

	hooks := &control.ReloadHooks{}
	hooks.Register(func() error { return reloadLogging(GetConfigFile()) })

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-hup:
				if err := hooks.Trigger(); err != nil {
					logger.Warn("Reload failed", logger.KeyError, err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	serverDone := make(chan error, 1)
	go func() { serverDone <- srv.Serve(ctx) }()

	logger.Info("Server is running. Press Ctrl+C to stop.")

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err = srv.Shutdown(shutdownCtx); err == nil || errors.Is(err, server.ErrNotRunning) {
			err = <-serverDone
		}
	case err = <-serverDone:
	}

	if admin != nil {
		adminCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = admin.Shutdown(adminCtx)
	}

	if err != nil {
		logger.Error("Server error", logger.KeyError, err)
		return err
	}
	logger.Info("Server stopped")
	return nil
}

// applyFlags overlays explicitly set CLI flags on cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = flagPort
	}
	if cmd.Flags().Changed("bind") {
		cfg.Server.BindAddress = flagBind
	}
	if cmd.Flags().Changed("workers") {
		cfg.Pool.Workers = flagWorkers
	}
}

// reloadLogging re-reads the configuration and applies its logging section.
// Without --config the default search path is used and a missing file
// leaves defaults plus environment overrides.
func reloadLogging(path string) error {
	next, err := config.Load(path)
	if err != nil {
		return err
	}
	logger.SetLevel(next.Logging.Level)
	logger.SetFormat(next.Logging.Format)
	logger.Info("Logging reconfigured", "level", next.Logging.Level, "format", next.Logging.Format)
	return nil
}
