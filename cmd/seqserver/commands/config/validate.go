package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/momentics/hioload-seq/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the seqserver configuration file.

Checks for syntax errors and invalid values.

Examples:
  # Validate default config
  seqserver config validate

  # Validate specific config file
  seqserver config validate --config /etc/seqserver/seqserver.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	var warnings []string
	if cfg.Pool.PinWorkers && cfg.Pool.Workers == 0 {
		warnings = append(warnings, "pin_workers with workers=0 pins one worker to every CPU")
	}
	if cfg.Session.WriteStallTimeout == 0 {
		warnings = append(warnings, "write_stall_timeout is 0: a client that stops reading holds its slot until it disconnects")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Configuration file: %s\n", displayPath)
	fmt.Fprintln(out, "Validation: OK")
	if len(warnings) > 0 {
		fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			fmt.Fprintf(out, "  - %s\n", w)
		}
	}
	return nil
}
